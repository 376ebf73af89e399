package collector

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/query"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/search"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/source"
)

type stubAdapter struct {
	name  string
	delay time.Duration
	errs  []error // returned per attempt, then success
	block bool

	mu    sync.Mutex
	calls int
}

func (s *stubAdapter) Name() string           { return s.name }
func (s *stubAdapter) Type() model.SourceType { return model.SourceWebSearch }
func (s *stubAdapter) Tier() int              { return 1 }

func (s *stubAdapter) Fetch(ctx context.Context, q query.Query, limit int) ([]model.Document, error) {
	s.mu.Lock()
	n := s.calls
	s.calls++
	s.mu.Unlock()

	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if n < len(s.errs) {
		return nil, s.errs[n]
	}
	return []model.Document{{Title: s.name + "|" + q.Text, Source: s.name}}, nil
}

func (s *stubAdapter) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func titles(docs []model.Document) []string {
	var out []string
	for _, d := range docs {
		out = append(out, d.Title)
	}
	return out
}

func TestCollectPreservesPairOrder(t *testing.T) {
	slow := &stubAdapter{name: "slow", delay: 30 * time.Millisecond}
	fast := &stubAdapter{name: "fast"}
	queries := []query.Query{{Text: "q1"}, {Text: "q2"}}

	c := New()
	var log model.FailureLog
	res := c.Collect(context.Background(), []source.Adapter{slow, fast}, queries, &log)

	assert.Equal(t, []string{"slow|q1", "slow|q2", "fast|q1", "fast|q2"}, titles(res.Documents))
	assert.Equal(t, 4, res.Calls)
	assert.Zero(t, res.Failed)
	assert.Zero(t, log.Len())
}

func TestCollectIsolatesFailures(t *testing.T) {
	broken := &stubAdapter{name: "broken", errs: []error{
		&search.StatusError{StatusCode: 403}, &search.StatusError{StatusCode: 403},
	}}
	flaky := &stubAdapter{name: "flaky", errs: []error{&search.StatusError{StatusCode: 503}}}
	ok := &stubAdapter{name: "ok"}

	c := New()
	var log model.FailureLog
	res := c.Collect(context.Background(), []source.Adapter{broken, flaky, ok}, []query.Query{{Text: "q"}}, &log)

	assert.Equal(t, []string{"flaky|q", "ok|q"}, titles(res.Documents))
	assert.Equal(t, 1, broken.Calls(), "client errors are not retried")
	assert.Equal(t, 2, flaky.Calls(), "transient errors are retried once")
	assert.Equal(t, 1, res.Failed)

	entries := log.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, model.StageCollect, entries[0].Stage)
	assert.Equal(t, model.FailureSourceUnavailable, entries[0].Kind)
	assert.Equal(t, "broken", entries[0].Subject)
}

func TestCollectTimeoutIsRecoverable(t *testing.T) {
	hung := &stubAdapter{name: "hung", block: true}
	ok := &stubAdapter{name: "ok"}

	c := New()
	c.Timeout = 20 * time.Millisecond
	var log model.FailureLog
	res := c.Collect(context.Background(), []source.Adapter{hung, ok}, []query.Query{{Text: "q"}}, &log)

	assert.Equal(t, []string{"ok|q"}, titles(res.Documents))
	assert.Equal(t, 2, hung.Calls())
	require.Equal(t, 1, log.Len())
	assert.Equal(t, "hung", log.Entries()[0].Subject)
}

func TestCollectTimesOutAdapterIgnoringContext(t *testing.T) {
	stuck := &stubAdapter{name: "stuck", delay: 300 * time.Millisecond}

	c := New()
	c.Timeout = 20 * time.Millisecond
	var log model.FailureLog
	start := time.Now()
	res := c.Collect(context.Background(), []source.Adapter{stuck}, []query.Query{{Text: "q"}}, &log)

	assert.Less(t, time.Since(start), 200*time.Millisecond)
	assert.Empty(t, res.Documents)
	assert.Equal(t, 1, res.Failed)
	require.Equal(t, 1, log.Len())
	assert.Equal(t, model.FailureSourceUnavailable, log.Entries()[0].Kind)
	assert.Contains(t, log.Entries()[0].Reason, context.DeadlineExceeded.Error())
}

func TestCollectAllFailing(t *testing.T) {
	var adapters []source.Adapter
	for _, name := range []string{"a", "b", "c"} {
		adapters = append(adapters, &stubAdapter{name: name, errs: []error{&search.StatusError{StatusCode: 400}}})
	}

	var log model.FailureLog
	res := New().Collect(context.Background(), adapters, []query.Query{{Text: "q"}}, &log)
	assert.Empty(t, res.Documents)
	assert.Equal(t, 3, res.Failed)
	assert.Equal(t, 3, log.Len())
}
