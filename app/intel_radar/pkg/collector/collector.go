// Package collector fans queries out over source adapters with per-source failure isolation.
package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/query"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/source"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/workpool"
)

const (
	DefaultConcurrency = 6
	DefaultTimeout     = 10 * time.Second
	DefaultFetchLimit  = 10
)

// Collector runs every (source, query) pair.
type Collector struct {
	Concurrency int
	Timeout     time.Duration // per attempt
	FetchLimit  int
	Retries     int
}

// New returns a collector with the default settings and one retry.
func New() *Collector {
	return &Collector{
		Concurrency: DefaultConcurrency,
		Timeout:     DefaultTimeout,
		FetchLimit:  DefaultFetchLimit,
		Retries:     1,
	}
}

// Result is the concatenated output of all successful calls.
type Result struct {
	Documents []model.Document
	Calls     int
	Failed    int
	Skipped   int // pairs never started because ctx ended
}

type pair struct {
	adapter source.Adapter
	query   query.Query
}

type outcome struct {
	docs []model.Document
	err  error
}

// Collect fetches all pairs, ordered by adapter order then query order.
// Failed calls contribute no documents and are recorded in failures.
func (c *Collector) Collect(ctx context.Context, adapters []source.Adapter, queries []query.Query, failures *model.FailureLog) Result {
	pairs := make([]pair, 0, len(adapters)*len(queries))
	for _, a := range adapters {
		for _, q := range queries {
			pairs = append(pairs, pair{adapter: a, query: q})
		}
	}

	pool := workpool.New(c.concurrency())
	outcomes, done := workpool.Map(ctx, pool, pairs, func(ctx context.Context, _ int, p pair) outcome {
		docs, err := c.fetch(ctx, p)
		return outcome{docs: docs, err: err}
	})

	res := Result{Calls: len(pairs)}
	for i, o := range outcomes {
		p := pairs[i]
		if !done[i] {
			res.Skipped++
			continue
		}
		if o.err != nil {
			res.Failed++
			failures.Record(model.StageFailure{
				Stage:   model.StageCollect,
				Kind:    model.FailureSourceUnavailable,
				Subject: p.adapter.Name(),
				Reason:  fmt.Sprintf("query %q: %v", p.query.Text, o.err),
				Seq:     i,
			})
			logger.Log.WithFields(logrus.Fields{
				"stage":  string(model.StageCollect),
				"source": p.adapter.Name(),
				"query":  p.query.Text,
			}).Warnf("source call failed: %v", o.err)
			continue
		}
		res.Documents = append(res.Documents, o.docs...)
	}

	logger.Log.WithFields(logrus.Fields{
		"stage":     string(model.StageCollect),
		"calls":     res.Calls,
		"failed":    res.Failed,
		"skipped":   res.Skipped,
		"documents": len(res.Documents),
		"peak":      pool.Peak(),
	}).Info("collection finished")
	return res
}

func (c *Collector) fetch(ctx context.Context, p pair) ([]model.Document, error) {
	var err error
	for attempt := 0; attempt <= c.Retries; attempt++ {
		var docs []model.Document
		docs, err = c.attempt(ctx, p)
		if err == nil {
			return docs, nil
		}
		// The parent deadline ending is not something a retry can fix.
		if ctx.Err() != nil || !source.IsTransient(err) {
			return nil, err
		}
	}
	return nil, err
}

func (c *Collector) attempt(ctx context.Context, p pair) ([]model.Document, error) {
	actx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	docs, err := callAdapter(actx, p, c.limit())
	if err != nil && actx.Err() != nil && ctx.Err() == nil && !errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
	}
	return docs, err
}

// callAdapter converts an adapter that ignores ctx into a timed-out call.
func callAdapter(ctx context.Context, p pair, limit int) ([]model.Document, error) {
	type reply struct {
		docs []model.Document
		err  error
	}
	ch := make(chan reply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- reply{err: fmt.Errorf("adapter panic: %v", r)}
			}
		}()
		docs, err := p.adapter.Fetch(ctx, p.query, limit)
		ch <- reply{docs: docs, err: err}
	}()

	select {
	case r := <-ch:
		return r.docs, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Collector) concurrency() int {
	if c.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return c.Concurrency
}

func (c *Collector) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c *Collector) limit() int {
	if c.FetchLimit <= 0 {
		return DefaultFetchLimit
	}
	return c.FetchLimit
}
