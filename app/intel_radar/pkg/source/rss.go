package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/singleflight"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/query"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/search"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/textutil"
)

// DefaultFeedTimeout bounds the single shared download of a feed.
const DefaultFeedTimeout = 30 * time.Second

// RSSAdapter reads one feed. The feed is downloaded once per adapter and
// every query filters the cached items. A failed download is cached too.
type RSSAdapter struct {
	name        string
	endpoint    string
	tier        int
	parser      *gofeed.Parser
	loadTimeout time.Duration

	group singleflight.Group
	mu    sync.Mutex
	items []*gofeed.Item
	err   error
	ready bool
}

// NewRSSAdapter creates an adapter for the feed at endpoint.
func NewRSSAdapter(name, endpoint string, tier int, hc *http.Client) *RSSAdapter {
	fp := gofeed.NewParser()
	if hc != nil {
		fp.Client = hc
	}
	fp.UserAgent = "intel-radar/1.0"
	return &RSSAdapter{
		name:        name,
		endpoint:    endpoint,
		tier:        tierOrDefault(tier),
		parser:      fp,
		loadTimeout: DefaultFeedTimeout,
	}
}

var _ Adapter = (*RSSAdapter)(nil)

func (a *RSSAdapter) Name() string           { return a.name }
func (a *RSSAdapter) Type() model.SourceType { return model.SourceRSS }
func (a *RSSAdapter) Tier() int              { return a.tier }

// Fetch returns feed items whose title or description contains every query term.
func (a *RSSAdapter) Fetch(ctx context.Context, q query.Query, limit int) ([]model.Document, error) {
	items, err := a.load(ctx)
	if err != nil {
		return nil, err
	}

	var docs []model.Document
	for _, it := range items {
		title := textutil.StripHTML(it.Title)
		body := textutil.StripHTML(firstNonEmpty(it.Description, it.Content))
		if !matchesAll(title+" "+body, q.Terms) {
			continue
		}
		docs = append(docs, model.Document{
			URL:         it.Link,
			Title:       title,
			Snippet:     body,
			Source:      a.name,
			SourceType:  model.SourceRSS,
			PublishedAt: itemTime(it),
			QueryUsed:   q.Text,
		})
		if limit > 0 && len(docs) >= limit {
			break
		}
	}
	return docs, nil
}

// load waits for the shared download only as long as ctx allows. The download
// is detached from any single caller and bounded by loadTimeout.
func (a *RSSAdapter) load(ctx context.Context) ([]*gofeed.Item, error) {
	a.mu.Lock()
	if a.ready {
		items, err := a.items, a.err
		a.mu.Unlock()
		return items, err
	}
	a.mu.Unlock()

	ch := a.group.DoChan(a.endpoint, func() (any, error) {
		items, err := a.download(context.WithoutCancel(ctx))
		a.mu.Lock()
		a.items, a.err, a.ready = items, err, true
		a.mu.Unlock()
		return items, err
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.([]*gofeed.Item), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (a *RSSAdapter) download(ctx context.Context) ([]*gofeed.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, a.loadTimeout)
	defer cancel()

	feed, err := a.parser.ParseURLWithContext(a.endpoint, ctx)
	if err != nil {
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			return nil, &search.StatusError{Provider: a.name, StatusCode: httpErr.StatusCode, Body: httpErr.Status}
		}
		return nil, fmt.Errorf("parse feed %s: %w", a.name, err)
	}
	return feed.Items, nil
}

func itemTime(it *gofeed.Item) time.Time {
	switch {
	case it.PublishedParsed != nil:
		return it.PublishedParsed.UTC()
	case it.UpdatedParsed != nil:
		return it.UpdatedParsed.UTC()
	}
	return textutil.ParseTime(it.Published)
}

func matchesAll(text string, terms []string) bool {
	for _, t := range terms {
		if !textutil.ContainsFold(text, t) {
			return false
		}
	}
	return true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
