package source

import (
	"context"
	"fmt"
	"time"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/query"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/search"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/textutil"
)

// SearchAdapter exposes a search.Searcher (Tavily, SearXNG) as a source.
type SearchAdapter struct {
	name     string
	typ      model.SourceType
	tier     int
	searcher search.Searcher
	lookback time.Duration
	now      func() time.Time
}

// NewSearchAdapter wraps searcher. news_search sources query the news topic.
func NewSearchAdapter(name string, typ model.SourceType, tier int, searcher search.Searcher) *SearchAdapter {
	return &SearchAdapter{
		name:     name,
		typ:      typ,
		tier:     tierOrDefault(tier),
		searcher: searcher,
		lookback: 3 * 24 * time.Hour,
		now:      time.Now,
	}
}

var _ Adapter = (*SearchAdapter)(nil)

func (a *SearchAdapter) Name() string           { return a.name }
func (a *SearchAdapter) Type() model.SourceType { return a.typ }
func (a *SearchAdapter) Tier() int              { return a.tier }

// Fetch runs one search and maps its results.
func (a *SearchAdapter) Fetch(ctx context.Context, q query.Query, limit int) ([]model.Document, error) {
	topic := "general"
	if a.typ == model.SourceNewsSearch {
		topic = "news"
	}

	now := a.now()
	resp, err := a.searcher.Search(ctx, &search.Request{
		Query:      q.Text,
		Topic:      topic,
		MaxResults: limit,
		StartDate:  now.Add(-a.lookback).Format(time.DateOnly),
		EndDate:    now.Format(time.DateOnly),
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", a.name, err)
	}

	docs := make([]model.Document, 0, len(resp.Results))
	for _, r := range resp.Results {
		docs = append(docs, model.Document{
			URL:         r.URL,
			Title:       textutil.StripHTML(r.Title),
			Snippet:     textutil.StripHTML(r.Content),
			Source:      a.name,
			SourceType:  a.typ,
			PublishedAt: textutil.ParseTime(r.PublishedDate),
			QueryUsed:   q.Text,
		})
		if limit > 0 && len(docs) >= limit {
			break
		}
	}
	return docs, nil
}
