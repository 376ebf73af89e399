// Package workpool runs independent units of work through a bounded pool and
// returns their results in input order, whatever order they complete in.
package workpool

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

type indexed[R any] struct {
	index  int
	result R
}

// Pool is a bounded worker pool. The zero value runs one task at a time.
type Pool struct {
	limit    int
	inFlight atomic.Int64
	peak     atomic.Int64
}

// New returns a pool running at most limit tasks concurrently.
func New(limit int) *Pool {
	if limit < 1 {
		limit = 1
	}
	return &Pool{limit: limit}
}

// Limit is the configured concurrency bound.
func (p *Pool) Limit() int {
	if p.limit < 1 {
		return 1
	}
	return p.limit
}

// Peak is the highest number of tasks observed running at once.
func (p *Pool) Peak() int {
	return int(p.peak.Load())
}

// Map applies fn to every item. fn must not fail the batch: it reports
// failures through its result. Items not started before ctx is done are
// skipped and keep the zero value with ok=false in the returned flags.
func Map[T, R any](ctx context.Context, p *Pool, items []T, fn func(ctx context.Context, i int, item T) R) ([]R, []bool) {
	results := make([]R, len(items))
	done := make([]bool, len(items))
	if len(items) == 0 {
		return results, done
	}

	out := make(chan indexed[R], len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Limit())

	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			p.enter()
			defer p.leave()
			out <- indexed[R]{index: i, result: fn(gctx, i, item)}
			return nil
		})
	}

	_ = g.Wait()
	close(out)
	for r := range out {
		results[r.index] = r.result
		done[r.index] = true
	}
	return results, done
}

func (p *Pool) enter() {
	n := p.inFlight.Add(1)
	for {
		peak := p.peak.Load()
		if n <= peak || p.peak.CompareAndSwap(peak, n) {
			return
		}
	}
}

func (p *Pool) leave() {
	p.inFlight.Add(-1)
}
