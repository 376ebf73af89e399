// Package enrich fetches full text for the top-scored documents and packs the
// enriched set into attribution-preserving chunks.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/textutil"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/workpool"
)

const (
	DefaultConcurrency = 5
	DefaultBudget      = 30
	DefaultTimeout     = 15 * time.Second

	// MinFullTextRunes separates a successful extraction from a partial one.
	MinFullTextRunes = 200
)

var errEmptyText = errors.New("extraction returned no text")

// Enricher runs full-text extraction for the first Budget documents.
type Enricher struct {
	Extractor   Extractor
	Concurrency int
	Budget      int
	Timeout     time.Duration // per call
}

// Result is the enriched set in input (score) order.
type Result struct {
	Documents []model.EnrichedDocument
	Succeeded int
	Partial   int
	Failed    int
	Skipped   int // within budget but never started because ctx ended
}

// Enrich returns one EnrichedDocument per input document. Documents past
// the budget are passed through with status not_attempted.
func (e *Enricher) Enrich(ctx context.Context, docs []model.ScoredDocument, failures *model.FailureLog) Result {
	budget := e.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}
	if budget > len(docs) {
		budget = len(docs)
	}

	pool := workpool.New(e.concurrency())
	enriched, done := workpool.Map(ctx, pool, docs[:budget], func(ctx context.Context, i int, sd model.ScoredDocument) model.EnrichedDocument {
		return e.enrichOne(ctx, i, sd, failures)
	})

	res := Result{Documents: make([]model.EnrichedDocument, 0, len(docs))}
	for i, sd := range docs {
		if i >= budget || !done[i] {
			if i < budget {
				res.Skipped++
			}
			res.Documents = append(res.Documents, annotate(model.EnrichedDocument{
				ScoredDocument:   sd,
				ExtractionStatus: model.ExtractionNotAttempted,
			}))
			continue
		}
		ed := enriched[i]
		switch ed.ExtractionStatus {
		case model.ExtractionSuccess:
			res.Succeeded++
		case model.ExtractionPartial:
			res.Partial++
		default:
			res.Failed++
		}
		res.Documents = append(res.Documents, ed)
	}

	logger.Log.WithFields(logrus.Fields{
		"stage":     string(model.StageEnrich),
		"budget":    budget,
		"succeeded": res.Succeeded,
		"partial":   res.Partial,
		"failed":    res.Failed,
		"skipped":   res.Skipped,
	}).Info("enrichment finished")
	return res
}

func (e *Enricher) enrichOne(ctx context.Context, i int, sd model.ScoredDocument, failures *model.FailureLog) model.EnrichedDocument {
	ed := model.EnrichedDocument{ScoredDocument: sd}

	text, status, err := e.extract(ctx, sd.URL)
	if err != nil {
		ed.ExtractionStatus = model.ExtractionFailed
		failures.Record(model.StageFailure{
			Stage:   model.StageEnrich,
			Kind:    model.FailureExtractionFailed,
			Subject: sd.ID,
			Reason:  err.Error(),
			Seq:     i,
		})
		logger.Log.WithFields(logrus.Fields{
			"stage": string(model.StageEnrich),
			"url":   sd.URL,
		}).Debugf("extraction failed: %v", err)
		return annotate(ed)
	}

	ed.FullText = text
	ed.ExtractionStatus = status
	return annotate(ed)
}

func (e *Enricher) extract(ctx context.Context, rawURL string) (string, model.ExtractionStatus, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", model.ExtractionFailed, errors.New("document has no url")
	}
	if e.Extractor == nil {
		return "", model.ExtractionFailed, errors.New("no extractor configured")
	}

	cctx, cancel := context.WithTimeout(ctx, e.timeout())
	defer cancel()

	ex, err := e.callExtractor(cctx, rawURL)
	if err != nil {
		if cctx.Err() != nil {
			return "", model.ExtractionFailed, fmt.Errorf("extraction timed out: %w", err)
		}
		return "", model.ExtractionFailed, err
	}
	if ex.Status == model.ExtractionFailed {
		return "", model.ExtractionFailed, errors.New("extraction service reported failure")
	}

	text := textutil.NormalizeSpace(ex.Text)
	switch n := textutil.RuneLen(text); {
	case n == 0:
		return "", model.ExtractionFailed, errEmptyText
	case n < MinFullTextRunes:
		return text, model.ExtractionPartial, nil
	}
	return text, model.ExtractionSuccess, nil
}

// callExtractor converts an extractor that ignores ctx into a timed-out call.
func (e *Enricher) callExtractor(ctx context.Context, rawURL string) (Extraction, error) {
	type reply struct {
		ex  Extraction
		err error
	}
	ch := make(chan reply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- reply{err: fmt.Errorf("extractor panic: %v", r)}
			}
		}()
		ex, err := e.Extractor.Extract(ctx, rawURL)
		ch <- reply{ex: ex, err: err}
	}()

	select {
	case r := <-ch:
		return r.ex, r.err
	case <-ctx.Done():
		return Extraction{}, ctx.Err()
	}
}

func annotate(ed model.EnrichedDocument) model.EnrichedDocument {
	text := ed.Text()
	ed.Quotes = Quotes(text)
	ed.Metrics = Metrics(text)
	return ed
}

func (e *Enricher) concurrency() int {
	if e.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return e.Concurrency
}

func (e *Enricher) timeout() time.Duration {
	if e.Timeout <= 0 {
		return DefaultTimeout
	}
	return e.Timeout
}
