// Package extract turns enriched document chunks into entities and events,
// via a synthesis service when one is configured and a keyword heuristic otherwise.
package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/workpool"
)

const (
	DefaultConcurrency = 3
	DefaultMaxTokens   = 2048
	DefaultTimeout     = 90 * time.Second
)

// Synthesizer is the text-completion contract of the synthesis service.
type Synthesizer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Extractor runs extraction per chunk through a bounded pool.
type Extractor struct {
	Synthesizer Synthesizer // nil means heuristic only
	Heuristic   *Heuristic
	Concurrency int
	MaxTokens   int
	Timeout     time.Duration
}

// Result is the merged output of all chunks.
type Result struct {
	Entities    []model.Entity
	Events      []model.Event
	Synthesized int
	Recovered   int
	Heuristic   int
	ParseFailed int
	Skipped     int // chunks never started because ctx ended; covered by the heuristic
}

type chunkOutcome struct {
	out       ChunkOutput
	via       string
	failure   *model.StageFailure
	recovered bool
}

// Extract processes chunks; docs supplies the documents each chunk refers to.
func (x *Extractor) Extract(ctx context.Context, p *model.OrganizationProfile, chunks []model.Chunk, docs []model.EnrichedDocument, failures *model.FailureLog) Result {
	byID := make(map[string]model.EnrichedDocument, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}
	chunkDocs := func(c model.Chunk) []model.EnrichedDocument {
		out := make([]model.EnrichedDocument, 0, len(c.DocumentIDs))
		for _, id := range c.DocumentIDs {
			if d, ok := byID[id]; ok {
				out = append(out, d)
			}
		}
		return out
	}

	pool := workpool.New(x.concurrency())
	outcomes, done := workpool.Map(ctx, pool, chunks, func(ctx context.Context, i int, c model.Chunk) chunkOutcome {
		return x.extractChunk(ctx, p, c, chunkDocs(c))
	})

	var res Result
	outputs := make([]ChunkOutput, len(chunks))
	for i, c := range chunks {
		if !done[i] {
			res.Skipped++
			outputs[i] = x.Heuristic.Extract(chunkDocs(c))
			continue
		}
		o := outcomes[i]
		outputs[i] = o.out
		switch o.via {
		case "synthesis":
			res.Synthesized++
			if o.recovered {
				res.Recovered++
			}
		case "heuristic":
			res.Heuristic++
		case "empty":
			res.ParseFailed++
		}
		if o.failure != nil {
			f := *o.failure
			f.Seq = i
			failures.Record(f)
		}
	}

	res.Entities, res.Events = Merge(outputs)
	logger.Log.WithFields(logrus.Fields{
		"stage":        string(model.StageExtract),
		"chunks":       len(chunks),
		"synthesized":  res.Synthesized,
		"recovered":    res.Recovered,
		"heuristic":    res.Heuristic,
		"parse_failed": res.ParseFailed,
		"entities":     len(res.Entities),
		"events":       len(res.Events),
	}).Info("extraction finished")
	return res
}

func (x *Extractor) extractChunk(ctx context.Context, p *model.OrganizationProfile, c model.Chunk, docs []model.EnrichedDocument) chunkOutcome {
	if x.Synthesizer == nil {
		return chunkOutcome{out: x.Heuristic.Extract(docs), via: "heuristic"}
	}

	cctx, cancel := context.WithTimeout(ctx, x.timeout())
	defer cancel()

	text, err := x.Synthesizer.Complete(cctx, BuildPrompt(p, c), x.maxTokens())
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"stage": string(model.StageExtract),
			"chunk": c.Index,
		}).Warnf("synthesis call failed, using heuristic: %v", err)
		return chunkOutcome{
			out: x.Heuristic.Extract(docs),
			via: "heuristic",
			failure: &model.StageFailure{
				Stage:   model.StageExtract,
				Kind:    model.FailureSynthesisUnavailable,
				Subject: fmt.Sprintf("chunk %d", c.Index),
				Reason:  err.Error(),
			},
		}
	}

	pr := Parse(text)
	if !pr.OK {
		return chunkOutcome{
			via: "empty",
			failure: &model.StageFailure{
				Stage:   model.StageExtract,
				Kind:    model.FailureSynthesisParseFailed,
				Subject: fmt.Sprintf("chunk %d", c.Index),
				Reason:  pr.Err.Error(),
			},
		}
	}
	return chunkOutcome{out: pr.Value, via: "synthesis", recovered: pr.Recovered}
}

func (x *Extractor) concurrency() int {
	if x.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return x.Concurrency
}

func (x *Extractor) maxTokens() int {
	if x.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return x.MaxTokens
}

func (x *Extractor) timeout() time.Duration {
	if x.Timeout <= 0 {
		return DefaultTimeout
	}
	return x.Timeout
}
