package engine

import (
	"time"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/collector"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/enrich"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/extract"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/query"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/relevance"
)

// DefaultOverallDeadline bounds a run when nothing else is configured.
const DefaultOverallDeadline = 5 * time.Minute

// Options are the per-run knobs. Zero values fall back to the stage defaults.
type Options struct {
	SourceTimeout         time.Duration
	SourceConcurrency     int
	FetchLimit            int
	QueryCap              int
	EnrichmentConcurrency int
	EnrichmentBudget      int
	EnrichmentTimeout     time.Duration
	ExtractionConcurrency int
	ExtractionMaxTokens   int
	ExtractionTimeout     time.Duration
	ChunkCharLimit        int
	OverallDeadline       time.Duration
	RelevanceTopK         int

	// Progress, when set, is told each stage as it starts.
	Progress func(stage string, percent int)
}

// OptionsFromConfig converts the pipeline and llm sections into run options.
func OptionsFromConfig(cfg *config.Config) Options {
	pc := cfg.Pipeline
	o := Options{
		SourceTimeout:         ms(pc.SourceTimeoutMs),
		SourceConcurrency:     pc.SourceConcurrency,
		FetchLimit:            pc.FetchLimit,
		QueryCap:              pc.QueryCap,
		EnrichmentConcurrency: pc.EnrichmentConcurrency,
		EnrichmentBudget:      pc.EnrichmentBudget,
		EnrichmentTimeout:     ms(pc.EnrichmentTimeoutMs),
		ExtractionConcurrency: pc.ExtractionConcurrency,
		ExtractionMaxTokens:   cfg.LLM.MaxTokens,
		ExtractionTimeout:     ms(cfg.LLM.TimeoutMs),
		ChunkCharLimit:        pc.ChunkCharLimit,
		OverallDeadline:       ms(pc.OverallDeadlineMs),
		RelevanceTopK:         pc.RelevanceTopK,
	}
	return o.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.SourceTimeout <= 0 {
		o.SourceTimeout = collector.DefaultTimeout
	}
	if o.SourceConcurrency <= 0 {
		o.SourceConcurrency = collector.DefaultConcurrency
	}
	if o.FetchLimit <= 0 {
		o.FetchLimit = collector.DefaultFetchLimit
	}
	if o.QueryCap <= 0 {
		o.QueryCap = query.DefaultCap
	}
	if o.EnrichmentConcurrency <= 0 {
		o.EnrichmentConcurrency = enrich.DefaultConcurrency
	}
	if o.EnrichmentBudget <= 0 {
		o.EnrichmentBudget = enrich.DefaultBudget
	}
	if o.EnrichmentTimeout <= 0 {
		o.EnrichmentTimeout = enrich.DefaultTimeout
	}
	if o.ExtractionConcurrency <= 0 {
		o.ExtractionConcurrency = extract.DefaultConcurrency
	}
	if o.ExtractionMaxTokens <= 0 {
		o.ExtractionMaxTokens = extract.DefaultMaxTokens
	}
	if o.ExtractionTimeout <= 0 {
		o.ExtractionTimeout = extract.DefaultTimeout
	}
	if o.ChunkCharLimit <= 0 {
		o.ChunkCharLimit = enrich.DefaultChunkChars
	}
	if o.OverallDeadline <= 0 {
		o.OverallDeadline = DefaultOverallDeadline
	}
	if o.RelevanceTopK <= 0 {
		o.RelevanceTopK = relevance.DefaultTopK
	}
	return o
}

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}
