// Package engine wires the stages into one intelligence pipeline run.
package engine

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/brief"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/collector"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/coverage"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/dedup"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/enrich"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/extract"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/llm"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/pattern"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/query"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/relevance"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/source"
)

// budgetSeq sorts deadline failures after the per-item failures of a stage.
const budgetSeq = 1 << 30

// AdapterBuilder creates the source adapters for a profile.
type AdapterBuilder interface {
	Build(p *model.OrganizationProfile) ([]source.Adapter, error)
}

// Pipeline holds the collaborators shared by every run. It keeps no per-run
// state, so one Pipeline can serve concurrent runs.
type Pipeline struct {
	Adapters    AdapterBuilder
	Extractor   enrich.Extractor
	Synthesizer extract.Synthesizer // nil means heuristic extraction only
	Scoring     config.ScoringConfig
	Patterns    config.PatternConfig
	Now         func() time.Time
}

// NewPipeline builds the pipeline collaborators from cfg: source adapters,
// the full-text extractor and, when configured, the LLM synthesizer.
func NewPipeline(ctx context.Context, cfg *config.Config, hc *http.Client) (*Pipeline, error) {
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}

	p := &Pipeline{
		Adapters: source.NewFactory(cfg, hc),
		Scoring:  cfg.Scoring,
		Patterns: cfg.Patterns,
	}

	if cfg.Extraction.ServiceURL != "" {
		p.Extractor = enrich.NewServiceExtractor(cfg.Extraction.ServiceURL, hc)
	} else {
		p.Extractor = enrich.NewReadabilityExtractor(hc, cfg.Extraction.UserAgent)
	}

	if cfg.LLM.Enabled() {
		synth, err := llm.NewOpenAI(ctx, cfg.LLM, source.NewLimiter(cfg.Concurrency))
		if err != nil {
			return nil, fmt.Errorf("init llm: %w", err)
		}
		p.Synthesizer = synth
	} else {
		logger.Log.Warn("llm not configured, extraction falls back to heuristics")
	}
	return p, nil
}

// Run executes one pass for profile. It only returns an error for an invalid
// profile or unusable configuration, before any network work starts. Every
// later failure degrades the returned brief instead.
func (p *Pipeline) Run(ctx context.Context, profile *model.OrganizationProfile, opts Options) (*model.IntelligenceBrief, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	var adapters []source.Adapter
	if p.Adapters != nil {
		var err error
		if adapters, err = p.Adapters.Build(profile); err != nil {
			return nil, fmt.Errorf("build source adapters: %w", err)
		}
	}
	garbage, err := relevance.NewGarbageFilter(p.Scoring)
	if err != nil {
		return nil, fmt.Errorf("garbage filter: %w", err)
	}

	now := p.Now
	if now == nil {
		now = time.Now
	}
	runCtx, cancel := context.WithTimeout(ctx, opts.OverallDeadline)
	defer cancel()

	r := &run{
		id:       uuid.NewString(),
		ctx:      runCtx,
		opts:     opts,
		failures: &model.FailureLog{},
	}
	started := now()
	log := logger.WithStage("run", r.id).WithFields(logrus.Fields{
		"org":      profile.Name,
		"adapters": len(adapters),
	})
	log.Info("pipeline run started")

	// 1. queries
	r.progress(model.StageQuery, 0)
	qr := query.Builder{Cap: opts.QueryCap}.Build(profile)
	r.stats.Queries = len(qr.Queries)
	r.stats.QueriesDropped = qr.Dropped
	if qr.Dropped > 0 {
		r.failures.Record(model.StageFailure{
			Stage:   model.StageQuery,
			Kind:    model.FailureBudgetExceeded,
			Subject: "query cap",
			Reason:  fmt.Sprintf("dropped %d queries over the cap of %d", qr.Dropped, opts.QueryCap),
		})
	}

	// 2. collection
	r.progress(model.StageCollect, 10)
	col := &collector.Collector{
		Concurrency: opts.SourceConcurrency,
		Timeout:     opts.SourceTimeout,
		FetchLimit:  opts.FetchLimit,
		Retries:     1,
	}
	cr := col.Collect(runCtx, adapters, qr.Queries, r.failures)
	r.stats.Collected = len(cr.Documents)
	r.checkBudget(model.StageCollect, cr.Skipped, "source calls")

	// 3. dedup, garbage filter and scoring
	r.progress(model.StageDedup, 35)
	docs := dedup.Deduplicate(cr.Documents)
	r.stats.Deduplicated = len(docs)
	social := pattern.SignalsFromDocuments(docs)
	r.stats.SocialSignals = len(social)

	r.progress(model.StageScore, 40)
	kept, rejected := garbage.Filter(docs)
	r.stats.GarbageRejected = rejected
	ranked := relevance.NewScorer(p.Scoring, now).Rank(kept, profile, opts.RelevanceTopK)
	r.stats.Scored = len(ranked)

	// 4. enrichment
	r.progress(model.StageEnrich, 45)
	en := &enrich.Enricher{
		Extractor:   p.Extractor,
		Concurrency: opts.EnrichmentConcurrency,
		Budget:      opts.EnrichmentBudget,
		Timeout:     opts.EnrichmentTimeout,
	}
	er := en.Enrich(runCtx, ranked, r.failures)
	r.stats.Enriched = er.Succeeded + er.Partial
	r.stats.EnrichmentFailed = er.Failed
	r.checkBudget(model.StageEnrich, er.Skipped, "documents")

	// 5. extraction
	r.progress(model.StageExtract, 65)
	chunks := enrich.BuildChunks(er.Documents, opts.ChunkCharLimit)
	r.stats.Chunks = len(chunks)
	ex := &extract.Extractor{
		Synthesizer: p.Synthesizer,
		Heuristic:   extract.NewHeuristic(profile, p.Scoring, p.Patterns),
		Concurrency: opts.ExtractionConcurrency,
		MaxTokens:   opts.ExtractionMaxTokens,
		Timeout:     opts.ExtractionTimeout,
	}
	xr := ex.Extract(runCtx, profile, chunks, er.Documents, r.failures)
	r.checkBudget(model.StageExtract, xr.Skipped, "chunks")

	// 6. coverage and patterns never touch the network and always run.
	r.progress(model.StageCoverage, 85)
	cov := coverage.Analyze(profile, xr.Entities, xr.Events)

	r.progress(model.StagePattern, 90)
	signals := pattern.NewDetector(p.Patterns, now).Detect(pattern.Input{
		Profile:       profile,
		Events:        xr.Events,
		Entities:      xr.Entities,
		Documents:     er.Documents,
		Social:        social,
		DocumentCount: len(docs),
	})

	r.progress(model.StageAssemble, 95)
	b := brief.Assemble(brief.Input{
		RunID:            r.id,
		Profile:          profile,
		ConfigVersion:    p.Scoring.Version,
		StartedAt:        started,
		CompletedAt:      now(),
		Documents:        er.Documents,
		Entities:         xr.Entities,
		Events:           xr.Events,
		Coverage:         cov,
		Opportunities:    signals.Opportunities,
		Alerts:           signals.Alerts,
		Failures:         r.failures.Entries(),
		DeadlineExceeded: r.exceeded,
		Stats:            r.stats,
	})
	r.progress("completed", 100)

	log.WithFields(logrus.Fields{
		"documents":     len(b.Documents),
		"entities":      len(b.Entities),
		"events":        len(b.Events),
		"opportunities": len(b.Opportunities),
		"alerts":        len(b.Alerts),
		"failures":      len(b.StageFailures),
		"degraded":      b.Degraded,
	}).Info("pipeline run finished")
	return b, nil
}

type run struct {
	id       string
	ctx      context.Context
	opts     Options
	failures *model.FailureLog
	stats    model.StageStats
	exceeded bool
}

func (r *run) progress(stage model.Stage, percent int) {
	if r.opts.Progress != nil {
		r.opts.Progress(string(stage), percent)
	}
}

// checkBudget records BudgetExceeded for stage once the run context has
// ended. Later network stages then skip their work and the pure stages run
// on whatever was produced so far.
func (r *run) checkBudget(stage model.Stage, skipped int, unit string) {
	err := r.ctx.Err()
	if err == nil && skipped == 0 {
		return
	}
	if err == nil {
		err = context.DeadlineExceeded
	}
	r.exceeded = true
	r.failures.Record(model.StageFailure{
		Stage:   stage,
		Kind:    model.FailureBudgetExceeded,
		Subject: "overall deadline",
		Reason:  fmt.Sprintf("%v; %d %s not started", err, skipped, unit),
		Seq:     budgetSeq,
	})
	logger.WithStage(string(stage), r.id).Warnf("run budget exhausted, %d %s not started", skipped, unit)
}
