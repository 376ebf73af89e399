package model

import (
	"sort"
	"sync"
)

// Stage names a pipeline stage.
type Stage string

const (
	StageQuery    Stage = "query"
	StageCollect  Stage = "collect"
	StageDedup    Stage = "dedup"
	StageScore    Stage = "score"
	StageEnrich   Stage = "enrich"
	StageExtract  Stage = "extract"
	StageCoverage Stage = "coverage"
	StagePattern  Stage = "pattern"
	StageAssemble Stage = "assemble"
)

var stageOrder = map[Stage]int{
	StageQuery:    0,
	StageCollect:  1,
	StageDedup:    2,
	StageScore:    3,
	StageEnrich:   4,
	StageExtract:  5,
	StageCoverage: 6,
	StagePattern:  7,
	StageAssemble: 8,
}

// FailureKind is the stage-local failure taxonomy.
type FailureKind string

const (
	FailureSourceUnavailable    FailureKind = "SourceUnavailable"
	FailureExtractionFailed     FailureKind = "ExtractionFailed"
	FailureSynthesisParseFailed FailureKind = "SynthesisParseFailed"
	FailureSynthesisUnavailable FailureKind = "SynthesisUnavailable"
	FailureBudgetExceeded       FailureKind = "BudgetExceeded"
)

// StageFailure records one degraded unit of work.
type StageFailure struct {
	Stage   Stage       `json:"stage"`
	Kind    FailureKind `json:"kind"`
	Subject string      `json:"subject"`
	Reason  string      `json:"reason"`
	// Seq orders failures within a stage by work-item position, not completion time.
	Seq int `json:"-"`
}

// FailureLog is the run's shared, append-only failure log.
type FailureLog struct {
	mu      sync.Mutex
	entries []StageFailure
}

// Record appends a failure. Safe for concurrent use.
func (l *FailureLog) Record(f StageFailure) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, f)
}

// Len returns the number of recorded failures.
func (l *FailureLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Entries returns a copy sorted by stage, then work-item position.
func (l *FailureLog) Entries() []StageFailure {
	l.mu.Lock()
	out := make([]StageFailure, len(l.entries))
	copy(out, l.entries)
	l.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		si, sj := stageOrder[out[i].Stage], stageOrder[out[j].Stage]
		if si != sj {
			return si < sj
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}
