package model

import "time"

// StageStats counts what each stage produced.
type StageStats struct {
	Queries          int `json:"queries"`
	QueriesDropped   int `json:"queries_dropped"`
	Collected        int `json:"collected"`
	Deduplicated     int `json:"deduplicated"`
	GarbageRejected  int `json:"garbage_rejected"`
	Scored           int `json:"scored"`
	Enriched         int `json:"enriched"`
	EnrichmentFailed int `json:"enrichment_failed"`
	Chunks           int `json:"chunks"`
	SocialSignals    int `json:"social_signals"`
}

// IntelligenceBrief is the immutable result of one pipeline run.
type IntelligenceBrief struct {
	RunID              string             `json:"run_id"`
	OrganizationID     string             `json:"organization_id"`
	ProfileSnapshotRef string             `json:"profile_snapshot_ref"`
	ConfigVersion      string             `json:"config_version"`
	StartedAt          time.Time          `json:"started_at"`
	CompletedAt        time.Time          `json:"completed_at"`
	Documents          []EnrichedDocument `json:"documents"`
	Entities           []Entity           `json:"entities"`
	Events             []Event            `json:"events"`
	CoverageReport     CoverageReport     `json:"coverage_report"`
	Opportunities      []Signal           `json:"opportunities"`
	Alerts             []Signal           `json:"alerts"`
	StageFailures      []StageFailure     `json:"stage_failures"`
	Degraded           bool               `json:"degraded"`
	Stats              StageStats         `json:"stats"`
}
