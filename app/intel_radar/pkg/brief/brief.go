// Package brief freezes the stage outputs of a run into an IntelligenceBrief.
package brief

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

// Input collects everything the earlier stages produced.
type Input struct {
	RunID            string // generated when empty
	Profile          *model.OrganizationProfile
	ConfigVersion    string
	StartedAt        time.Time
	CompletedAt      time.Time
	Documents        []model.EnrichedDocument
	Entities         []model.Entity
	Events           []model.Event
	Coverage         model.CoverageReport
	Opportunities    []model.Signal
	Alerts           []model.Signal
	Failures         []model.StageFailure
	DeadlineExceeded bool
	Stats            model.StageStats
}

// Assemble never fails. A run with failures, no documents or an exceeded
// deadline is marked degraded. Slices are copied so later mutation of the
// inputs cannot reach the brief.
func Assemble(in Input) *model.IntelligenceBrief {
	runID := in.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	completed := in.CompletedAt
	if completed.IsZero() {
		completed = time.Now()
	}

	b := &model.IntelligenceBrief{
		RunID:              runID,
		OrganizationID:     in.Profile.Key(),
		ProfileSnapshotRef: SnapshotRef(in.Profile),
		ConfigVersion:      in.ConfigVersion,
		StartedAt:          in.StartedAt,
		CompletedAt:        completed,
		Documents:          clone(in.Documents),
		Entities:           clone(in.Entities),
		Events:             clone(in.Events),
		CoverageReport:     in.Coverage,
		Opportunities:      clone(in.Opportunities),
		Alerts:             clone(in.Alerts),
		StageFailures:      clone(in.Failures),
		Stats:              in.Stats,
	}
	b.Degraded = len(b.StageFailures) > 0 || len(b.Documents) == 0 || in.DeadlineExceeded
	return b
}

// SnapshotRef identifies the exact profile a run used: "<org>@sha256:<12 hex>".
func SnapshotRef(p *model.OrganizationProfile) string {
	data, err := json.Marshal(p)
	if err != nil {
		return p.Key()
	}
	sum := sha256.Sum256(data)
	return p.Key() + "@sha256:" + hex.EncodeToString(sum[:6])
}

func clone[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}
