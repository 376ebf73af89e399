package service

import (
	"context"
	"errors"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/engine"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/profile"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/storage"
)

// OrgRunner runs the pipeline for one organization.
type OrgRunner interface {
	RunForOrganization(ctx context.Context, orgID string) (*model.IntelligenceBrief, error)
}

var _ OrgRunner = (*engine.Runner)(nil)

// BriefService triggers runs and serves stored briefs.
type BriefService struct {
	runner OrgRunner
	store  storage.BriefStore
	log    *log.Helper
}

func NewBriefService(runner *engine.Runner, store storage.BriefStore, logger log.Logger) *BriefService {
	return newBriefService(runner, store, logger)
}

func newBriefService(runner OrgRunner, store storage.BriefStore, logger log.Logger) *BriefService {
	return &BriefService{
		runner: runner,
		store:  store,
		log:    log.NewHelper(logger),
	}
}

// LatestBrief returns the last completed brief of orgID.
func (s *BriefService) LatestBrief(ctx context.Context, orgID string) (*model.IntelligenceBrief, error) {
	b, err := s.store.Latest(ctx, orgID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, kerrors.NotFound("BRIEF_NOT_FOUND", "no brief for organization "+orgID)
	}
	if err != nil {
		s.log.Errorf("load latest brief %s: %v", orgID, err)
		return nil, kerrors.InternalServer("STORAGE_ERROR", "failed to load brief")
	}
	return b, nil
}

// GetRun returns the brief of one run.
func (s *BriefService) GetRun(ctx context.Context, runID string) (*model.IntelligenceBrief, error) {
	b, err := s.store.Get(ctx, runID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, kerrors.NotFound("RUN_NOT_FOUND", "no brief for run "+runID)
	}
	if err != nil {
		s.log.Errorf("load run %s: %v", runID, err)
		return nil, kerrors.InternalServer("STORAGE_ERROR", "failed to load brief")
	}
	return b, nil
}

// TriggerRun runs the pipeline synchronously and returns the brief. A brief
// that completed but could not be stored is still returned.
func (s *BriefService) TriggerRun(ctx context.Context, orgID string) (*model.IntelligenceBrief, error) {
	b, err := s.runner.RunForOrganization(ctx, orgID)
	switch {
	case err == nil:
		return b, nil
	case b != nil:
		s.log.Errorf("run %s for %s completed but was not stored: %v", b.RunID, orgID, err)
		return b, nil
	case errors.Is(err, profile.ErrNotFound):
		return nil, kerrors.NotFound("PROFILE_NOT_FOUND", err.Error())
	case errors.Is(err, model.ErrInvalidProfile):
		return nil, kerrors.BadRequest("INVALID_PROFILE", err.Error())
	}
	s.log.Errorf("run for %s failed: %v", orgID, err)
	return nil, kerrors.ServiceUnavailable("RUN_FAILED", err.Error())
}
