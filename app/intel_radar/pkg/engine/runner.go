package engine

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

// ProfileProvider resolves an organization id to its profile.
type ProfileProvider interface {
	GetProfile(ctx context.Context, orgID string) (*model.OrganizationProfile, error)
}

// BriefSaver persists completed briefs.
type BriefSaver interface {
	Save(ctx context.Context, b *model.IntelligenceBrief) error
}

// Publisher fans a brief's signals out to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, b *model.IntelligenceBrief) error
}

// Runner ties the pipeline to its collaborators: profile lookup before the
// run, persistence and publishing after it.
type Runner struct {
	Profiles  ProfileProvider
	Pipeline  *Pipeline
	Store     BriefSaver // optional
	Publisher Publisher  // optional
	Options   Options
}

// RunForOrganization fetches the profile (single attempt) and runs the pipeline.
func (r *Runner) RunForOrganization(ctx context.Context, orgID string) (*model.IntelligenceBrief, error) {
	p, err := r.Profiles.GetProfile(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("get profile %q: %w", orgID, err)
	}
	return r.RunProfile(ctx, p)
}

// RunProfile runs the pipeline for p, stores the brief and publishes its signals.
// A store failure is returned along with the brief; publish failures are only logged.
func (r *Runner) RunProfile(ctx context.Context, p *model.OrganizationProfile) (*model.IntelligenceBrief, error) {
	b, err := r.Pipeline.Run(ctx, p, r.Options)
	if err != nil {
		return nil, err
	}

	log := logger.Log.WithFields(logrus.Fields{"run_id": b.RunID, "org": b.OrganizationID})
	if r.Publisher != nil {
		if err := r.Publisher.Publish(ctx, b); err != nil {
			log.Warnf("publish signals failed: %v", err)
		}
	}
	if r.Store != nil {
		if err := r.Store.Save(ctx, b); err != nil {
			return b, fmt.Errorf("save brief %s: %w", b.RunID, err)
		}
	}
	return b, nil
}
