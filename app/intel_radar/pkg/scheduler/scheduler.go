// Package scheduler triggers pipeline passes for configured organizations on a cron spec.
package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

// OrgRunner runs one organization end to end.
type OrgRunner interface {
	RunForOrganization(ctx context.Context, orgID string) (*model.IntelligenceBrief, error)
}

// Scheduler runs every configured organization, one after another, per tick.
// A tick that fires while the previous pass is still running is skipped.
type Scheduler struct {
	cron   *cron.Cron
	runner OrgRunner
	spec   string
	orgs   []string
	ctx    context.Context
	cancel context.CancelFunc
}

func New(cfg config.ScheduleConfig, runner OrgRunner) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		runner: runner,
		spec:   cfg.Cron,
		orgs:   cfg.Organizations,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Enabled reports whether a cron spec and at least one organization are configured.
func (s *Scheduler) Enabled() bool {
	return s.spec != "" && len(s.orgs) > 0
}

// Start registers the job and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.spec == "" {
		return errors.New("schedule: empty cron spec")
	}
	if len(s.orgs) == 0 {
		return errors.New("schedule: no organizations configured")
	}
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(s.ctx) }); err != nil {
		return fmt.Errorf("schedule %q: %w", s.spec, err)
	}
	s.cron.Start()
	logger.Log.Infof("scheduler started: %q for %d organizations", s.spec, len(s.orgs))
	return nil
}

// Stop cancels in-flight runs and waits for the running job to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	logger.Log.Info("scheduler stopped")
}

// RunOnce runs all organizations now and returns how many failed.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	failed := 0
	for _, org := range s.orgs {
		if ctx.Err() != nil {
			return failed
		}
		log := logger.Log.WithFields(logrus.Fields{"org": org})
		b, err := s.runner.RunForOrganization(ctx, org)
		if err != nil {
			failed++
			log.Errorf("scheduled run failed: %v", err)
			continue
		}
		log.WithFields(logrus.Fields{
			"run_id":   b.RunID,
			"degraded": b.Degraded,
		}).Info("scheduled run finished")
	}
	return failed
}
