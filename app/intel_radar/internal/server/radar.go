package server

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/engine"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/profile"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/publish"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/scheduler"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/storage"
)

// NewPipeline builds the intelligence pipeline from cfg.
func NewPipeline(c *config.Config, logger log.Logger) (*engine.Pipeline, error) {
	p, err := engine.NewPipeline(context.Background(), c, nil)
	if err != nil {
		log.NewHelper(logger).Errorf("Failed to init pipeline: %v", err)
		return nil, err
	}
	return p, nil
}

func NewProfileProvider(c *config.Config) profile.Provider {
	return profile.NewProvider(c.Profiles, nil)
}

// NewBriefStore opens the configured brief store.
func NewBriefStore(c *config.Config, logger log.Logger) (storage.BriefStore, func(), error) {
	store, cleanup, err := storage.New(context.Background(), c.Storage)
	if err != nil {
		log.NewHelper(logger).Errorf("Failed to init brief store: %v", err)
		return nil, nil, err
	}
	return store, cleanup, nil
}

// NewPublisher connects to NATS; with no URL configured signals are not published.
func NewPublisher(c *config.Config, logger log.Logger) (engine.Publisher, func(), error) {
	if c.NATS.URL == "" {
		log.NewHelper(logger).Info("nats url empty, signal publishing disabled")
		return nil, func() {}, nil
	}
	pub, err := publish.NewNATSPublisher(c.NATS)
	if err != nil {
		log.NewHelper(logger).Errorf("Failed to connect nats: %v", err)
		return nil, nil, err
	}
	return pub, pub.Close, nil
}

func NewRunner(c *config.Config, profiles profile.Provider, p *engine.Pipeline, store storage.BriefStore, pub engine.Publisher) *engine.Runner {
	return &engine.Runner{
		Profiles:  profiles,
		Pipeline:  p,
		Store:     store,
		Publisher: pub,
		Options:   engine.OptionsFromConfig(c),
	}
}

func NewScheduler(c *config.Config, r *engine.Runner) *scheduler.Scheduler {
	return scheduler.New(c.Schedule, r)
}
