// Package storage keeps the latest completed brief per organization.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

// ErrNotFound is returned when no brief has been stored for the key.
var ErrNotFound = errors.New("brief not found")

// BriefStore persists briefs. Only the last completed run per organization
// has to stay retrievable.
type BriefStore interface {
	Save(ctx context.Context, b *model.IntelligenceBrief) error
	Latest(ctx context.Context, orgID string) (*model.IntelligenceBrief, error)
	Get(ctx context.Context, runID string) (*model.IntelligenceBrief, error)
}

// New opens the store selected by cfg.Driver. The returned cleanup closes it.
func New(ctx context.Context, cfg config.StorageConfig) (BriefStore, func(), error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(), func() {}, nil
	case "postgres":
		s, err := NewPostgresStore(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		return s, closer("postgres", s.Close), nil
	case "redis":
		s, err := NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return s, closer("redis", s.Close), nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

func closer(name string, close func() error) func() {
	return func() {
		logger.Log.Infof("closing %s brief store", name)
		if err := close(); err != nil {
			logger.Log.Warnf("close %s brief store: %v", name, err)
		}
	}
}
