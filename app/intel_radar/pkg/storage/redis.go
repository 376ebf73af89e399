package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

// DefaultRedisTTL applies when the config leaves ttl_seconds empty.
const DefaultRedisTTL = 7 * 24 * time.Hour

// RedisStore writes intel:brief:<runId> and intel:brief:latest:<org> in one transaction.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ BriefStore = (*RedisStore)(nil)

// NewRedisStore parses cfg.URL (redis://...) and pings the server.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStoreWithClient(client, time.Duration(cfg.TTLSeconds)*time.Second), nil
}

// NewRedisStoreWithClient wraps an existing client; ttl <= 0 uses DefaultRedisTTL.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func runKey(runID string) string    { return "intel:brief:" + runID }
func latestKey(orgID string) string { return "intel:brief:latest:" + orgID }

func (s *RedisStore) Save(ctx context.Context, b *model.IntelligenceBrief) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode brief: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, runKey(b.RunID), data, s.ttl)
		pipe.Set(ctx, latestKey(b.OrganizationID), data, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save brief: %w", err)
	}
	return nil
}

func (s *RedisStore) Latest(ctx context.Context, orgID string) (*model.IntelligenceBrief, error) {
	return s.load(ctx, latestKey(orgID))
}

func (s *RedisStore) Get(ctx context.Context, runID string) (*model.IntelligenceBrief, error) {
	return s.load(ctx, runKey(runID))
}

func (s *RedisStore) load(ctx context.Context, key string) (*model.IntelligenceBrief, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	var b model.IntelligenceBrief
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode brief: %w", err)
	}
	return &b, nil
}
