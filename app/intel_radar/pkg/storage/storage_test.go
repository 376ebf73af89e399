package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

func sampleBrief(runID string, completed time.Time) *model.IntelligenceBrief {
	return &model.IntelligenceBrief{
		RunID:          runID,
		OrganizationID: "acme",
		CompletedAt:    completed,
		Documents: []model.EnrichedDocument{{
			ScoredDocument:   model.ScoredDocument{Document: model.Document{ID: "u:1", Title: "Ford recalls trucks"}, RelevanceScore: 70},
			ExtractionStatus: model.ExtractionSuccess,
		}},
		Opportunities: []model.Signal{{Title: "Ford crisis", PatternMatched: "competitor-crisis", Score: 70}},
		Degraded:      true,
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Latest(ctx, "acme")
	assert.ErrorIs(t, err, ErrNotFound)

	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Save(ctx, sampleBrief("r1", t0)))
	require.NoError(t, s.Save(ctx, sampleBrief("r2", t0.Add(time.Hour))))

	latest, err := s.Latest(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "r2", latest.RunID)

	first, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", first.RunID)
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	s := NewRedisStoreWithClient(client, time.Hour)
	defer s.Close()

	_, err := s.Latest(ctx, "acme")
	assert.ErrorIs(t, err, ErrNotFound)

	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Save(ctx, sampleBrief("r1", t0)))
	require.NoError(t, s.Save(ctx, sampleBrief("r2", t0.Add(time.Hour))))

	latest, err := s.Latest(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "r2", latest.RunID)
	assert.True(t, latest.Degraded)
	require.Len(t, latest.Documents, 1)
	assert.Equal(t, 70, latest.Documents[0].RelevanceScore)
	assert.Equal(t, "competitor-crisis", latest.Opportunities[0].PatternMatched)
	assert.True(t, latest.CompletedAt.Equal(t0.Add(time.Hour)))

	old, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", old.RunID)

	assert.True(t, m.Exists("intel:brief:latest:acme"))
	assert.Equal(t, time.Hour, m.TTL("intel:brief:r2"))

	m.FastForward(2 * time.Hour)
	_, err = s.Latest(ctx, "acme")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewRedisStoreFromURL(t *testing.T) {
	m := miniredis.RunT(t)
	s, err := NewRedisStore(context.Background(), config.RedisConfig{URL: "redis://" + m.Addr() + "/0"})
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, DefaultRedisTTL, s.ttl)

	_, err = NewRedisStore(context.Background(), config.RedisConfig{URL: "not a url"})
	assert.Error(t, err)
}

func TestPostgresQueries(t *testing.T) {
	b := sampleBrief("r1", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	query, args, err := saveQuery(b)
	require.NoError(t, err)
	assert.Contains(t, query, "INSERT INTO intelligence_briefs")
	assert.Contains(t, query, "$5")
	assert.Contains(t, query, "ON CONFLICT (run_id)")
	require.Len(t, args, 5)
	assert.Equal(t, "r1", args[0])
	assert.Equal(t, "acme", args[1])
	assert.Contains(t, args[4], `"run_id":"r1"`)

	query, args, err = latestQuery("acme")
	require.NoError(t, err)
	assert.Contains(t, query, "FROM intelligence_briefs WHERE organization_id = $1")
	assert.Contains(t, query, "ORDER BY completed_at DESC")
	assert.Contains(t, query, "LIMIT 1")
	assert.Equal(t, []any{"acme"}, args)
}

func TestNewSelectsDriver(t *testing.T) {
	s, cleanup, err := New(context.Background(), config.StorageConfig{Driver: "memory"})
	require.NoError(t, err)
	defer cleanup()
	assert.IsType(t, &MemoryStore{}, s)

	_, _, err = New(context.Background(), config.StorageConfig{Driver: "cassandra"})
	assert.Error(t, err)
}
