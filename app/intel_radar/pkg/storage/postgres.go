package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

const briefsTable = "intelligence_briefs"

const schema = `
CREATE TABLE IF NOT EXISTS intelligence_briefs (
	run_id TEXT PRIMARY KEY,
	organization_id TEXT NOT NULL,
	completed_at TIMESTAMPTZ NOT NULL,
	degraded BOOLEAN NOT NULL DEFAULT FALSE,
	payload JSONB NOT NULL,
	created_at TIMESTAMPTZ DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS intelligence_briefs_org_completed
	ON intelligence_briefs (organization_id, completed_at DESC);
`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresStore keeps every brief as a JSONB row; Latest reads the newest per organization.
type PostgresStore struct {
	db *sql.DB
}

var _ BriefStore = (*PostgresStore)(nil)

// NewPostgresStore connects, pings and creates the table when missing.
func NewPostgresStore(ctx context.Context, cfg config.DBConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return NewPostgresStoreWithDB(db), nil
}

// NewPostgresStoreWithDB wraps an already opened database.
func NewPostgresStoreWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Save(ctx context.Context, b *model.IntelligenceBrief) error {
	query, args, err := saveQuery(b)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert brief: %w", err)
	}
	return nil
}

func (s *PostgresStore) Latest(ctx context.Context, orgID string) (*model.IntelligenceBrief, error) {
	query, args, err := latestQuery(orgID)
	if err != nil {
		return nil, err
	}
	return s.scanOne(ctx, query, args)
}

func (s *PostgresStore) Get(ctx context.Context, runID string) (*model.IntelligenceBrief, error) {
	query, args, err := psql.Select("payload").
		From(briefsTable).
		Where(sq.Eq{"run_id": runID}).
		ToSql()
	if err != nil {
		return nil, err
	}
	return s.scanOne(ctx, query, args)
}

func (s *PostgresStore) scanOne(ctx context.Context, query string, args []any) (*model.IntelligenceBrief, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query brief: %w", err)
	}
	var b model.IntelligenceBrief
	if err := json.Unmarshal(payload, &b); err != nil {
		return nil, fmt.Errorf("decode brief: %w", err)
	}
	return &b, nil
}

func saveQuery(b *model.IntelligenceBrief) (string, []any, error) {
	payload, err := json.Marshal(b)
	if err != nil {
		return "", nil, fmt.Errorf("encode brief: %w", err)
	}
	return psql.Insert(briefsTable).
		Columns("run_id", "organization_id", "completed_at", "degraded", "payload").
		Values(b.RunID, b.OrganizationID, b.CompletedAt, b.Degraded, string(payload)).
		Suffix("ON CONFLICT (run_id) DO UPDATE SET payload = EXCLUDED.payload, degraded = EXCLUDED.degraded").
		ToSql()
}

func latestQuery(orgID string) (string, []any, error) {
	return psql.Select("payload").
		From(briefsTable).
		Where(sq.Eq{"organization_id": orgID}).
		OrderBy("completed_at DESC").
		Limit(1).
		ToSql()
}
