package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/intervue/internal/domain/progress"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS user_progress (
		user_id    TEXT PRIMARY KEY,
		document   JSONB NOT NULL,
		version    BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS user_progress_categories_idx
		ON user_progress USING GIN ((document -> 'categories'))`,
}

// PostgresStore keeps documents as JSONB rows.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// PostgresOption tunes the pool before it is created.
type PostgresOption func(*pgxpool.Config)

// WithMaxConns caps the pool size.
func WithMaxConns(n int32) PostgresOption {
	return func(c *pgxpool.Config) {
		if n > 0 {
			c.MaxConns = n
		}
	}
}

// NewPostgresStore connects to databaseURL, verifies the connection and
// migrates the schema.
func NewPostgresStore(ctx context.Context, databaseURL string, opts ...PostgresOption) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1
	for _, opt := range opts {
		opt(cfg)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Driver() string { return "postgres" }

func (s *PostgresStore) Get(ctx context.Context, userID string) (doc *progress.UserProgress, err error) {
	defer observe(s.Driver(), "get", time.Now(), &err)
	var (
		body    []byte
		version int64
	)
	err = s.pool.QueryRow(ctx,
		`SELECT document, version FROM user_progress WHERE user_id = $1`, userID,
	).Scan(&body, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select progress: %w", err)
	}
	return decode(body, version)
}

func (s *PostgresStore) Put(ctx context.Context, doc *progress.UserProgress, expectedVersion int64) (version int64, err error) {
	defer observe(s.Driver(), "put", time.Now(), &err)
	b, err := encode(doc)
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC()

	var row pgx.Row
	switch {
	case expectedVersion == AnyVersion:
		row = s.pool.QueryRow(ctx, `INSERT INTO user_progress (user_id, document, version, updated_at)
			VALUES ($1, $2, 1, $3)
			ON CONFLICT (user_id) DO UPDATE SET
				document = EXCLUDED.document,
				version = user_progress.version + 1,
				updated_at = EXCLUDED.updated_at
			RETURNING version`, doc.UserID, b, now)
	case expectedVersion == 0:
		row = s.pool.QueryRow(ctx, `INSERT INTO user_progress (user_id, document, version, updated_at)
			VALUES ($1, $2, 1, $3)
			ON CONFLICT (user_id) DO NOTHING
			RETURNING version`, doc.UserID, b, now)
	default:
		row = s.pool.QueryRow(ctx, `UPDATE user_progress
			SET document = $2, version = version + 1, updated_at = $3
			WHERE user_id = $1 AND version = $4
			RETURNING version`, doc.UserID, b, now, expectedVersion)
	}
	err = row.Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrConflict
	}
	if err != nil {
		return 0, fmt.Errorf("write progress: %w", err)
	}
	return version, nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID string) (err error) {
	defer observe(s.Driver(), "delete", time.Now(), &err)
	if _, err = s.pool.Exec(ctx, `DELETE FROM user_progress WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM user_progress`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count progress: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
