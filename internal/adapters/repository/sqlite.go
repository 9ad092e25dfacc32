package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/okian/intervue/internal/domain/progress"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS user_progress (
	user_id    TEXT PRIMARY KEY,
	document   TEXT NOT NULL,
	version    INTEGER NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLiteStore keeps documents in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dsn and migrates it.
// Use ":memory:" for a throwaway database.
func NewSQLiteStore(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer; also keeps a :memory: database alive on a single connection.
	db.SetMaxOpenConns(1)

	for _, p := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Driver() string { return "sqlite" }

func (s *SQLiteStore) Get(ctx context.Context, userID string) (doc *progress.UserProgress, err error) {
	defer observe(s.Driver(), "get", time.Now(), &err)
	var (
		body    string
		version int64
	)
	err = s.db.QueryRowContext(ctx,
		`SELECT document, version FROM user_progress WHERE user_id = ?`, userID,
	).Scan(&body, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select progress: %w", err)
	}
	return decode([]byte(body), version)
}

func (s *SQLiteStore) Put(ctx context.Context, doc *progress.UserProgress, expectedVersion int64) (version int64, err error) {
	defer observe(s.Driver(), "put", time.Now(), &err)
	b, err := encode(doc)
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	var row *sql.Row
	switch {
	case expectedVersion == AnyVersion:
		row = s.db.QueryRowContext(ctx, `INSERT INTO user_progress (user_id, document, version, updated_at)
			VALUES (?, ?, 1, ?)
			ON CONFLICT (user_id) DO UPDATE SET
				document = excluded.document,
				version = user_progress.version + 1,
				updated_at = excluded.updated_at
			RETURNING version`, doc.UserID, string(b), now)
	case expectedVersion == 0:
		row = s.db.QueryRowContext(ctx, `INSERT INTO user_progress (user_id, document, version, updated_at)
			VALUES (?, ?, 1, ?)
			ON CONFLICT (user_id) DO NOTHING
			RETURNING version`, doc.UserID, string(b), now)
	default:
		row = s.db.QueryRowContext(ctx, `UPDATE user_progress
			SET document = ?, version = version + 1, updated_at = ?
			WHERE user_id = ? AND version = ?
			RETURNING version`, string(b), now, doc.UserID, expectedVersion)
	}
	err = row.Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrConflict
	}
	if err != nil {
		return 0, fmt.Errorf("write progress: %w", err)
	}
	return version, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, userID string) (err error) {
	defer observe(s.Driver(), "delete", time.Now(), &err)
	if _, err = s.db.ExecContext(ctx, `DELETE FROM user_progress WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_progress`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count progress: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
