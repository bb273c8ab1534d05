package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"screening-bot/internal/config"
	"screening-bot/internal/record"
)

// sqlTimeLayout sorts lexically in UTC.
const sqlTimeLayout = "2006-01-02T15:04:05.000000000Z"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	id            TEXT PRIMARY KEY,
	storage_key   TEXT NOT NULL,
	session_id    TEXT NOT NULL,
	status        TEXT NOT NULL,
	candidate_key TEXT NOT NULL DEFAULT '',
	created_at    TEXT NOT NULL,
	retain_until  TEXT NOT NULL,
	document      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_created_at ON records(created_at);
CREATE INDEX IF NOT EXISTS idx_records_retain_until ON records(retain_until);
`

// SQLiteStore keeps records in a single SQLite table, one JSON document per row.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path. ":memory:"
// opens a private in-memory database.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, rec *record.Record) (string, error) {
	data, err := record.Marshal(rec)
	if err != nil {
		return "", err
	}

	key := RecordKey(rec)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (id, storage_key, session_id, status, candidate_key, created_at, retain_until, document)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, key, rec.SessionID, string(rec.Status), rec.Privacy.CandidateKey,
		formatSQLTime(rec.CreatedAt), formatSQLTime(rec.RetainUntil), string(data),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert record: %w", err)
	}
	return key, nil
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (*record.Record, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM records WHERE id = ?`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return record.Unmarshal([]byte(doc))
}

func (s *SQLiteStore) List(ctx context.Context) ([]record.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT document FROM records ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	summaries := []record.Summary{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec, err := record.Unmarshal([]byte(doc))
		if err != nil {
			skipUnreadable(config.BackendSQLite, "document", err)
			continue
		}
		summaries = append(summaries, rec.Summary())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return summaries, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Purge(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE retain_until <= ?`, formatSQLTime(now))
	if err != nil {
		return 0, fmt.Errorf("failed to purge records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to purge records: %w", err)
	}
	return int(n), nil
}

func (s *SQLiteStore) Backend() string { return config.BackendSQLite }
func (s *SQLiteStore) Close() error    { return s.db.Close() }

func formatSQLTime(t time.Time) string {
	return t.UTC().Format(sqlTimeLayout)
}
