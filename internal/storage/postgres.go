package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"screening-bot/internal/config"
	"screening-bot/internal/record"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS screening_records (
	id            TEXT PRIMARY KEY,
	storage_key   TEXT NOT NULL,
	session_id    TEXT NOT NULL,
	status        TEXT NOT NULL,
	candidate_key TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL,
	retain_until  TIMESTAMPTZ NOT NULL,
	document      JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_screening_records_created_at ON screening_records(created_at);
CREATE INDEX IF NOT EXISTS idx_screening_records_retain_until ON screening_records(retain_until);
`

// PostgresStore keeps records in a JSONB column.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Save(ctx context.Context, rec *record.Record) (string, error) {
	data, err := record.Marshal(rec)
	if err != nil {
		return "", err
	}

	key := RecordKey(rec)
	_, err = s.pool.Exec(ctx,
		`INSERT INTO screening_records (id, storage_key, session_id, status, candidate_key, created_at, retain_until, document)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, key, rec.SessionID, string(rec.Status), rec.Privacy.CandidateKey,
		rec.CreatedAt, rec.RetainUntil, data,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert record: %w", err)
	}
	return key, nil
}

func (s *PostgresStore) Load(ctx context.Context, id string) (*record.Record, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT document FROM screening_records WHERE id = $1`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return record.Unmarshal(doc)
}

func (s *PostgresStore) List(ctx context.Context) ([]record.Summary, error) {
	rows, err := s.pool.Query(ctx, `SELECT document FROM screening_records ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	summaries := []record.Summary{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec, err := record.Unmarshal(doc)
		if err != nil {
			skipUnreadable(config.BackendPostgres, "document", err)
			continue
		}
		summaries = append(summaries, rec.Summary())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return summaries, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM screening_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Purge(ctx context.Context, now time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM screening_records WHERE retain_until <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge records: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) Backend() string { return config.BackendPostgres }

func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
