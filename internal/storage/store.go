// Package storage persists final records. Every backend stores the full
// record document and keys it by creation time.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"screening-bot/internal/record"
)

var ErrNotFound = errors.New("record not found")

// Store is the persistence collaborator.
type Store interface {
	// Save writes the record and returns the key it was stored under.
	Save(ctx context.Context, rec *record.Record) (string, error)
	Load(ctx context.Context, id string) (*record.Record, error)
	// List returns summaries, newest first.
	List(ctx context.Context) ([]record.Summary, error)
	Delete(ctx context.Context, id string) error
	// Purge removes records whose retention ended at or before now.
	Purge(ctx context.Context, now time.Time) (int, error)
	Backend() string
	Close() error
}

// skipUnreadable logs a stored document that cannot be read or decoded.
// List and Purge carry on past it so one bad record does not block the rest.
func skipUnreadable(backend, key string, err error) {
	slog.Default().Warn("skipping unreadable record",
		"component", "storage", "backend", backend, "key", key, "error", err)
}

const keyTimeLayout = "20060102T150405Z"

// RecordKey is the timestamped name a record is stored under.
func RecordKey(rec *record.Record) string {
	return fmt.Sprintf("record_%s_%s.json", rec.CreatedAt.UTC().Format(keyTimeLayout), rec.ID)
}

// idFromKey extracts the record id from a RecordKey, ignoring any directory
// or prefix.
func idFromKey(key string) (string, bool) {
	if i := strings.LastIndex(key, "/"); i >= 0 {
		key = key[i+1:]
	}
	if !strings.HasPrefix(key, "record_") || !strings.HasSuffix(key, ".json") {
		return "", false
	}
	rest := strings.TrimSuffix(strings.TrimPrefix(key, "record_"), ".json")
	_, id, ok := strings.Cut(rest, "_")
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
