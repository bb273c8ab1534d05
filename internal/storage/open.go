package storage

import (
	"context"
	"fmt"

	"screening-bot/internal/config"
)

// Open builds the store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		return NewFileStore(cfg.RecordsDir)
	case config.BackendSQLite:
		return NewSQLiteStore(ctx, cfg.SQLitePath)
	case config.BackendPostgres:
		return NewPostgresStore(ctx, cfg.DatabaseURL)
	case config.BackendS3:
		return NewS3Store(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
