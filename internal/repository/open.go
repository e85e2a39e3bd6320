package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/skogsprospekt/internal/common"
)

// OpenBlobRepository builds the backend named by cfg.Blob.Backend.
func OpenBlobRepository(ctx context.Context, cfg *common.Config, logger *slog.Logger) (BlobRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Blob.Backend {
	case common.BlobBackendMemory:
		return NewMemoryBlobRepository(logger), nil
	case common.BlobBackendSQLite:
		return OpenSQLiteBlobRepository(ctx, cfg.Blob.SQLitePath, logger)
	case common.BlobBackendPostgres:
		pool, err := Open(ctx, Config{
			DSN:              cfg.Database.DSN,
			MaxConns:         cfg.Database.MaxConns,
			MinConns:         cfg.Database.MinConns,
			MaxConnLifetime:  cfg.Database.MaxConnLifetime,
			MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
			DialTimeout:      cfg.Database.DialTimeout,
			StatementTimeout: cfg.Database.StatementTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		repo, err := NewPostgresBlobRepository(ctx, pool, logger)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q: %w", cfg.Blob.Backend, common.ErrInvalidInput)
	}
}
