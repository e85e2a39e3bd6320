package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/skogsprospekt/internal/common"
	"github.com/joseph-ayodele/skogsprospekt/internal/entity"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS blobs (
	blob_key     text PRIMARY KEY,
	content_type text NOT NULL,
	size         bigint NOT NULL,
	sha256       text NOT NULL,
	data         bytea NOT NULL,
	created_at   timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS blobs_sha256_idx ON blobs (sha256);
`

type postgresBlobRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresBlobRepository stores blobs in a bytea table, creating it if missing.
func NewPostgresBlobRepository(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) (BlobRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		logger.Error("failed to migrate postgres blob store", "error", err)
		return nil, fmt.Errorf("migrate blobs: %w", err)
	}
	return &postgresBlobRepo{pool: pool, logger: logger}, nil
}

func (r *postgresBlobRepo) Put(ctx context.Context, key, contentType string, data []byte) (*entity.Blob, error) {
	b := &entity.Blob{
		Key:         key,
		ContentType: contentType,
		Size:        int64(len(data)),
		SHA256:      ContentHash(data),
		Data:        data,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO blobs (blob_key, content_type, size, sha256, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (blob_key) DO UPDATE SET
			content_type = EXCLUDED.content_type,
			size = EXCLUDED.size,
			sha256 = EXCLUDED.sha256,
			data = EXCLUDED.data,
			created_at = EXCLUDED.created_at`,
		b.Key, b.ContentType, b.Size, b.SHA256, b.Data, b.CreatedAt,
	)
	if err != nil {
		r.logger.Error("failed to put blob", "key", key, "error", err)
		return nil, fmt.Errorf("put blob: %w: %v", common.ErrStorage, err)
	}
	return b, nil
}

func (r *postgresBlobRepo) Get(ctx context.Context, key string) (*entity.Blob, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT blob_key, content_type, size, sha256, data, created_at FROM blobs WHERE blob_key = $1`, key)
	return r.scan(row, "blob "+key)
}

func (r *postgresBlobRepo) GetBySHA256(ctx context.Context, sum string) (*entity.Blob, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT blob_key, content_type, size, sha256, data, created_at FROM blobs WHERE sha256 = $1 ORDER BY created_at LIMIT 1`, sum)
	return r.scan(row, "blob sha256 "+sum)
}

func (r *postgresBlobRepo) scan(row pgx.Row, what string) (*entity.Blob, error) {
	var b entity.Blob
	if err := row.Scan(&b.Key, &b.ContentType, &b.Size, &b.SHA256, &b.Data, &b.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", what, common.ErrNotFound)
		}
		r.logger.Error("failed to read blob", "what", what, "error", err)
		return nil, fmt.Errorf("read %s: %w: %v", what, common.ErrStorage, err)
	}
	return &b, nil
}

func (r *postgresBlobRepo) Ping(ctx context.Context) error {
	return HealthCheck(ctx, r.pool, 3*time.Second, r.logger)
}

func (r *postgresBlobRepo) Close() error {
	Close(r.pool, r.logger)
	return nil
}
