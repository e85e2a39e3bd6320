package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/skogsprospekt/internal/common"
	"github.com/joseph-ayodele/skogsprospekt/internal/entity"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS blobs (
	blob_key     TEXT PRIMARY KEY,
	content_type TEXT NOT NULL,
	size         INTEGER NOT NULL,
	sha256       TEXT NOT NULL,
	data         BLOB NOT NULL,
	created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS blobs_sha256_idx ON blobs (sha256);
`

type sqliteBlobRepo struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLiteBlobRepository opens (creating if needed) the blob database at path.
func OpenSQLiteBlobRepository(ctx context.Context, path string, logger *slog.Logger) (BlobRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create blob dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		logger.Error("failed to open sqlite blob store", "path", path, "error", err)
		return nil, err
	}
	// one writer at a time
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		logger.Error("failed to migrate sqlite blob store", "path", path, "error", err)
		return nil, fmt.Errorf("migrate blobs: %w", err)
	}
	logger.Info("sqlite blob store ready", "path", path)
	return &sqliteBlobRepo{db: db, logger: logger}, nil
}

func (r *sqliteBlobRepo) Put(ctx context.Context, key, contentType string, data []byte) (*entity.Blob, error) {
	b := &entity.Blob{
		Key:         key,
		ContentType: contentType,
		Size:        int64(len(data)),
		SHA256:      ContentHash(data),
		Data:        data,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO blobs (blob_key, content_type, size, sha256, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(blob_key) DO UPDATE SET
			content_type = excluded.content_type,
			size = excluded.size,
			sha256 = excluded.sha256,
			data = excluded.data,
			created_at = excluded.created_at`,
		b.Key, b.ContentType, b.Size, b.SHA256, b.Data, b.CreatedAt.UnixMilli(),
	)
	if err != nil {
		r.logger.Error("failed to put blob", "key", key, "error", err)
		return nil, fmt.Errorf("put blob: %w: %v", common.ErrStorage, err)
	}
	return b, nil
}

func (r *sqliteBlobRepo) Get(ctx context.Context, key string) (*entity.Blob, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT blob_key, content_type, size, sha256, data, created_at FROM blobs WHERE blob_key = ?`, key)
	return r.scan(row, "blob "+key)
}

func (r *sqliteBlobRepo) GetBySHA256(ctx context.Context, sum string) (*entity.Blob, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT blob_key, content_type, size, sha256, data, created_at FROM blobs WHERE sha256 = ? ORDER BY created_at LIMIT 1`, sum)
	return r.scan(row, "blob sha256 "+sum)
}

func (r *sqliteBlobRepo) scan(row *sql.Row, what string) (*entity.Blob, error) {
	var (
		b       entity.Blob
		created int64
	)
	if err := row.Scan(&b.Key, &b.ContentType, &b.Size, &b.SHA256, &b.Data, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", what, common.ErrNotFound)
		}
		r.logger.Error("failed to read blob", "what", what, "error", err)
		return nil, fmt.Errorf("read %s: %w: %v", what, common.ErrStorage, err)
	}
	b.CreatedAt = time.UnixMilli(created).UTC()
	return &b, nil
}

func (r *sqliteBlobRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *sqliteBlobRepo) Close() error {
	return r.db.Close()
}
