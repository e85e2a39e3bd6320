package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/skogsprospekt/internal/common"
	"github.com/joseph-ayodele/skogsprospekt/internal/entity"
)

type memoryBlobRepo struct {
	mu     sync.RWMutex
	blobs  map[string]*entity.Blob
	logger *slog.Logger
}

// NewMemoryBlobRepository keeps blobs in process memory. Used in tests and BLOB_BACKEND=memory.
func NewMemoryBlobRepository(logger *slog.Logger) BlobRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &memoryBlobRepo{blobs: map[string]*entity.Blob{}, logger: logger}
}

func (r *memoryBlobRepo) Put(_ context.Context, key, contentType string, data []byte) (*entity.Blob, error) {
	b := &entity.Blob{
		Key:         key,
		ContentType: contentType,
		Size:        int64(len(data)),
		SHA256:      ContentHash(data),
		Data:        append([]byte(nil), data...),
		CreatedAt:   time.Now().UTC(),
	}
	r.mu.Lock()
	r.blobs[key] = b
	r.mu.Unlock()
	r.logger.Debug("blob.put", "backend", "memory", "key", key, "size", b.Size)
	return copyBlob(b), nil
}

func (r *memoryBlobRepo) Get(_ context.Context, key string) (*entity.Blob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.blobs[key]
	if !ok {
		return nil, fmt.Errorf("blob %q: %w", key, common.ErrNotFound)
	}
	return copyBlob(b), nil
}

func (r *memoryBlobRepo) GetBySHA256(_ context.Context, sum string) (*entity.Blob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.blobs {
		if b.SHA256 == sum {
			return copyBlob(b), nil
		}
	}
	return nil, fmt.Errorf("blob sha256 %s: %w", sum, common.ErrNotFound)
}

func (r *memoryBlobRepo) Ping(context.Context) error { return nil }

func (r *memoryBlobRepo) Close() error { return nil }

func copyBlob(b *entity.Blob) *entity.Blob {
	c := *b
	c.Data = append([]byte(nil), b.Data...)
	return &c
}
