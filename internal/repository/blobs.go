package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/joseph-ayodele/skogsprospekt/internal/entity"
)

// BlobRepository stores uploaded prospectus files by key.
// Get and GetBySHA256 return an error wrapping common.ErrNotFound when nothing matches.
type BlobRepository interface {
	Put(ctx context.Context, key, contentType string, data []byte) (*entity.Blob, error)
	Get(ctx context.Context, key string) (*entity.Blob, error)
	GetBySHA256(ctx context.Context, sum string) (*entity.Blob, error)
	Ping(ctx context.Context) error
	Close() error
}

// ContentHash is the hex sha256 of data.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
