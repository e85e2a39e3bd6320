package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/skogsprospekt/constants"
	"github.com/joseph-ayodele/skogsprospekt/internal/common"
	"github.com/joseph-ayodele/skogsprospekt/internal/repository"
)

// FSIngestor uploads PDFs from the local filesystem into the blob store.
type FSIngestor struct {
	Blobs    repository.BlobRepository
	Logger   *slog.Logger
	MaxBytes int64 // 0 = no limit

	mu   sync.Mutex
	seen map[string]string // sha256 -> key, for this run
}

func NewFSIngestor(blobs repository.BlobRepository, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{Blobs: blobs, Logger: logger, seen: map[string]string{}}
}

func (i *FSIngestor) IngestPath(ctx context.Context, path string) (IngestionResult, error) {
	var out IngestionResult

	abs, err := filepath.Abs(path)
	if err != nil {
		return out, err
	}
	out.SourcePath = abs

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !AllowedExt(ext) {
		return out, fmt.Errorf("unsupported or missing extension %q", ext)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		i.Logger.Error("ingest.read_failed", "path", abs, "error", err)
		return out, err
	}
	if i.MaxBytes > 0 && int64(len(data)) > i.MaxBytes {
		return out, fmt.Errorf("%s is %d bytes, limit %d", abs, len(data), i.MaxBytes)
	}
	if !constants.HasPDFMagic(data) {
		return out, fmt.Errorf("%s is not a PDF", abs)
	}

	sum := repository.ContentHash(data)
	out.HashHex = sum
	out.Size = int64(len(data))

	if key, ok := i.dedupe(ctx, sum); ok {
		out.Key = key
		out.Deduplicated = true
		i.Logger.Info("ingest.deduplicated", "path", abs, "key", key)
		return out, nil
	}

	key := constants.UploadKey(uuid.NewString())
	b, err := i.Blobs.Put(ctx, key, constants.ContentTypePDF, data)
	if err != nil {
		return out, err
	}
	i.mu.Lock()
	i.seen[sum] = key
	i.mu.Unlock()

	out.Key = b.Key
	out.UploadedAt = b.CreatedAt
	i.Logger.Info("ingest.uploaded", "path", abs, "key", b.Key, "size", b.Size)
	return out, nil
}

func (i *FSIngestor) dedupe(ctx context.Context, sum string) (string, bool) {
	i.mu.Lock()
	key, ok := i.seen[sum]
	i.mu.Unlock()
	if ok {
		return key, true
	}
	existing, err := i.Blobs.GetBySHA256(ctx, sum)
	if err == nil {
		return existing.Key, true
	}
	if !errors.Is(err, common.ErrNotFound) {
		i.Logger.Warn("ingest.dedupe_lookup_failed", "sha256", sum, "error", err)
	}
	return "", false
}

// IngestDirectory walks root, skips hidden if requested,
// and calls IngestPath for each file. Returns per-file results + aggregate stats.
func (i *FSIngestor) IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}
	start := time.Now()

	var results []IngestionResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, IngestionResult{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		r, err := i.IngestPath(ctx, path)
		if err != nil {
			r.SourcePath = path
			r.Err = err.Error()
			results = append(results, r)
			stats.Failed++
			return nil
		}

		results = append(results, r)
		stats.Succeeded++
		if r.Deduplicated {
			stats.Deduplicated++
		}
		return nil
	})

	i.Logger.Info("ingest.directory.done",
		"root", root,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	return results, stats, nil
}
