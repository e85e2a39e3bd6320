package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// IngestionResult is the per-file ingest outcome.
type IngestionResult struct {
	SourcePath   string
	Key          string
	Deduplicated bool
	HashHex      string
	Size         int64
	UploadedAt   time.Time
	Err          string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Ingestor is the behavior the CLI depends on.
type Ingestor interface {
	// IngestPath uploads a single PDF.
	IngestPath(ctx context.Context, path string) (IngestionResult, error)
	// IngestDirectory uploads all PDFs under root.
	IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error)
}

// WriteResults prints one tab separated line per ingested file and logs failures.
// It returns the number of failed results.
func WriteResults(w io.Writer, results []IngestionResult, logger *slog.Logger) int {
	if logger == nil {
		logger = slog.Default()
	}
	failed := 0
	for _, r := range results {
		if r.Err != "" {
			logger.Warn("ingest.file.failed", "path", r.SourcePath, "error", r.Err)
			failed++
			continue
		}
		fmt.Fprintf(w, "%s\t%s\tdedup=%t\n", r.Key, r.SourcePath, r.Deduplicated)
	}
	return failed
}
