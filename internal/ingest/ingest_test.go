package ingest

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/skogsprospekt/internal/repository"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestIngestDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.pdf"), "%PDF-1.7 Berg 3:4")
	writeFile(t, filepath.Join(root, "sub", "copy-of-a.PDF"), "%PDF-1.7 Berg 3:4")
	writeFile(t, filepath.Join(root, "b.pdf"), "%PDF-1.4 Ås 1:9")
	writeFile(t, filepath.Join(root, "fake.pdf"), "not a pdf")
	writeFile(t, filepath.Join(root, "notes.txt"), "ignored")
	writeFile(t, filepath.Join(root, ".hidden", "c.pdf"), "%PDF-1.7 hidden")

	blobs := repository.NewMemoryBlobRepository(quiet())
	ing := NewFSIngestor(blobs, quiet())
	results, stats, err := ing.IngestDirectory(context.Background(), root, true)
	if err != nil {
		t.Fatalf("IngestDirectory: %v", err)
	}

	want := DirStats{Matched: 4, Succeeded: 3, Deduplicated: 1, Failed: 1}
	stats.Scanned = 0
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	if len(results) != 4 {
		t.Fatalf("results = %d", len(results))
	}

	keys := map[string]bool{}
	for _, r := range results {
		if r.Err == "" {
			keys[r.Key] = true
		}
	}
	if len(keys) != 2 {
		t.Errorf("distinct keys = %v", keys)
	}
	for k := range keys {
		if _, err := blobs.Get(context.Background(), k); err != nil {
			t.Errorf("blob %s: %v", k, err)
		}
	}
}

func TestIngestPathDedupesAgainstStore(t *testing.T) {
	blobs := repository.NewMemoryBlobRepository(quiet())
	path := filepath.Join(t.TempDir(), "a.pdf")
	writeFile(t, path, "%PDF-1.7 same")

	first, err := NewFSIngestor(blobs, quiet()).IngestPath(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewFSIngestor(blobs, quiet()).IngestPath(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if !second.Deduplicated || second.Key != first.Key {
		t.Errorf("first=%+v second=%+v", first, second)
	}
}

func TestIngestPathLimits(t *testing.T) {
	dir := t.TempDir()
	big := filepath.Join(dir, "big.pdf")
	writeFile(t, big, "%PDF-1.7 0123456789")
	ing := NewFSIngestor(repository.NewMemoryBlobRepository(quiet()), quiet())
	ing.MaxBytes = 8
	if _, err := ing.IngestPath(context.Background(), big); err == nil {
		t.Error("expected size error")
	}
	if _, err := ing.IngestPath(context.Background(), filepath.Join(dir, "x.docx")); err == nil {
		t.Error("expected extension error")
	}
}

func TestIsHidden(t *testing.T) {
	if !IsHidden("/a/.git") || IsHidden("/a/b.pdf") || IsHidden(".") {
		t.Error("IsHidden")
	}
}

func TestWriteResults(t *testing.T) {
	results := []IngestionResult{
		{SourcePath: "/in/a.pdf", Key: "uploads/1.pdf"},
		{SourcePath: "/in/b.pdf", Err: "not a PDF"},
		{SourcePath: "/in/c.pdf", Key: "uploads/1.pdf", Deduplicated: true},
	}
	var buf bytes.Buffer
	if failed := WriteResults(&buf, results, quiet()); failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
	want := "uploads/1.pdf\t/in/a.pdf\tdedup=false\nuploads/1.pdf\t/in/c.pdf\tdedup=true\n"
	if got := buf.String(); got != want {
		t.Errorf("output =\n%q\nwant\n%q", got, want)
	}
}
