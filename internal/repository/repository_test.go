package repository

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/skogsprospekt/internal/common"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func backends(t *testing.T) map[string]BlobRepository {
	t.Helper()
	sq, err := OpenSQLiteBlobRepository(context.Background(), filepath.Join(t.TempDir(), "nested", "blobs.db"), quiet())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sq.Close() })
	return map[string]BlobRepository{
		"memory": NewMemoryBlobRepository(quiet()),
		"sqlite": sq,
	}
}

func TestBlobRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			data := []byte("%PDF-1.7 prospekt")
			put, err := repo.Put(ctx, "uploads/a.pdf", "application/pdf", data)
			if err != nil {
				t.Fatalf("Put: %v", err)
			}
			if put.Size != int64(len(data)) || put.SHA256 != ContentHash(data) {
				t.Errorf("put = %+v", put)
			}

			got, err := repo.Get(ctx, "uploads/a.pdf")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(got.Data) != string(data) || got.ContentType != "application/pdf" {
				t.Errorf("got = %q %q", got.Data, got.ContentType)
			}

			bySum, err := repo.GetBySHA256(ctx, ContentHash(data))
			if err != nil || bySum.Key != "uploads/a.pdf" {
				t.Errorf("GetBySHA256 = %v, %v", bySum, err)
			}
			if err := repo.Ping(ctx); err != nil {
				t.Errorf("Ping: %v", err)
			}
		})
	}
}

func TestBlobOverwrite(t *testing.T) {
	ctx := context.Background()
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := repo.Put(ctx, "uploads/b.pdf", "application/pdf", []byte("v1")); err != nil {
				t.Fatal(err)
			}
			if _, err := repo.Put(ctx, "uploads/b.pdf", "application/pdf", []byte("v2")); err != nil {
				t.Fatal(err)
			}
			got, err := repo.Get(ctx, "uploads/b.pdf")
			if err != nil || string(got.Data) != "v2" {
				t.Errorf("Get = %v, %v", got, err)
			}
		})
	}
}

func TestBlobNotFound(t *testing.T) {
	ctx := context.Background()
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := repo.Get(ctx, "uploads/missing.pdf"); !errors.Is(err, common.ErrNotFound) {
				t.Errorf("Get err = %v", err)
			}
			if _, err := repo.GetBySHA256(ctx, "00"); !errors.Is(err, common.ErrNotFound) {
				t.Errorf("GetBySHA256 err = %v", err)
			}
		})
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	repo := NewMemoryBlobRepository(quiet())
	ctx := context.Background()
	data := []byte("abc")
	_, _ = repo.Put(ctx, "k", "application/pdf", data)
	data[0] = 'x'
	got, _ := repo.Get(ctx, "k")
	got.Data[1] = 'y'
	again, _ := repo.Get(ctx, "k")
	if string(again.Data) != "abc" {
		t.Errorf("stored data mutated: %q", again.Data)
	}
}

func TestOpenBlobRepositoryUnknown(t *testing.T) {
	cfg := &common.Config{Blob: common.BlobConfig{Backend: "s3"}}
	if _, err := OpenBlobRepository(context.Background(), cfg, quiet()); !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("err = %v", err)
	}
}
