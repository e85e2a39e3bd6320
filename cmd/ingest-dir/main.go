package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joseph-ayodele/skogsprospekt/internal/common"
	"github.com/joseph-ayodele/skogsprospekt/internal/ingest"
	"github.com/joseph-ayodele/skogsprospekt/internal/logging"
	"github.com/joseph-ayodele/skogsprospekt/internal/repository"
)

func main() {
	var (
		watch      = flag.Bool("watch", false, "keep running and ingest new PDFs as they appear")
		skipHidden = flag.Bool("skip-hidden", true, "skip dot files and dot directories")
		maxBytes   = flag.Int64("max-bytes", 0, "largest file to ingest (default UPLOAD_MAX_BYTES)")
	)
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: ingest-dir [flags] <dir>")
		os.Exit(2)
	}
	root := flag.Arg(0)

	cfg := common.LoadConfig()
	logger := slog.New(logging.NewHandler(os.Stderr, cfg.Log.Format, logging.ParseLevel(cfg.Log.Level)))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	blobs, err := repository.OpenBlobRepository(ctx, cfg, logger)
	if err != nil {
		logger.Error("open blob store", "backend", cfg.Blob.Backend, "error", err)
		os.Exit(1)
	}
	defer func() { _ = blobs.Close() }()

	ing := ingest.NewFSIngestor(blobs, logger)
	ing.MaxBytes = cfg.Server.UploadMaxBytes
	if *maxBytes > 0 {
		ing.MaxBytes = *maxBytes
	}

	start := time.Now()
	results, stats, err := ing.IngestDirectory(ctx, root, *skipHidden)
	if err != nil {
		logger.Error("ingest directory", "root", root, "error", err)
		os.Exit(1)
	}
	ingest.WriteResults(os.Stdout, results, logger)
	logger.Info("ingest done",
		"root", root,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if !*watch {
		return
	}

	paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:    []string{root},
		Debounce: 500 * time.Millisecond,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("start watcher", "error", err)
		os.Exit(1)
	}
	logger.Info("watching", "root", root)
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				return
			}
			logger.Error("watcher", "error", err)
		case p, ok := <-paths:
			if !ok {
				return
			}
			if *skipHidden && ingest.IsHidden(p) {
				continue
			}
			res, err := ing.IngestPath(ctx, p)
			if err != nil {
				logger.Warn("ingest failed", "path", p, "error", err)
				continue
			}
			ingest.WriteResults(os.Stdout, []ingest.IngestionResult{res}, logger)
		}
	}
}
