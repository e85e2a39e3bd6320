package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joseph-ayodele/skogsprospekt/internal/app"
	"github.com/joseph-ayodele/skogsprospekt/internal/common"
	"github.com/joseph-ayodele/skogsprospekt/internal/events"
	"github.com/joseph-ayodele/skogsprospekt/internal/export"
	"github.com/joseph-ayodele/skogsprospekt/internal/logging"
	"github.com/joseph-ayodele/skogsprospekt/internal/repository"
	"github.com/joseph-ayodele/skogsprospekt/internal/server"
)

func main() {
	cfg := common.LoadConfig()

	logger, logCloser, err := logging.New(cfg.Log, os.Stdout)
	if err != nil {
		slog.Error("init logger", "error", err)
		os.Exit(1)
	}
	defer func() { _ = logCloser.Close() }()
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	blobs, err := repository.OpenBlobRepository(ctx, cfg, logger)
	if err != nil {
		logger.Error("open blob store", "backend", cfg.Blob.Backend, "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := blobs.Close(); cerr != nil {
			logger.Error("close blob store", "error", cerr)
		}
	}()

	fe, err := app.NewExtractor(ctx, cfg.LLM, logger)
	if err != nil {
		logger.Error("init extractor", "provider", cfg.LLM.Provider, "error", err)
		os.Exit(1)
	}

	pub, err := app.NewPublisher(cfg.Events, logger)
	if err != nil {
		logger.Error("init event publisher", "error", err)
		os.Exit(1)
	}
	queue := events.NewQueue(pub, logger,
		events.WithWorkers(cfg.Events.Workers),
		events.WithQueueSize(cfg.Events.QueueSize),
	)

	proc, err := app.NewProcessor(cfg, blobs, fe, queue, logger)
	if err != nil {
		logger.Error("init processor", "error", err)
		os.Exit(1)
	}

	srv := server.New(server.Deps{
		Logger:         logger,
		Processor:      proc,
		Blobs:          blobs,
		Export:         export.NewService(logger),
		AccessToken:    cfg.Server.AccessToken,
		UploadMaxBytes: cfg.Server.UploadMaxBytes,
	})
	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	// gRPC health
	health := server.NewHealth(logger)
	health.Check(ctx, blobs, 3*time.Second)
	go health.Watch(ctx, blobs, 15*time.Second)

	if cfg.Server.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			logger.Error("listen grpc", "addr", cfg.Server.GRPCAddr, "error", err)
			os.Exit(1)
		}
		go func() {
			logger.Info("grpc health serving", "addr", cfg.Server.GRPCAddr)
			if err := health.GRPC.Serve(lis); err != nil {
				logger.Error("grpc serve", "error", err)
			}
		}()
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.HTTPAddr, "provider", cfg.LLM.Provider, "blob_backend", cfg.Blob.Backend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	health.Shutdown()
	queue.Shutdown(shutdownCtx)
	if err := pub.Close(); err != nil {
		logger.Error("close event publisher", "error", err)
	}
	logger.Info("stopped")
}
