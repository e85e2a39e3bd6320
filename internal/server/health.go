package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Pinger is anything whose liveness backs the health status, normally the blob store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health exposes grpc.health.v1 next to the HTTP API.
type Health struct {
	GRPC   *grpc.Server
	status *health.Server
	log    *slog.Logger
}

func NewHealth(logger *slog.Logger) *Health {
	if logger == nil {
		logger = slog.Default()
	}
	gs := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(gs)
	return &Health{GRPC: gs, status: hs, log: logger}
}

// Check pings p once and updates the overall serving status.
func (h *Health) Check(ctx context.Context, p Pinger, timeout time.Duration) healthpb.HealthCheckResponse_ServingStatus {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	st := healthpb.HealthCheckResponse_SERVING
	if err := p.Ping(ctx); err != nil {
		h.log.Warn("health.ping.failed", "error", err)
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.status.SetServingStatus("", st)
	return st
}

// Watch runs Check every interval until ctx is done.
func (h *Health) Watch(ctx context.Context, p Pinger, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			h.Check(ctx, p, interval/2)
		}
	}
}

// Shutdown flips every service to NOT_SERVING and stops the gRPC server.
func (h *Health) Shutdown() {
	h.status.Shutdown()
	h.GRPC.GracefulStop()
}
