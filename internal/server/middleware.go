package server

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/skogsprospekt/internal/common"
)

const (
	headerRequestID   = "X-Request-ID"
	headerAccessToken = "X-Access-Token"
)

// requestLogger attaches a request id and a scoped logger, then logs the outcome.
func requestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rid := r.Header.Get(headerRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			log := base.With("request_id", rid)

			ctx := common.WithRequestID(r.Context(), rid)
			ctx = common.WithLogger(ctx, log)
			w.Header().Set(headerRequestID, rid)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Info("http.request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// accessToken rejects requests whose X-Access-Token does not match. An empty token disables the check.
func accessToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(headerAccessToken)
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				common.LoggerFromContext(r.Context()).Warn("http.forbidden", "path", r.URL.Path)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
