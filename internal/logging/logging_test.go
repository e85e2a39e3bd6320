package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/skogsprospekt/internal/common"
)

type recordingPoster struct {
	mu    sync.Mutex
	tags  []string
	posts []map[string]any
}

func (p *recordingPoster) Post(tag string, message interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tags = append(p.tags, tag)
	p.posts = append(p.posts, message.(map[string]any))
	return nil
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	} {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewJSONWithoutFluent(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(common.LogConfig{Format: "json", Level: "info"}, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closer.Close()

	logger.Debug("hidden")
	logger.Info("process.done", "key", "uploads/a.pdf", "elapsed_ms", 12)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec["msg"] != "process.done" || rec["key"] != "uploads/a.pdf" {
		t.Errorf("record = %v", rec)
	}
}

func TestTintHandlerWritesMessage(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewHandler(&buf, "tint", slog.LevelInfo)).Info("server.start", "addr", ":8080")
	if !strings.Contains(buf.String(), "server.start") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestFluentHandlerFlattensAttrs(t *testing.T) {
	p := &recordingPoster{}
	logger := slog.New(NewFluentHandler(p, slog.LevelInfo)).
		With("request_id", "r-1").
		WithGroup("llm")

	logger.Debug("dropped")
	logger.Warn("llm.retry", "model", "gpt-4.1-mini", "error", errors.New("timeout"), slog.Group("usage", "tokens", 42))

	if len(p.posts) != 1 {
		t.Fatalf("posts = %d, want 1", len(p.posts))
	}
	got := p.posts[0]
	delete(got, "timestamp")
	want := map[string]any{
		"request_id":       "r-1",
		"llm.model":        "gpt-4.1-mini",
		"llm.error":        "timeout",
		"llm.usage.tokens": int64(42),
		"level":            "WARN",
		"message":          "llm.retry",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("post mismatch (-want +got):\n%s", diff)
	}
	if p.tags[0] != "warn" {
		t.Errorf("tag = %q", p.tags[0])
	}
}

func TestFanoutRespectsEachLevel(t *testing.T) {
	var buf bytes.Buffer
	p := &recordingPoster{}
	logger := slog.New(Fanout(
		slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		NewFluentHandler(p, slog.LevelError),
	))

	logger.Debug("only.console")
	logger.Error("both", "error", errors.New("x"))

	if strings.Count(buf.String(), "\n") != 2 {
		t.Errorf("console = %q", buf.String())
	}
	if len(p.posts) != 1 || p.posts[0]["message"] != "both" {
		t.Errorf("fluent posts = %v", p.posts)
	}
}
