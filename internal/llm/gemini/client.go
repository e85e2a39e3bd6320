// Package gemini extracts property records with the Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/joseph-ayodele/skogsprospekt/internal/entity"
	"github.com/joseph-ayodele/skogsprospekt/internal/llm"
)

// Generator is the part of *genai.Models the client calls.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Config struct {
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

type Client struct {
	cfg    Config
	models Generator
	log    *slog.Logger
}

// NewClient dials the Gemini API backend.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return NewWithGenerator(cfg, gc.Models, logger), nil
}

// NewWithGenerator builds a client around an existing generator.
func NewWithGenerator(cfg Config, g Generator, logger *slog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, models: g, log: logger}
}

// ExtractProperty implements llm.PropertyExtractor. Without text the PDF
// slice is attached as inline application/pdf data.
func (c *Client) ExtractProperty(ctx context.Context, req llm.ExtractRequest) (*entity.PropertyRecord, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	model := req.Model
	if model == "" || !isGeminiModel(model) {
		model = c.cfg.Model
	}
	c.log.Info("llm.extract.start",
		"req_id", rid,
		"provider", "gemini",
		"model", model,
		"source", req.Source,
		"text_len", len(req.Text),
		"slice_bytes", len(req.PDFSlice),
	)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(c.cfg.Temperature),
		ResponseMIMEType: "application/json",
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: llm.BuildSystemPrompt(req)}},
		},
	}

	var parts []*genai.Part
	if req.HasText() || len(req.PDFSlice) == 0 {
		parts = append(parts, &genai.Part{Text: llm.BuildUserPrompt(req)})
	} else {
		parts = append(parts,
			&genai.Part{Text: "Bifogat är ett svenskt skogsprospekt (PDF). Fokusera på tabeller och sammanställningar enligt schema."},
			&genai.Part{InlineData: &genai.Blob{Data: req.PDFSlice, MIMEType: "application/pdf"}},
		)
	}
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	resp, err := c.models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, nil, fmt.Errorf("gemini generate: %w", err)
	}
	raw, _ := json.Marshal(resp)

	rec, _, stats, err := llm.ParsePropertyContent(resp.Text(), raw, c.log.With("req_id", rid))
	if err != nil {
		c.log.Error("llm.extract.parse_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, raw, err
	}
	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"model", model,
		"recovered", stats.Recovered,
		"dropped", len(stats.Dropped),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, raw, nil
}

func isGeminiModel(m string) bool {
	return strings.HasPrefix(m, "gemini")
}
