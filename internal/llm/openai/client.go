package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/skogsprospekt/internal/entity"
	"github.com/joseph-ayodele/skogsprospekt/internal/llm"
)

var errNoContent = errors.New("no content in openai response")

// ExtractProperty implements llm.PropertyExtractor. The returned bytes are the
// raw provider response.
func (c *Client) ExtractProperty(ctx context.Context, req llm.ExtractRequest) (*entity.PropertyRecord, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	model := req.Model
	if model == "" {
		model = c.cfg.Model
	}
	c.log.Info("llm.extract.start",
		"req_id", rid,
		"provider", "openai",
		"api", c.cfg.API,
		"model", model,
		"source", req.Source,
		"text_len", len(req.Text),
		"slice_bytes", len(req.PDFSlice),
		"pages", len(req.Pages),
	)

	var (
		raw     []byte
		content string
		err     error
	)
	switch c.cfg.API {
	case APIChat:
		raw, content, err = c.chat(ctx, model, req)
	default:
		raw, content, err = c.responses(ctx, model, req)
	}
	if err != nil && raw == nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, nil, err
	}
	if err != nil && !errors.Is(err, errNoContent) {
		c.log.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, raw, err
	}

	rec, _, stats, err := llm.ParsePropertyContent(content, raw, c.log.With("req_id", rid))
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
		"normalized", len(stats.Changes),
		"dropped", len(stats.Dropped),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, raw, nil
}

type responsesReply struct {
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	OutputText string `json:"output_text"`
}

func (c *Client) responses(ctx context.Context, model string, req llm.ExtractRequest) ([]byte, string, error) {
	body := map[string]any{
		"model":             model,
		"input":             llm.BuildPrompt(req),
		"temperature":       c.cfg.Temperature,
		"max_output_tokens": c.cfg.MaxOutputTokens,
	}
	raw, err := llm.SendJSON(ctx, c.httpClient, c.endpoint("/responses"), body, c.headers(), c.log)
	if err != nil {
		return nil, "", err
	}

	var rr responsesReply
	if err := json.Unmarshal(raw, &rr); err != nil {
		return raw, "", fmt.Errorf("decode openai response: %w", err)
	}
	for _, out := range rr.Output {
		for _, part := range out.Content {
			if part.Type == "output_text" && part.Text != "" {
				return raw, part.Text, nil
			}
		}
	}
	if rr.OutputText != "" {
		return raw, rr.OutputText, nil
	}
	return raw, "", errNoContent
}

func (c *Client) chat(ctx context.Context, model string, req llm.ExtractRequest) ([]byte, string, error) {
	body := map[string]any{
		"model":           model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt(req)},
			{"role": "user", "content": llm.BuildUserPrompt(req)},
		},
	}
	raw, err := llm.SendJSON(ctx, c.httpClient, c.endpoint("/chat/completions"), body, c.headers(), c.log)
	if err != nil {
		return nil, "", err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return raw, "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 || strings.TrimSpace(cc.Choices[0].Message.Content) == "" {
		return raw, "", errNoContent
	}
	return raw, cc.Choices[0].Message.Content, nil
}

func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + path
}

func (c *Client) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
}
