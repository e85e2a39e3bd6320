package processor

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path"
	"time"

	"github.com/joseph-ayodele/skogsprospekt/internal/analysis"
	"github.com/joseph-ayodele/skogsprospekt/internal/common"
	"github.com/joseph-ayodele/skogsprospekt/internal/entity"
	"github.com/joseph-ayodele/skogsprospekt/internal/events"
	"github.com/joseph-ayodele/skogsprospekt/internal/llm"
	parse "github.com/joseph-ayodele/skogsprospekt/internal/pipeline/parsefields"
	"github.com/joseph-ayodele/skogsprospekt/internal/pipeline/textextract"
	"github.com/joseph-ayodele/skogsprospekt/internal/repository"
)

// EventSink receives a notification per processed upload.
type EventSink interface {
	Enqueue(ctx context.Context, ev events.Event) error
}

// ProcessRequest is the /process input.
type ProcessRequest struct {
	Key        string         `json:"key"`
	Analyses   []string       `json:"analyses"`
	Options    map[string]any `json:"options"`
	Model      string         `json:"model"`
	SliceBytes int            `json:"slice_bytes"`
	Text       string         `json:"text"`
	Pages      []int          `json:"pages"`
}

// ProcessResult is the /process output.
type ProcessResult struct {
	OK       bool                       `json:"ok"`
	Key      string                     `json:"key"`
	Model    string                     `json:"model"`
	Source   string                     `json:"source"`
	Slice    *llm.SliceInfo             `json:"slice,omitempty"`
	Data     *entity.PropertyRecord     `json:"data"`
	Analyses map[string]analysis.Result `json:"analyses"`
	Raw      json.RawMessage            `json:"raw"`
}

// Processor coordinates blob lookup, text extraction, the LLM parse and the analyzers.
type Processor struct {
	Logger       *slog.Logger
	Blobs        repository.BlobRepository
	Text         *textextract.Pipeline
	Parse        *parse.Pipeline
	Registry     *analysis.Registry
	Presets      analysis.Options
	Events       EventSink // optional
	DefaultModel string
}

func NewProcessor(logger *slog.Logger, blobs repository.BlobRepository, text *textextract.Pipeline, parse *parse.Pipeline, reg *analysis.Registry) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if reg == nil {
		reg = analysis.DefaultRegistry()
	}
	return &Processor{
		Logger:       logger,
		Blobs:        blobs,
		Text:         text,
		Parse:        parse,
		Registry:     reg,
		DefaultModel: "gpt-4.1-mini",
	}
}

// Process runs one /process request end to end.
func (p *Processor) Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	start := time.Now()
	log := p.Logger.With("key", req.Key, "request_id", common.RequestIDFromContext(ctx))

	if req.Key == "" {
		return nil, common.InvalidInputError("Saknar 'key'")
	}
	v := common.NewValidator().
		Field("key", req.Key, common.BlobKey).
		Field("analyses", req.Analyses, common.NoBlank).
		Field("model", req.Model, common.MaxLength(64))
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}

	blob, err := p.Blobs.Get(ctx, req.Key)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFoundError("File not found")
		}
		return nil, common.WrapError(err, "get blob")
	}

	model := req.Model
	if model == "" {
		model = p.DefaultModel
	}

	payload, err := p.Text.Run(ctx, textextract.Input{
		Blob:       blob,
		ClientText: req.Text,
		Pages:      req.Pages,
		SliceBytes: req.SliceBytes,
	})
	if err != nil {
		return nil, common.WrapError(err, "prepare payload")
	}

	rec, raw, err := p.Parse.Run(ctx, model, path.Base(req.Key), req.Pages, payload)
	if err != nil {
		return nil, err
	}

	results := p.Analyze(rec, req.Analyses, req.Options)
	out := &ProcessResult{
		OK:       true,
		Key:      req.Key,
		Model:    model,
		Source:   payload.Source,
		Slice:    payload.SliceInfo,
		Data:     rec,
		Analyses: results,
		Raw:      rawJSON(raw),
	}

	p.notify(ctx, out)
	log.Info("processor.ok",
		"model", model,
		"source", payload.Source,
		"analyses", len(results),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// Analyze runs the requested analyzers. Request options are layered over the presets.
func (p *Processor) Analyze(rec *entity.PropertyRecord, names []string, options map[string]any) map[string]analysis.Result {
	opts := p.Presets.Merge(analysis.ParseOptions(options))
	return p.Registry.RunAll(names, rec, opts)
}

func (p *Processor) notify(ctx context.Context, res *ProcessResult) {
	if p.Events == nil {
		return
	}
	ok := make(map[string]bool, len(res.Analyses))
	for name, r := range res.Analyses {
		ok[name] = r.OK
	}
	ev := events.NewAnalysisCompleted(common.RequestIDFromContext(ctx), res.Key, res.Model, res.Source, ok)
	if err := p.Events.Enqueue(ctx, ev); err != nil {
		p.Logger.Warn("processor.event.enqueue_failed", "key", res.Key, "error", err)
	}
}

// rawJSON embeds provider bytes verbatim when they are JSON, else as a string.
func rawJSON(raw []byte) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	if json.Valid(raw) {
		return json.RawMessage(raw)
	}
	b, _ := json.Marshal(string(raw))
	return b
}
