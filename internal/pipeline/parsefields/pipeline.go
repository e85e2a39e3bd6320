package parsefields

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/skogsprospekt/internal/common"
	"github.com/joseph-ayodele/skogsprospekt/internal/entity"
	"github.com/joseph-ayodele/skogsprospekt/internal/llm"
	"github.com/joseph-ayodele/skogsprospekt/internal/pipeline/textextract"
)

type Pipeline struct {
	Logger    *slog.Logger
	Extractor llm.PropertyExtractor
}

func NewPipeline(logger *slog.Logger, fe llm.PropertyExtractor) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{Logger: logger, Extractor: fe}
}

// Run sends the Stage 1 payload to the model and returns the record and raw response.
// Failures wrap common.ErrExtraction.
func (p *Pipeline) Run(ctx context.Context, model, filename string, pages []int, in textextract.Output) (*entity.PropertyRecord, []byte, error) {
	req := llm.ExtractRequest{
		Model:        model,
		Text:         in.Text,
		PDFSlice:     in.Slice,
		Source:       in.Source,
		Pages:        pages,
		FilenameHint: filename,
	}

	start := time.Now()
	p.Logger.Info("parsefields.start", "model", model, "source", in.Source, "text_len", len(in.Text), "slice_bytes", len(in.Slice))

	rec, raw, err := p.Extractor.ExtractProperty(ctx, req)
	if err != nil {
		p.Logger.Error("parsefields.failed", "model", model, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, raw, common.NewAppError("EXTRACTION_FAILED", "LLM extraction failed: "+err.Error(), common.ErrExtraction)
	}
	if w := rec.Warnings(); len(w) > 0 {
		p.Logger.Warn("parsefields.plausibility", "warnings", w)
	}
	p.Logger.Info("parsefields.ok", "model", model, "elapsed_ms", time.Since(start).Milliseconds())
	return rec, raw, nil
}
