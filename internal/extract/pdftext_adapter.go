package extract

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/skogsprospekt/internal/pdftext"
)

type PDFTextAdapter struct {
	e *pdftext.Extractor
}

func NewPDFTextAdapter(e *pdftext.Extractor, _ *slog.Logger) *PDFTextAdapter {
	return &PDFTextAdapter{e: e}
}

func (a *PDFTextAdapter) Extract(ctx context.Context, data []byte, pages []int) (TextExtractionResult, error) {
	r, err := a.e.Extract(ctx, data, pages)
	return TextExtractionResult{
		Text:      r.Text,
		Pages:     r.Pages,
		Method:    r.Method,
		Truncated: r.Truncated,
		Duration:  r.Duration,
		Warnings:  r.Warnings,
	}, err
}
