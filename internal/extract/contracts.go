package extract

import (
	"context"
	"time"
)

// TextExtractor is Stage 1: pdf bytes -> text layer.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, pages []int) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text      string
	Pages     int
	Method    string // "native" | "pdftotext" | "none"
	Truncated bool
	Duration  time.Duration
	Warnings  []string
}
