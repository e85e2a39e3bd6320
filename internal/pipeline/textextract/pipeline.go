package textextract

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/skogsprospekt/internal/entity"
	"github.com/joseph-ayodele/skogsprospekt/internal/extract"
	"github.com/joseph-ayodele/skogsprospekt/internal/llm"
)

// Slice sizes for the base64 fallback payload.
const (
	MinSliceBytes     = 120000
	MaxSliceBytes     = 800000
	DefaultSliceBytes = 300000
)

// Input is what Stage 1 needs to choose a payload.
type Input struct {
	Blob       *entity.Blob
	ClientText string
	Pages      []int
	SliceBytes int
}

// Output is either Text or Slice, tagged with its llm.Source* value.
type Output struct {
	Source    string
	Text      string
	Slice     []byte
	SliceInfo *llm.SliceInfo
	Method    string
	Warnings  []string
}

type Pipeline struct {
	TextExtractor extract.TextExtractor // optional
	Log           *slog.Logger
}

func NewPipeline(tx extract.TextExtractor, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{TextExtractor: tx, Log: log}
}

// Run prefers client text, then the PDF text layer, then a tail slice of the file.
func (p *Pipeline) Run(ctx context.Context, in Input) (Output, error) {
	if strings.TrimSpace(in.ClientText) != "" {
		return Output{Source: llm.SourceClientText, Text: in.ClientText, Method: "client"}, nil
	}
	if in.Blob == nil {
		return Output{}, errors.New("no blob and no text")
	}

	if p.TextExtractor != nil {
		res, err := p.TextExtractor.Extract(ctx, in.Blob.Data, in.Pages)
		if err == nil {
			p.Log.Info("textextract.ok",
				"key", in.Blob.Key,
				"method", res.Method,
				"pages", res.Pages,
				"chars", len(res.Text),
				"truncated", res.Truncated,
			)
			return Output{Source: llm.SourcePDFText, Text: res.Text, Method: res.Method, Warnings: res.Warnings}, nil
		}
		p.Log.Info("textextract.fallback_to_slice", "key", in.Blob.Key, "reason", err.Error())
	}

	slice, info := TailSlice(in.Blob.Data, in.SliceBytes)
	return Output{Source: llm.SourcePDFSlice, Slice: slice, SliceInfo: &info, Method: "slice"}, nil
}

// ClampSliceBytes applies the default for n <= 0 and bounds the result.
func ClampSliceBytes(n int) int {
	if n <= 0 {
		n = DefaultSliceBytes
	}
	return min(MaxSliceBytes, max(MinSliceBytes, n))
}

// TailSlice returns the last ClampSliceBytes(n) bytes of data.
func TailSlice(data []byte, n int) ([]byte, llm.SliceInfo) {
	size := ClampSliceBytes(n)
	used := min(size, len(data))
	return data[len(data)-used:], llm.SliceInfo{
		InputSizeBytes: len(data),
		SliceBytesUsed: used,
		Partial:        used < len(data),
	}
}
