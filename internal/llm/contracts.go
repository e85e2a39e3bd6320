package llm

import (
	"context"

	"github.com/joseph-ayodele/skogsprospekt/internal/entity"
)

// Payload sources reported back to API callers.
const (
	SourceClientText = "client_text"
	SourcePDFText    = "pdf_text"
	SourcePDFSlice   = "pdf_slice"
)

// SliceInfo describes how much of the stored file was sent when no text was available.
type SliceInfo struct {
	InputSizeBytes int  `json:"input_size_bytes"`
	SliceBytesUsed int  `json:"slice_bytes_used"`
	Partial        bool `json:"partial"`
}

// ExtractRequest carries either prospectus text or a raw PDF byte slice.
type ExtractRequest struct {
	Model string

	// Text wins over PDFSlice when both are set.
	Text     string
	PDFSlice []byte
	Source   string

	// Pages the caller wants the model to prioritise.
	Pages []int

	FilenameHint string
}

// HasText reports whether the request carries a text payload.
func (r ExtractRequest) HasText() bool { return r.Text != "" }

// PropertyExtractor is the interface the pipeline depends on.
type PropertyExtractor interface {
	ExtractProperty(ctx context.Context, req ExtractRequest) (*entity.PropertyRecord, []byte /*raw provider response*/, error)
}
