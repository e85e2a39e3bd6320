package textextract

import (
	"bytes"
	"context"
	"testing"

	"github.com/joseph-ayodele/skogsprospekt/internal/entity"
	"github.com/joseph-ayodele/skogsprospekt/internal/llm"
)

func TestClampSliceBytes(t *testing.T) {
	tests := map[int]int{
		0:       DefaultSliceBytes,
		-5:      DefaultSliceBytes,
		1:       MinSliceBytes,
		250000:  250000,
		9000000: MaxSliceBytes,
	}
	for in, want := range tests {
		if got := ClampSliceBytes(in); got != want {
			t.Errorf("ClampSliceBytes(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestTailSlice(t *testing.T) {
	data := append(bytes.Repeat([]byte("a"), 200000), bytes.Repeat([]byte("z"), 120000)...)
	slice, info := TailSlice(data, 1)
	if info != (llm.SliceInfo{InputSizeBytes: 320000, SliceBytesUsed: 120000, Partial: true}) {
		t.Errorf("info = %+v", info)
	}
	if bytes.ContainsRune(slice, 'a') {
		t.Error("slice should come from the end of the file")
	}

	small := []byte("%PDF-1.7 tiny")
	slice, info = TailSlice(small, 0)
	if !bytes.Equal(slice, small) || info.Partial || info.SliceBytesUsed != len(small) {
		t.Errorf("small file: %q %+v", slice, info)
	}
}

func TestRunWithoutExtractor(t *testing.T) {
	p := NewPipeline(nil, nil)
	out, err := p.Run(context.Background(), Input{Blob: &entity.Blob{Key: "k", Data: []byte("%PDF")}})
	if err != nil {
		t.Fatal(err)
	}
	if out.Source != llm.SourcePDFSlice || out.SliceInfo == nil {
		t.Errorf("out = %+v", out)
	}
	if _, err := p.Run(context.Background(), Input{}); err == nil {
		t.Error("expected error without blob or text")
	}
}
