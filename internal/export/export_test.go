package export

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/skogsprospekt/internal/analysis"
	"github.com/joseph-ayodele/skogsprospekt/internal/entity"
	"github.com/joseph-ayodele/skogsprospekt/internal/numeric"
)

func sampleReport() Report {
	name := "Ljusdal Berg 3:4"
	rec := &entity.PropertyRecord{
		Fastighetsbeteckning: &name,
		SkogsmarkHa:          numeric.Ptr(50),
		VolymTotalM3sk:       numeric.Ptr(6000),
		Bonitet:              numeric.Ptr(5),
		PrisForvantningSek:   numeric.Ptr(2100000),
	}
	reg := analysis.DefaultRegistry()
	return Report{
		Key:      "uploads/a.pdf",
		Model:    "gpt-4.1-mini",
		Source:   "pdf_text",
		Data:     rec,
		Analyses: reg.RunAll([]string{"key_metrics", "growth_analysis", "nope"}, rec, analysis.Options{}),
	}
}

func newService() *Service { return NewService(slog.New(slog.NewTextHandler(io.Discard, nil))) }

func TestFlatten(t *testing.T) {
	in := map[string]any{
		"a": 1,
		"b": map[string]any{"c": "x", "d": nil},
		"e": []string{"ladugård", "förråd"},
	}
	want := []Row{
		{Path: "a", Value: 1.0},
		{Path: "b.c", Value: "x"},
		{Path: "b.d", Value: nil},
		{Path: "e", Value: "ladugård, förråd"},
	}
	if diff := cmp.Diff(want, Flatten(in)); diff != "" {
		t.Errorf("Flatten mismatch (-want +got):\n%s", diff)
	}
}

func TestXLSX(t *testing.T) {
	b, err := newService().XLSX(sampleReport())
	if err != nil {
		t.Fatalf("XLSX: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); !cmp.Equal(got, []string{SheetSummary, SheetBaseData}) {
		t.Errorf("sheets = %v", got)
	}

	rows, err := f.GetRows(SheetSummary)
	if err != nil {
		t.Fatal(err)
	}
	if !cmp.Equal(rows[0], []string{"Analys", "Nyckeltal", "Värde"}) {
		t.Errorf("header = %v", rows[0])
	}
	var sawMetric, sawError bool
	for _, r := range rows[1:] {
		if len(r) >= 2 && r[0] == "key_metrics" && r[1] == "pris_per_ha" {
			sawMetric = true
			if len(r) < 3 || r[2] != "42000" {
				t.Errorf("pris_per_ha row = %v", r)
			}
		}
		if len(r) == 3 && r[0] == "nope" && r[1] == "error" && r[2] == analysis.CodeUnknownAnalyzer {
			sawError = true
		}
	}
	if !sawMetric || !sawError {
		t.Errorf("metric=%v error=%v rows=%v", sawMetric, sawError, rows)
	}

	base, _ := f.GetRows(SheetBaseData)
	if len(base) < 4 || base[1][1] != "uploads/a.pdf" {
		t.Errorf("base rows = %v", base)
	}
}

func TestHTML(t *testing.T) {
	b, err := newService().HTML(sampleReport())
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	page := string(b)
	for _, want := range []string{"<h1>Ljusdal Berg 3:4</h1>", "<table>", "<h2>key_metrics</h2>", "unknown_analyzer"} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestSortedNamesSummaryFirst(t *testing.T) {
	got := sortedNames(map[string]analysis.Result{"risk": {}, "summary": {}, "key_metrics": {}})
	if !cmp.Equal(got, []string{"summary", "key_metrics", "risk"}) {
		t.Errorf("order = %v", got)
	}
}
