package analysis

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/skogsprospekt/internal/entity"
)

func TestRunAllIsolatesFailures(t *testing.T) {
	reg := DefaultRegistry()
	got := reg.RunAll([]string{"unknown_name", "key_metrics"}, sampleRecord(), ParseOptions(nil))

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if r := got["unknown_name"]; r.OK || r.Error != CodeUnknownAnalyzer {
		t.Errorf("unknown_name = %+v", r)
	}
	km, ok := got["key_metrics"]
	if !ok || !km.OK {
		t.Fatalf("key_metrics = %+v", km)
	}
	if out, ok := km.Output.(KeyMetrics); !ok {
		t.Errorf("key_metrics output %T", km.Output)
	} else {
		approx(t, "volym_per_ha", out.VolymPerHaM3sk, 120)
	}
}

func TestRunAllEmptyAndDuplicates(t *testing.T) {
	reg := DefaultRegistry()
	if got := reg.RunAll(nil, sampleRecord(), ParseOptions(nil)); len(got) != 0 {
		t.Errorf("empty request gave %d results", len(got))
	}
	got := reg.RunAll([]string{"risk", "risk"}, sampleRecord(), ParseOptions(nil))
	if len(got) != 1 || !got["risk"].OK {
		t.Errorf("got %+v", got)
	}
}

func TestRunRecoversPanics(t *testing.T) {
	reg, err := NewRegistry(
		Entry{Name: "boom", Func: func(*entity.PropertyRecord, Options) (any, error) { panic("division exploded") }},
		Entry{Name: "fails", Func: func(*entity.PropertyRecord, Options) (any, error) { return nil, errors.New("nope") }},
	)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	got := reg.RunAll([]string{"boom", "fails"}, nil, ParseOptions(nil))
	want := map[string]Result{
		"boom":  {Error: "division exploded"},
		"fails": {Error: "nope"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RunAll mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRegistryValidates(t *testing.T) {
	noop := func(*entity.PropertyRecord, Options) (any, error) { return nil, nil }
	tests := []struct {
		name    string
		entries []Entry
	}{
		{"empty name", []Entry{{Name: "", Func: noop}}},
		{"nil func", []Entry{{Name: "x"}}},
		{"duplicate", []Entry{{Name: "x", Func: noop}, {Name: "x", Func: noop}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRegistry(tt.entries...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDefaultRegistryNames(t *testing.T) {
	want := []string{
		"summary",
		"key_metrics",
		"initial_harvest_taxed",
		"loan_sustainability",
		"interest_distribution",
		"forward_cashflow",
		"price_metrics",
		"risk",
		"growth_analysis",
		"harvest_plan",
		"cashflow_loan",
		"value_indicator",
	}
	if diff := cmp.Diff(want, DefaultRegistry().Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}
}

func TestEveryAnalyzerHandlesEmptyRecord(t *testing.T) {
	reg := DefaultRegistry()
	for name, r := range reg.RunAll(reg.Names(), &entity.PropertyRecord{}, ParseOptions(nil)) {
		if !r.OK && r.Error == "" {
			t.Errorf("%s failed without an error code", name)
		}
		if !r.OK && !reg.Has(name) {
			t.Errorf("%s reported as unknown", name)
		}
	}
}

func TestParseOptionsAliases(t *testing.T) {
	o := ParseOptions(map[string]any{
		"ränta":         "0,04",
		"amort_tid":     20,
		"bench_ppm3":    "bad",
		"belaningsgrad": nil,
	})
	if got := o.Float(OptInterestRate); got != 0.04 {
		t.Errorf("ranta = %v", got)
	}
	if got := o.Float(OptAmortizationYears); got != 20 {
		t.Errorf("amorteringstid = %v", got)
	}
	if got := o.Float(OptBenchPricePerM3sk); got != 350 {
		t.Errorf("bench fell through = %v, want default", got)
	}
	if o.Get(OptLoanShare) != nil {
		t.Error("null option should be absent")
	}

	canonical := ParseOptions(map[string]any{"ränta": 0.09, OptInterestRate: 0.03})
	if got := canonical.Float(OptInterestRate); got != 0.03 {
		t.Errorf("canonical name should win, got %v", got)
	}
}

func TestParsePresetsMerge(t *testing.T) {
	presets, err := ParsePresets([]byte("ranta: 0.045\nstandard_pris_per_m3sk: 380\n"))
	if err != nil {
		t.Fatalf("ParsePresets: %v", err)
	}
	opts := presets.Merge(ParseOptions(map[string]any{OptInterestRate: 0.06}))
	want := map[string]float64{OptInterestRate: 0.06, OptDefaultPrice: 380}
	if diff := cmp.Diff(want, opts.Values()); diff != "" {
		t.Errorf("merged options (-want +got):\n%s", diff)
	}
	if _, err := ParsePresets([]byte("ranta: [")); err == nil {
		t.Error("expected decode error")
	}
}
