package numeric

import (
	"encoding/json"
	"math"
	"testing"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want *float64
	}{
		{"nil", nil, nil},
		{"empty string", "", nil},
		{"blank string", "   ", nil},
		{"locale string", "1 234,56", Ptr(1234.56)},
		{"nbsp thousands", "2\u00a0100\u00a0000", Ptr(2100000)},
		{"plain string", "42", Ptr(42)},
		{"dot decimal", "3.5", Ptr(3.5)},
		{"garbage", "abc", nil},
		{"nan string", "NaN", nil},
		{"inf string", "Inf", nil},
		{"float", 12.5, Ptr(12.5)},
		{"int", 7, Ptr(7)},
		{"int64", int64(9), Ptr(9)},
		{"float32", float32(0.5), Ptr(0.5)},
		{"json number", json.Number("10"), Ptr(10)},
		{"nan", math.NaN(), nil},
		{"inf", math.Inf(1), nil},
		{"bool", true, nil},
		{"map", map[string]any{"a": 1}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Coerce(tt.in)
			switch {
			case tt.want == nil && got != nil:
				t.Fatalf("Coerce(%v) = %v, want absent", tt.in, *got)
			case tt.want != nil && got == nil:
				t.Fatalf("Coerce(%v) = absent, want %v", tt.in, *tt.want)
			case tt.want != nil && math.Abs(*got-*tt.want) > 1e-9:
				t.Fatalf("Coerce(%v) = %v, want %v", tt.in, *got, *tt.want)
			}
		})
	}
}

func TestCoerceIdempotent(t *testing.T) {
	for _, f := range []float64{0, -1.25, 1e9, 350} {
		first := Coerce(f)
		second := Coerce(*first)
		if *first != f || *second != f {
			t.Errorf("Coerce not idempotent for %v: %v, %v", f, *first, *second)
		}
	}
}

func TestDiv(t *testing.T) {
	if got := Div(Ptr(10), Ptr(0)); got != nil {
		t.Errorf("Div by zero = %v, want absent", *got)
	}
	if got := Div(nil, Ptr(2)); got != nil {
		t.Errorf("Div with absent numerator = %v, want absent", *got)
	}
	if got := Div(Ptr(9), Ptr(3)); got == nil || *got != 3 {
		t.Errorf("Div(9,3) = %v, want 3", got)
	}
}

func TestFirstAndValue(t *testing.T) {
	if got := First(nil, Ptr(2), Ptr(3)); got == nil || *got != 2 {
		t.Errorf("First = %v, want 2", got)
	}
	if got := Value(nil, 5); got != 5 {
		t.Errorf("Value(nil, 5) = %v", got)
	}
	if got := Round(4.16666, 2); got != 4.17 {
		t.Errorf("Round = %v, want 4.17", got)
	}
}
