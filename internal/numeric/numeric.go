// Package numeric turns loosely typed values into finite float64s or "absent".
//
// A nil *float64 is the absent marker everywhere in this module.
package numeric

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Coerce converts v into a finite number. It returns nil for missing, empty,
// unparsable or non-finite input and for any type that is not a string or number.
func Coerce(v any) *float64 {
	switch t := v.(type) {
	case nil:
		return nil
	case *float64:
		if t == nil {
			return nil
		}
		return finite(*t)
	case float64:
		return finite(t)
	case float32:
		return finite(float64(t))
	case int:
		return finite(float64(t))
	case int8:
		return finite(float64(t))
	case int16:
		return finite(float64(t))
	case int32:
		return finite(float64(t))
	case int64:
		return finite(float64(t))
	case uint:
		return finite(float64(t))
	case uint8:
		return finite(float64(t))
	case uint16:
		return finite(float64(t))
	case uint32:
		return finite(float64(t))
	case uint64:
		return finite(float64(t))
	case json.Number:
		return ParseString(t.String())
	case string:
		return ParseString(t)
	default:
		return nil
	}
}

// ParseString parses locale formatted numbers such as "1 234,56".
// All whitespace is removed and the first comma becomes a decimal point.
func ParseString(s string) *float64 {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return nil
	}
	s = strings.Replace(s, ",", ".", 1)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return finite(f)
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Ptr returns a pointer to f, or nil when f is not finite.
func Ptr(f float64) *float64 {
	return finite(f)
}

// Value dereferences p, falling back to def when p is absent.
func Value(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// First returns the first present value.
func First(ps ...*float64) *float64 {
	for _, p := range ps {
		if p != nil {
			return p
		}
	}
	return nil
}

// Div returns a/b. Absent operands or a zero denominator give absent.
func Div(a, b *float64) *float64 {
	if a == nil || b == nil || *b == 0 {
		return nil
	}
	return finite(*a / *b)
}

// Mul returns a*b, absent if either operand is.
func Mul(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	return finite(*a * *b)
}

// Positive reports whether p is present and greater than zero.
func Positive(p *float64) bool {
	return p != nil && *p > 0
}

// Round rounds f to the given number of decimal places.
func Round(f float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(f*pow) / pow
}
