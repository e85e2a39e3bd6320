package export

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// Row is one flattened leaf: dotted path and scalar value.
type Row struct {
	Path  string
	Value any // float64, string, bool or nil
}

// Flatten marshals v to JSON and walks it into sorted dotted-path rows.
func Flatten(v any) []Row {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil
	}
	var rows []Row
	walk("", tree, &rows)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Path < rows[j].Path })
	return rows
}

func walk(prefix string, v any, rows *[]Row) {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			walk(join(prefix, k), child, rows)
		}
	case []any:
		parts := make([]string, 0, len(t))
		for _, it := range t {
			parts = append(parts, scalarString(it))
		}
		*rows = append(*rows, Row{Path: prefix, Value: strings.Join(parts, ", ")})
	case json.Number:
		if f, err := t.Float64(); err == nil {
			*rows = append(*rows, Row{Path: prefix, Value: f})
		} else {
			*rows = append(*rows, Row{Path: prefix, Value: t.String()})
		}
	default:
		*rows = append(*rows, Row{Path: prefix, Value: t})
	}
}

func join(prefix, k string) string {
	if prefix == "" {
		return k
	}
	return prefix + "." + k
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
