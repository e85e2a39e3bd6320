package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

var (
	reCodeFence = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")
	// property objects the model returned inside an escaped string
	reInnerProperty = regexp.MustCompile(`\{\\"fastighet[a-z]*\\"[\s\S]*?\}`)
)

// ErrNoJSON is returned when no strategy yields a JSON object.
var ErrNoJSON = errors.New("no json object in content")

// StripCodeFences removes a surrounding markdown code block.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if m := reCodeFence.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// DecodeObject parses model content into a JSON object, trying strict JSON,
// then json-repair, then Hjson.
func DecodeObject(content string) (map[string]any, error) {
	s := StripCodeFences(content)
	if s == "" {
		return nil, ErrNoJSON
	}

	if m, err := decodeStrict([]byte(s)); err == nil {
		return m, nil
	}
	if repaired, err := jsonrepair.RepairJSON(s); err == nil {
		if m, err := decodeStrict([]byte(repaired)); err == nil && len(m) > 0 {
			return m, nil
		}
	}
	var h map[string]any
	if err := hjson.Unmarshal([]byte(s), &h); err == nil && len(h) > 0 {
		// round trip so numbers share the json.Number representation
		b, err := json.Marshal(h)
		if err == nil {
			if m, err := decodeStrict(b); err == nil {
				return m, nil
			}
		}
	}
	return nil, ErrNoJSON
}

func decodeStrict(b []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNoJSON
	}
	return m, nil
}

// RecoverInnerJSON scans a raw provider response for an escaped property
// object and returns it unescaped.
func RecoverInnerJSON(raw []byte) (map[string]any, error) {
	loc := reInnerProperty.Find(raw)
	if loc == nil {
		return nil, ErrNoJSON
	}
	inner := strings.ReplaceAll(string(loc), `\"`, `"`)
	m, err := DecodeObject(inner)
	if err != nil {
		return nil, fmt.Errorf("recover inner json: %w", err)
	}
	return m, nil
}
