package llm

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStripCodeFences(t *testing.T) {
	tests := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}```":       `{"a":1}`,
		"  {\"a\":1}  ":           `{"a":1}`,
	}
	for in, want := range tests {
		if got := StripCodeFences(in); got != want {
			t.Errorf("StripCodeFences(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDecodeObjectStrategies(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"strict", `{"skogsmark_ha": 50, "volym_total_m3sk": 6000}`},
		{"fenced", "```json\n{\"skogsmark_ha\": 50, \"volym_total_m3sk\": 6000}\n```"},
		{"trailing comma", `{"skogsmark_ha": 50, "volym_total_m3sk": 6000,}`},
		{"unquoted keys", "{\n  skogsmark_ha: 50\n  volym_total_m3sk: 6000\n}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := DecodeObject(tt.content)
			if err != nil {
				t.Fatalf("DecodeObject: %v", err)
			}
			for k, want := range map[string]string{"skogsmark_ha": "50", "volym_total_m3sk": "6000"} {
				n, ok := m[k].(json.Number)
				if !ok || n.String() != want {
					t.Errorf("%s = %#v, want %s", k, m[k], want)
				}
			}
		})
	}
}

func TestDecodeObjectEmpty(t *testing.T) {
	if _, err := DecodeObject("   "); err == nil {
		t.Fatal("expected error for empty content")
	}
}

func TestRecoverInnerJSON(t *testing.T) {
	raw := []byte(`{"output":[{"content":[{"type":"refusal","text":"se {\"fastighet\":\"Berg 1:2\",\"skogsmark_ha\":40,\"volym_total_m3sk\":5000}"}]}]}`)
	m, err := RecoverInnerJSON(raw)
	if err != nil {
		t.Fatalf("RecoverInnerJSON: %v", err)
	}
	if m["fastighet"] != "Berg 1:2" {
		t.Errorf("fastighet = %v", m["fastighet"])
	}
	if _, err := RecoverInnerJSON([]byte(`{"output":[]}`)); err == nil {
		t.Error("expected error when nothing matches")
	}
}

func TestNormalizePropertyMap(t *testing.T) {
	m := map[string]any{
		"Virkesförråd_m3sk": "6 000",
		"skogsmark_ha":      json.Number("50"),
		"pris_sek":          "2 100 000",
		"kommun":            "  Ljusdal ",
		"bonitet":           "okänd",
		"huggningsklasser":  map[string]any{"s1": "1200", "S2_M3SK": 300, "X9": 5},
		"tradslag_andelar":  map[string]any{"gran": 60, "lov_procent": "10"},
		"byggnader":         map[string]any{"finns": "nej", "typer": "ladugård, förråd"},
		"mäklare":           "Skogsbyrån",
	}
	NormalizePropertyMap(m, nil)

	want := map[string]any{
		"volym_total_m3sk":     6000.0,
		"skogsmark_ha":         50.0,
		"pris_forvantning_sek": 2100000.0,
		"kommun":               "Ljusdal",
		"bonitet":              nil,
		"huggningsklasser":     map[string]any{"S1_m3sk": 1200.0, "S2_m3sk": 300.0},
		"tradslag_andelar":     map[string]any{"gran_procent": 60.0, "löv_procent": 10.0},
		"byggnader":            map[string]any{"finns": false, "typer": []any{"ladugård", "förråd"}},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("normalized mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeComposesNFCKeys(t *testing.T) {
	decomposed := "tra\u0308dslag_andelar"
	m := map[string]any{decomposed: map[string]any{"tall_procent": 40}}
	NormalizePropertyMap(m, nil)
	if _, ok := m["tradslag_andelar"]; !ok {
		t.Errorf("keys = %v", m)
	}
}

func TestSanitizeOptionalFields(t *testing.T) {
	m := map[string]any{
		"skogsmark_ha":     -5.0,
		"tradslag_andelar": map[string]any{"gran_procent": 140.0, "tall_procent": 30.0},
		"byggnader":        "ja",
		"kommun":           12.0,
	}
	dropped := SanitizeOptionalFields(m)
	if m["skogsmark_ha"] != nil || m["byggnader"] != nil || m["kommun"] != nil {
		t.Errorf("sanitized = %v", m)
	}
	if v, ok := m["volym_total_m3sk"]; !ok || v != nil {
		t.Errorf("volym_total_m3sk should be present as null, got %v (present %v)", v, ok)
	}
	ts := m["tradslag_andelar"].(map[string]any)
	if ts["gran_procent"] != nil || ts["tall_procent"] != 30.0 {
		t.Errorf("tradslag = %v", ts)
	}
	if len(dropped) != 5 {
		t.Errorf("dropped = %v", dropped)
	}
}

func TestParsePropertyContentLenient(t *testing.T) {
	content := "```json\n" + `{
		"fastighetsbeteckning": "Ljusdal Berg 3:4",
		"skogsmark_ha":         "50",
		"volym_total_m3sk":     6000,
		"pris_forvantning_sek": "2 100 000",
		"tradslag_andelar":     {"gran_procent": 160, "tall_procent": 30, "löv_procent": 10},
		"huggningsklasser":     {"S1": 1200, "S2": 300},
		"kommentar":            "ignoreras"
	}` + "\n```"

	rec, doc, stats, err := ParsePropertyContent(content, nil, nil)
	if err != nil {
		t.Fatalf("ParsePropertyContent: %v", err)
	}
	if rec.SkogsmarkHa == nil || *rec.SkogsmarkHa != 50 {
		t.Errorf("skogsmark_ha = %v", rec.SkogsmarkHa)
	}
	if rec.PrisForvantningSek == nil || *rec.PrisForvantningSek != 2100000 {
		t.Errorf("pris = %v", rec.PrisForvantningSek)
	}
	if rec.TradslagAndelar.GranProcent != nil {
		t.Errorf("gran_procent should be nulled, got %v", *rec.TradslagAndelar.GranProcent)
	}
	if rec.Huggningsklasser.Mature() != 1500 {
		t.Errorf("mature = %v", rec.Huggningsklasser.Mature())
	}
	if len(stats.Dropped) == 0 {
		t.Error("expected lenient pass to drop gran_procent")
	}
	if strings.Contains(string(doc), "kommentar") {
		t.Errorf("unknown key kept: %s", doc)
	}
	if err := ValidateProperty(doc); err != nil {
		t.Errorf("normalized doc invalid: %v", err)
	}
}

func TestParsePropertyContentFailure(t *testing.T) {
	_, _, _, err := ParsePropertyContent("Jag kan inte läsa filen.", []byte(`{"output":[]}`), nil)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestPromptContents(t *testing.T) {
	withText := ExtractRequest{Text: "Sammanställning över fastigheten", Pages: []int{3, 4}}
	sys := BuildSystemPrompt(withText)
	for _, want := range []string{"JSON_SCHEMA:", "huggningsklasser (S1, S2, G1, G2, K1, K2)", "sidorna: 3, 4."} {
		if !strings.Contains(sys, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
	if user := BuildUserPrompt(withText); !strings.Contains(user, "text extraherad") {
		t.Errorf("user prompt = %q", user)
	}

	slice := ExtractRequest{PDFSlice: []byte("%PDF-1.7")}
	user := BuildUserPrompt(slice)
	if !strings.Contains(user, "PDF_base64:\nJVBERi0xLjc=") {
		t.Errorf("user prompt = %q", user)
	}
	if strings.Contains(BuildSystemPrompt(slice), "sidorna") {
		t.Error("page note without pages")
	}
	if !strings.HasPrefix(BuildPrompt(slice), "SYSTEM:\n") {
		t.Error("combined prompt should start with SYSTEM")
	}
}
