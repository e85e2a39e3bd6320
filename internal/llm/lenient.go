package llm

import (
	"encoding/json"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/joseph-ayodele/skogsprospekt/internal/numeric"
)

// names models use instead of the schema keys
var propertySynonyms = map[string]string{
	"beteckning":             "fastighetsbeteckning",
	"fastighetsnamn":         "fastighet",
	"läge":                   "lage_beskrivning",
	"läge_beskrivning":       "lage_beskrivning",
	"areal_ha":               "areal_total_ha",
	"total_areal_ha":         "areal_total_ha",
	"produktiv_skogsmark_ha": "skogsmark_ha",
	"skogsmark":              "skogsmark_ha",
	"virkesförråd_m3sk":      "volym_total_m3sk",
	"virkesforrad_m3sk":      "volym_total_m3sk",
	"volym_m3sk":             "volym_total_m3sk",
	"m3sk_per_ha":            "volym_per_ha_m3sk",
	"medelålder_ar":          "medelalder_ar",
	"tillväxt_m3sk_per_ar":   "tillvaxt_m3sk_per_ar",
	"prisforvantning_sek":    "pris_forvantning_sek",
	"prisidé_sek":            "pris_forvantning_sek",
	"pris_sek":               "pris_forvantning_sek",
	"taxeringsvärde_sek":     "taxeringsvarde_sek",
	"trädslag_andelar":       "tradslag_andelar",
	"trädslagsfördelning":    "tradslag_andelar",
	"koordinat":              "koordinater",
}

var numberFields = []string{
	"areal_total_ha", "skogsmark_ha", "impediment_ha", "volym_total_m3sk",
	"volym_per_ha_m3sk", "medelalder_ar", "bonitet", "tillvaxt_m3sk_per_ar",
	"pris_forvantning_sek", "taxeringsvarde_sek",
}

var harvestClassCodes = []string{"S1", "S2", "G1", "G2", "K1", "K2"}

// NormalizePropertyMap reshapes a decoded model object towards the schema:
// NFC keys, synonym renames, numeric strings coerced and unknown keys removed.
// It returns the changes it made.
func NormalizePropertyMap(m map[string]any, logger *slog.Logger) []string {
	if logger == nil {
		logger = slog.Default()
	}
	changes := make([]string, 0, 8)

	for k, v := range m {
		nk := strings.ToLower(strings.TrimSpace(norm.NFC.String(k)))
		if nk != k {
			delete(m, k)
			m[nk] = v
		}
	}

	for from, to := range propertySynonyms {
		v, ok := m[from]
		if !ok {
			continue
		}
		if _, exists := m[to]; !exists {
			m[to] = v
		}
		delete(m, from)
		changes = append(changes, from+"->"+to)
	}

	for _, k := range numberFields {
		if changed := coerceNumberField(m, k); changed != "" {
			changes = append(changes, changed)
		}
	}
	for _, k := range []string{"fastighetsbeteckning", "fastighet", "kommun", "lage_beskrivning", "huggningsklass", "koordinater"} {
		switch v := m[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s == "" {
				m[k] = nil
				changes = append(changes, k+"(empty)")
			} else {
				m[k] = s
			}
		case nil:
		default:
			m[k] = strings.TrimSpace(toString(v))
			changes = append(changes, k+"(stringified)")
		}
	}

	if hk, ok := m["huggningsklasser"].(map[string]any); ok {
		m["huggningsklasser"] = normalizeHarvestClasses(hk)
	}
	if ts, ok := m["tradslag_andelar"].(map[string]any); ok {
		m["tradslag_andelar"] = normalizeSpecies(ts)
	}
	if bg, ok := m["byggnader"].(map[string]any); ok {
		m["byggnader"] = normalizeBuildings(bg)
	}

	allowed := make(map[string]struct{}, 24)
	for _, k := range PropertyFields() {
		allowed[k] = struct{}{}
	}
	for k := range m {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			changes = append(changes, k+"(unknown)")
		}
	}

	if len(changes) > 0 {
		logger.Debug("llm.extract.normalize", "changes", changes)
	}
	return changes
}

func coerceNumberField(m map[string]any, k string) string {
	v, ok := m[k]
	if !ok || v == nil {
		return ""
	}
	f := numeric.Coerce(v)
	if f == nil {
		m[k] = nil
		return k + "(unparsable)"
	}
	m[k] = *f
	if _, wasString := v.(string); wasString {
		return k + "(coerced)"
	}
	return ""
}

func normalizeHarvestClasses(in map[string]any) map[string]any {
	out := make(map[string]any, len(harvestClassCodes))
	for k, v := range in {
		code := strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(k)), "_M3SK")
		for _, c := range harvestClassCodes {
			if code == c {
				if f := numeric.Coerce(v); f != nil {
					out[c+"_m3sk"] = *f
				} else {
					out[c+"_m3sk"] = nil
				}
			}
		}
	}
	return out
}

func normalizeSpecies(in map[string]any) map[string]any {
	out := make(map[string]any, 3)
	for k, v := range in {
		nk := strings.ToLower(norm.NFC.String(strings.TrimSpace(k)))
		switch nk {
		case "lov_procent", "löv", "lov":
			nk = "löv_procent"
		case "gran":
			nk = "gran_procent"
		case "tall":
			nk = "tall_procent"
		}
		if nk != "gran_procent" && nk != "tall_procent" && nk != "löv_procent" {
			continue
		}
		if f := numeric.Coerce(v); f != nil {
			out[nk] = *f
		} else {
			out[nk] = nil
		}
	}
	return out
}

func normalizeBuildings(in map[string]any) map[string]any {
	out := map[string]any{}
	switch v := in["finns"].(type) {
	case bool:
		out["finns"] = v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "ja", "true", "yes":
			out["finns"] = true
		case "nej", "false", "no":
			out["finns"] = false
		}
	}
	switch v := in["typer"].(type) {
	case []any:
		typer := make([]any, 0, len(v))
		for _, it := range v {
			if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
				typer = append(typer, strings.TrimSpace(s))
			}
		}
		out["typer"] = typer
	case string:
		typer := []any{}
		for _, part := range strings.Split(v, ",") {
			if s := strings.TrimSpace(part); s != "" {
				typer = append(typer, s)
			}
		}
		out["typer"] = typer
	}
	return out
}

func toString(v any) string {
	switch t := v.(type) {
	case json.Number:
		return t.String()
	default:
		b, _ := json.Marshal(t)
		return strings.Trim(string(b), `"`)
	}
}
