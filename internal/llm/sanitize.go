package llm

import (
	"github.com/joseph-ayodele/skogsprospekt/internal/numeric"
)

var nonNegativeFields = []string{
	"areal_total_ha", "skogsmark_ha", "impediment_ha", "volym_total_m3sk",
	"volym_per_ha_m3sk", "medelalder_ar", "bonitet", "tillvaxt_m3sk_per_ar",
	"pris_forvantning_sek", "taxeringsvarde_sek",
}

// SanitizeOptionalFields nulls values that would fail the stricter schema so
// the document as a whole can still validate. Required keys are added as null
// when missing. It returns the fields it touched.
func SanitizeOptionalFields(m map[string]any) []string {
	var dropped []string

	for _, k := range []string{"skogsmark_ha", "volym_total_m3sk"} {
		if _, ok := m[k]; !ok {
			m[k] = nil
			dropped = append(dropped, k+"(missing)")
		}
	}

	for _, k := range nonNegativeFields {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		if f := numeric.Coerce(v); f == nil || *f < 0 {
			m[k] = nil
			dropped = append(dropped, k)
		}
	}

	if ts, ok := m["tradslag_andelar"].(map[string]any); ok {
		for k, v := range ts {
			if v == nil {
				continue
			}
			if f := numeric.Coerce(v); f == nil || *f < 0 || *f > 100 {
				ts[k] = nil
				dropped = append(dropped, "tradslag_andelar."+k)
			}
		}
	} else if _, present := m["tradslag_andelar"]; present && m["tradslag_andelar"] != nil {
		m["tradslag_andelar"] = nil
		dropped = append(dropped, "tradslag_andelar")
	}

	if hk, ok := m["huggningsklasser"].(map[string]any); ok {
		for k, v := range hk {
			if v == nil {
				continue
			}
			if f := numeric.Coerce(v); f == nil || *f < 0 {
				hk[k] = nil
				dropped = append(dropped, "huggningsklasser."+k)
			}
		}
	} else if v, present := m["huggningsklasser"]; present && v != nil {
		m["huggningsklasser"] = nil
		dropped = append(dropped, "huggningsklasser")
	}

	if v, present := m["byggnader"]; present && v != nil {
		if _, ok := v.(map[string]any); !ok {
			m["byggnader"] = nil
			dropped = append(dropped, "byggnader")
		}
	}

	for _, k := range []string{"fastighetsbeteckning", "fastighet", "kommun", "lage_beskrivning", "huggningsklass", "koordinater"} {
		if v, present := m[k]; present && v != nil {
			if _, ok := v.(string); !ok {
				m[k] = nil
				dropped = append(dropped, k)
			}
		}
	}
	return dropped
}
