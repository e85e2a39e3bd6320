package entity

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/skogsprospekt/internal/numeric"
)

// PropertyRecord is the normalized "base data" extracted from a prospectus.
// Every field is optional; numeric fields are finite or nil.
type PropertyRecord struct {
	Fastighetsbeteckning *string `json:"fastighetsbeteckning"`
	Fastighet            *string `json:"fastighet"`
	Kommun               *string `json:"kommun"`
	LageBeskrivning      *string `json:"lage_beskrivning"`
	Koordinater          *string `json:"koordinater"`

	ArealTotalHa *float64 `json:"areal_total_ha"`
	SkogsmarkHa  *float64 `json:"skogsmark_ha"`
	ImpedimentHa *float64 `json:"impediment_ha"`

	VolymTotalM3sk *float64 `json:"volym_total_m3sk"`
	VolymPerHaM3sk *float64 `json:"volym_per_ha_m3sk"`
	MedelalderAr   *float64 `json:"medelalder_ar"`

	Bonitet           *float64 `json:"bonitet"`
	TillvaxtM3skPerAr *float64 `json:"tillvaxt_m3sk_per_ar"`

	Huggningsklass   *string        `json:"huggningsklass"`
	Huggningsklasser HarvestClasses `json:"huggningsklasser"`
	TradslagAndelar  SpeciesShares  `json:"tradslag_andelar"`
	Byggnader        Buildings      `json:"byggnader"`

	PrisForvantningSek *float64 `json:"pris_forvantning_sek"`
	TaxeringsvardeSek  *float64 `json:"taxeringsvarde_sek"`
}

// HarvestClasses holds the standing volume (m3sk) per huggningsklass.
type HarvestClasses struct {
	S1 *float64 `json:"S1_m3sk"`
	S2 *float64 `json:"S2_m3sk"`
	G1 *float64 `json:"G1_m3sk"`
	G2 *float64 `json:"G2_m3sk"`
	K1 *float64 `json:"K1_m3sk"`
	K2 *float64 `json:"K2_m3sk"`
}

// Mature returns S1+S2, counting absent classes as zero.
func (h HarvestClasses) Mature() float64 {
	return numeric.Value(h.S1, 0) + numeric.Value(h.S2, 0)
}

// SpeciesShares are percentages in [0,100].
type SpeciesShares struct {
	GranProcent *float64 `json:"gran_procent"`
	TallProcent *float64 `json:"tall_procent"`
	LovProcent  *float64 `json:"löv_procent"`
}

type Buildings struct {
	Finns *bool    `json:"finns"`
	Typer []string `json:"typer"`
}

// UnmarshalJSON decodes through RecordFromMap so that locale formatted numbers
// and loosely typed values are coerced once, here.
func (p *PropertyRecord) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return fmt.Errorf("decode property record: %w", err)
	}
	*p = *RecordFromMap(m)
	return nil
}

// DecodeRecord parses raw JSON into a PropertyRecord.
func DecodeRecord(raw []byte) (*PropertyRecord, error) {
	var p PropertyRecord
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// RecordFromMap builds a record from a generic JSON object.
func RecordFromMap(m map[string]any) *PropertyRecord {
	if m == nil {
		return &PropertyRecord{}
	}
	rec := &PropertyRecord{
		Fastighetsbeteckning: str(m["fastighetsbeteckning"]),
		Fastighet:            str(m["fastighet"]),
		Kommun:               str(m["kommun"]),
		LageBeskrivning:      str(m["lage_beskrivning"]),
		Koordinater:          str(m["koordinater"]),
		ArealTotalHa:         numeric.Coerce(m["areal_total_ha"]),
		SkogsmarkHa:          numeric.Coerce(m["skogsmark_ha"]),
		ImpedimentHa:         numeric.Coerce(m["impediment_ha"]),
		VolymTotalM3sk:       numeric.Coerce(m["volym_total_m3sk"]),
		VolymPerHaM3sk:       numeric.Coerce(m["volym_per_ha_m3sk"]),
		MedelalderAr:         numeric.Coerce(m["medelalder_ar"]),
		Bonitet:              numeric.Coerce(m["bonitet"]),
		TillvaxtM3skPerAr:    numeric.Coerce(m["tillvaxt_m3sk_per_ar"]),
		Huggningsklass:       str(m["huggningsklass"]),
		PrisForvantningSek:   numeric.Coerce(m["pris_forvantning_sek"]),
		TaxeringsvardeSek:    numeric.Coerce(m["taxeringsvarde_sek"]),
	}

	if hk, ok := m["huggningsklasser"].(map[string]any); ok {
		rec.Huggningsklasser = harvestClassesFromMap(hk)
	}
	if ts, ok := m["tradslag_andelar"].(map[string]any); ok {
		rec.TradslagAndelar = SpeciesShares{
			GranProcent: numeric.Coerce(ts["gran_procent"]),
			TallProcent: numeric.Coerce(ts["tall_procent"]),
			LovProcent:  numeric.Coerce(first(ts, "löv_procent", "lov_procent")),
		}
	}
	if bg, ok := m["byggnader"].(map[string]any); ok {
		rec.Byggnader = buildingsFromMap(bg)
	}
	return rec
}

func harvestClassesFromMap(m map[string]any) HarvestClasses {
	byKey := make(map[string]any, len(m))
	for k, v := range m {
		byKey[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	// the explicit _m3sk spelling wins over the bare class code
	get := func(code string) *float64 {
		if v, ok := byKey[code+"_M3SK"]; ok {
			return numeric.Coerce(v)
		}
		if v, ok := byKey[code]; ok {
			return numeric.Coerce(v)
		}
		return nil
	}
	return HarvestClasses{
		S1: get("S1"), S2: get("S2"),
		G1: get("G1"), G2: get("G2"),
		K1: get("K1"), K2: get("K2"),
	}
}

func buildingsFromMap(m map[string]any) Buildings {
	var b Buildings
	switch v := m["finns"].(type) {
	case bool:
		b.Finns = &v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "ja", "true", "yes":
			t := true
			b.Finns = &t
		case "nej", "false", "no":
			f := false
			b.Finns = &f
		}
	}
	switch v := m["typer"].(type) {
	case []any:
		for _, it := range v {
			if s := str(it); s != nil {
				b.Typer = append(b.Typer, *s)
			}
		}
	case string:
		for _, part := range strings.Split(v, ",") {
			if s := strings.TrimSpace(part); s != "" {
				b.Typer = append(b.Typer, s)
			}
		}
	}
	if b.Finns == nil && len(b.Typer) > 0 {
		t := true
		b.Finns = &t
	}
	return b
}

func first(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func str(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return nil
	}
	return &s
}

// Warnings lists plausibility problems. They are signals only; nothing is rejected.
func (p *PropertyRecord) Warnings() []string {
	var out []string
	pct := func(name string, v *float64) {
		if v != nil && (*v < 0 || *v > 100) {
			out = append(out, fmt.Sprintf("%s outside 0-100: %v", name, *v))
		}
	}
	pct("gran_procent", p.TradslagAndelar.GranProcent)
	pct("tall_procent", p.TradslagAndelar.TallProcent)
	pct("löv_procent", p.TradslagAndelar.LovProcent)

	neg := func(name string, v *float64) {
		if v != nil && *v < 0 {
			out = append(out, fmt.Sprintf("%s is negative: %v", name, *v))
		}
	}
	neg("areal_total_ha", p.ArealTotalHa)
	neg("skogsmark_ha", p.SkogsmarkHa)
	neg("volym_total_m3sk", p.VolymTotalM3sk)
	neg("pris_forvantning_sek", p.PrisForvantningSek)
	return out
}

var reLatLon = regexp.MustCompile(`(-?\d{1,3}(?:[.,]\d+)?)\s*[,; ]\s*(-?\d{1,3}(?:[.,]\d+)?)`)

// LatLon parses decimal WGS84 coordinates out of Koordinater.
// Projected grids such as SWEREF 99 are not recognized.
func (p *PropertyRecord) LatLon() (lat, lon float64, ok bool) {
	if p.Koordinater == nil {
		return 0, 0, false
	}
	m := reLatLon.FindStringSubmatch(*p.Koordinater)
	if m == nil {
		return 0, 0, false
	}
	la, lo := numeric.ParseString(m[1]), numeric.ParseString(m[2])
	if la == nil || lo == nil || *la < -90 || *la > 90 || *lo < -180 || *lo > 180 {
		return 0, 0, false
	}
	return *la, *lo, true
}
