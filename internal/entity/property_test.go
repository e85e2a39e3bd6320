package entity

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeRecordCoercesNumbers(t *testing.T) {
	raw := []byte(`{
		"fastighetsbeteckning": " Ljusdal Berg 3:4 ",
		"kommun": "Ljusdal",
		"skogsmark_ha": "50,5",
		"volym_total_m3sk": "6 000",
		"bonitet": 5,
		"pris_forvantning_sek": null,
		"huggningsklasser": {"S1_m3sk": 1200, "s2": "300"},
		"tradslag_andelar": {"gran_procent": 60, "tall_procent": 30, "löv_procent": "10"},
		"byggnader": {"finns": "ja", "typer": ["jaktstuga", "", "förråd"]},
		"okand": "ignored"
	}`)

	rec, err := DecodeRecord(raw)
	if err != nil {
		t.Fatalf("DecodeRecord: %v", err)
	}
	if rec.Fastighetsbeteckning == nil || *rec.Fastighetsbeteckning != "Ljusdal Berg 3:4" {
		t.Errorf("fastighetsbeteckning = %v", rec.Fastighetsbeteckning)
	}
	if rec.SkogsmarkHa == nil || *rec.SkogsmarkHa != 50.5 {
		t.Errorf("skogsmark_ha = %v", rec.SkogsmarkHa)
	}
	if rec.VolymTotalM3sk == nil || *rec.VolymTotalM3sk != 6000 {
		t.Errorf("volym_total_m3sk = %v", rec.VolymTotalM3sk)
	}
	if rec.PrisForvantningSek != nil {
		t.Errorf("pris_forvantning_sek = %v, want absent", *rec.PrisForvantningSek)
	}
	if got := rec.Huggningsklasser.Mature(); got != 1500 {
		t.Errorf("Mature() = %v, want 1500", got)
	}
	if rec.TradslagAndelar.LovProcent == nil || *rec.TradslagAndelar.LovProcent != 10 {
		t.Errorf("löv_procent = %v", rec.TradslagAndelar.LovProcent)
	}
	if rec.Byggnader.Finns == nil || !*rec.Byggnader.Finns {
		t.Errorf("byggnader.finns = %v", rec.Byggnader.Finns)
	}
	if diff := cmp.Diff([]string{"jaktstuga", "förråd"}, rec.Byggnader.Typer); diff != "" {
		t.Errorf("byggnader.typer mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordRoundTripKeepsFieldNames(t *testing.T) {
	rec, err := DecodeRecord([]byte(`{"skogsmark_ha": 10, "huggningsklasser": {"K1_m3sk": 5}}`))
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	if m["skogsmark_ha"] != 10.0 {
		t.Errorf("skogsmark_ha = %v", m["skogsmark_ha"])
	}
	hk, _ := m["huggningsklasser"].(map[string]any)
	if hk["K1_m3sk"] != 5.0 {
		t.Errorf("huggningsklasser = %v", m["huggningsklasser"])
	}
	if _, ok := m["volym_total_m3sk"]; !ok {
		t.Error("absent fields should marshal as null, key missing")
	}
}

func TestWarnings(t *testing.T) {
	rec := RecordFromMap(map[string]any{
		"skogsmark_ha":     -1,
		"tradslag_andelar": map[string]any{"gran_procent": 130},
	})
	if got := len(rec.Warnings()); got != 2 {
		t.Fatalf("Warnings() = %v, want 2 entries", rec.Warnings())
	}
}

func TestLatLon(t *testing.T) {
	tests := []struct {
		in  string
		ok  bool
		lat float64
		lon float64
	}{
		{"61.83, 16.09", true, 61.83, 16.09},
		{"61,83, 16,09", true, 61.83, 16.09},
		{"N 6856000 E 564000", false, 0, 0},
	}
	for _, tt := range tests {
		s := tt.in
		rec := &PropertyRecord{Koordinater: &s}
		lat, lon, ok := rec.LatLon()
		if ok != tt.ok || lat != tt.lat || lon != tt.lon {
			t.Errorf("LatLon(%q) = %v, %v, %v", tt.in, lat, lon, ok)
		}
	}
}

func TestHarvestClassesPreferM3skKey(t *testing.T) {
	m := map[string]any{
		"huggningsklasser": map[string]any{"S1": 10, "S1_m3sk": 1200, "s2": 300, "G1_M3SK": "40"},
	}
	for i := 0; i < 50; i++ {
		h := RecordFromMap(m).Huggningsklasser
		if h.S1 == nil || *h.S1 != 1200 {
			t.Fatalf("S1 = %v, want 1200", h.S1)
		}
		if h.S2 == nil || *h.S2 != 300 {
			t.Fatalf("S2 = %v, want 300", h.S2)
		}
		if h.G1 == nil || *h.G1 != 40 {
			t.Fatalf("G1 = %v, want 40", h.G1)
		}
	}
}
