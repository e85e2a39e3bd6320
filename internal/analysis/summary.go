package analysis

import (
	"github.com/mmcloughlin/geohash"

	"github.com/joseph-ayodele/skogsprospekt/internal/entity"
)

const geohashChars = 7

// BaseFacts restates the record with display derivations applied.
type BaseFacts struct {
	Fastighetsbeteckning *string               `json:"fastighetsbeteckning"`
	Fastighet            *string               `json:"fastighet"`
	Kommun               *string               `json:"kommun"`
	LageBeskrivning      *string               `json:"lage_beskrivning"`
	ArealTotalHa         *float64              `json:"areal_total_ha"`
	SkogsmarkHa          *float64              `json:"skogsmark_ha"`
	ArealAnvHa           *float64              `json:"areal_anv_ha"`
	VolymTotalM3sk       *float64              `json:"volym_total_m3sk"`
	VolymPerHaM3sk       *float64              `json:"volym_per_ha_m3sk"`
	Bonitet              *float64              `json:"bonitet"`
	Huggningsklasser     entity.HarvestClasses `json:"huggningsklasser"`
	TradslagAndelar      entity.SpeciesShares  `json:"tradslag_andelar"`
	Byggnader            entity.Buildings      `json:"byggnader"`
	PrisForvantningSek   *float64              `json:"pris_forvantning_sek"`
	TaxeringsvardeSek    *float64              `json:"taxeringsvarde_sek"`
	Koordinater          *string               `json:"koordinater"`
	Geohash              string                `json:"geohash,omitempty"`
	Varningar            []string              `json:"varningar,omitempty"`
}

// Summary is the composed view of the five core analyzers.
type Summary struct {
	Bas                  BaseFacts `json:"bas"`
	KeyMetrics           Result    `json:"key_metrics"`
	InitialHarvestTaxed  Result    `json:"initial_harvest_taxed"`
	LoanSustainability   Result    `json:"loan_sustainability"`
	InterestDistribution Result    `json:"interest_distribution"`
	ForwardCashflow      Result    `json:"forward_cashflow"`
}

// ComputeBaseFacts copies the record and applies area and volume derivations.
func ComputeBaseFacts(rec *entity.PropertyRecord) BaseFacts {
	bf := BaseFacts{
		Fastighetsbeteckning: rec.Fastighetsbeteckning,
		Fastighet:            rec.Fastighet,
		Kommun:               rec.Kommun,
		LageBeskrivning:      rec.LageBeskrivning,
		ArealTotalHa:         rec.ArealTotalHa,
		SkogsmarkHa:          rec.SkogsmarkHa,
		ArealAnvHa:           UsableArea(rec),
		VolymTotalM3sk:       rec.VolymTotalM3sk,
		VolymPerHaM3sk:       VolumePerHa(rec),
		Bonitet:              rec.Bonitet,
		Huggningsklasser:     rec.Huggningsklasser,
		TradslagAndelar:      rec.TradslagAndelar,
		Byggnader:            rec.Byggnader,
		PrisForvantningSek:   rec.PrisForvantningSek,
		TaxeringsvardeSek:    rec.TaxeringsvardeSek,
		Koordinater:          rec.Koordinater,
		Varningar:            rec.Warnings(),
	}
	if lat, lon, ok := rec.LatLon(); ok {
		bf.Geohash = geohash.EncodeWithPrecision(lat, lon, geohashChars)
	}
	return bf
}

// ComputeSummary runs key metrics, initial harvest, loan, interest distribution
// and cash flow in that order, feeding each step's output to the next.
func ComputeSummary(rec *entity.PropertyRecord, opts Options) Summary {
	s := Summary{
		Bas:        ComputeBaseFacts(rec),
		KeyMetrics: resultOf(ComputeKeyMetrics(rec, opts), nil),
	}

	ih, err := ComputeInitialHarvest(rec, opts)
	s.InitialHarvestTaxed = resultOf(ih, err)
	var ihPrior *InitialHarvest
	if err == nil {
		ihPrior = &ih
	}

	ls := ComputeLoanSustainability(rec, opts, ihPrior)
	s.LoanSustainability = resultOf(ls, nil)

	s.InterestDistribution = resultOf(ComputeInterestDistribution(rec, opts, &ls), nil)

	cf, err := ComputeForwardCashflow(rec, opts, &ls)
	s.ForwardCashflow = resultOf(cf, err)
	return s
}
