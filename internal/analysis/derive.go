package analysis

import (
	"github.com/joseph-ayodele/skogsprospekt/internal/entity"
	"github.com/joseph-ayodele/skogsprospekt/internal/numeric"
)

// Price sources reported by EffectivePrice.
const (
	PriceWeighted = "viktat"
	PriceOption   = "option"
	PriceDefault  = "standard"
	PriceAsking   = "prisforvantning"
)

// PriceAssumption records the effective price per m3sk and where it came from.
type PriceAssumption struct {
	PrisPerM3sk *float64 `json:"pris_per_m3sk"`
	Kalla       string   `json:"kalla,omitempty"`
}

// UsableArea is skogsmark_ha, else areal_total_ha.
func UsableArea(rec *entity.PropertyRecord) *float64 {
	return numeric.First(rec.SkogsmarkHa, rec.ArealTotalHa)
}

// VolumePerHa prefers the explicit field over volume / usable area.
func VolumePerHa(rec *entity.PropertyRecord) *float64 {
	if rec.VolymPerHaM3sk != nil {
		return rec.VolymPerHaM3sk
	}
	area := UsableArea(rec)
	if rec.VolymTotalM3sk == nil || !numeric.Positive(area) {
		return nil
	}
	return numeric.Div(rec.VolymTotalM3sk, area)
}

// EffectivePrice resolves SEK per m3sk: weighted sawlog/pulp price, then the
// explicit option, then the configured default, then asking price / volume.
// A non-positive default disables the default step.
func EffectivePrice(rec *entity.PropertyRecord, opts Options) PriceAssumption {
	sawlog, pulp := opts.Get(OptSawlogPrice), opts.Get(OptPulpPrice)
	sawShare, pulpShare := opts.Get(OptSawlogShare), opts.Get(OptPulpShare)
	if sawlog != nil && pulp != nil && sawShare != nil && pulpShare != nil {
		if w := *sawShare + *pulpShare; w != 0 {
			p := (*sawlog*(*sawShare) + *pulp*(*pulpShare)) / w
			return PriceAssumption{PrisPerM3sk: numeric.Ptr(p), Kalla: PriceWeighted}
		}
	}
	if p := opts.Get(OptPricePerM3sk); p != nil {
		return PriceAssumption{PrisPerM3sk: p, Kalla: PriceOption}
	}
	if d := opts.Float(OptDefaultPrice); d > 0 {
		return PriceAssumption{PrisPerM3sk: numeric.Ptr(d), Kalla: PriceDefault}
	}
	if numeric.Positive(rec.VolymTotalM3sk) && rec.PrisForvantningSek != nil {
		return PriceAssumption{PrisPerM3sk: numeric.Div(rec.PrisForvantningSek, rec.VolymTotalM3sk), Kalla: PriceAsking}
	}
	return PriceAssumption{}
}

// AnnualGrowth is the explicit growth field, else bonitet * usable area.
func AnnualGrowth(rec *entity.PropertyRecord) *float64 {
	if rec.TillvaxtM3skPerAr != nil {
		return rec.TillvaxtM3skPerAr
	}
	return numeric.Mul(rec.Bonitet, UsableArea(rec))
}
