package analysis

import (
	"github.com/joseph-ayodele/skogsprospekt/internal/entity"
	"github.com/joseph-ayodele/skogsprospekt/internal/numeric"
)

// KeyMetrics are the headline ratios of a prospectus.
type KeyMetrics struct {
	ArealAnvHa              *float64        `json:"areal_anv_ha"`
	VolymPerHaM3sk          *float64        `json:"volym_per_ha_m3sk"`
	PrisPerHa               *float64        `json:"pris_per_ha"`
	PrisPerM3sk             *float64        `json:"pris_per_m3sk"`
	TillvaxtM3skPerAr       *float64        `json:"tillvaxt_m3sk_per_ar"`
	TillvaxtVardePerAr      *float64        `json:"tillvaxt_varde_per_ar"`
	DirektavkastningProcent *float64        `json:"direktavkastning_procent"`
	AndelMogenProcent       *float64        `json:"andel_slutavverkningsbar_procent"`
	Antaganden              PriceAssumption `json:"antaganden"`
}

// ComputeKeyMetrics never fails; each figure is absent when its inputs are.
func ComputeKeyMetrics(rec *entity.PropertyRecord, opts Options) KeyMetrics {
	area := UsableArea(rec)
	price := rec.PrisForvantningSek
	volume := rec.VolymTotalM3sk
	eff := EffectivePrice(rec, opts)

	km := KeyMetrics{
		ArealAnvHa:        area,
		VolymPerHaM3sk:    VolumePerHa(rec),
		PrisPerHa:         numeric.Div(price, area),
		PrisPerM3sk:       numeric.Div(price, volume),
		TillvaxtM3skPerAr: AnnualGrowth(rec),
		Antaganden:        eff,
	}
	km.TillvaxtVardePerAr = numeric.Mul(km.TillvaxtM3skPerAr, eff.PrisPerM3sk)

	if numeric.Positive(price) && km.TillvaxtVardePerAr != nil {
		km.DirektavkastningProcent = numeric.Ptr(100 * *km.TillvaxtVardePerAr / *price)
	}

	hk := rec.Huggningsklasser
	if numeric.Positive(volume) && (hk.S1 != nil || hk.S2 != nil) {
		km.AndelMogenProcent = numeric.Ptr(100 * hk.Mature() / *volume)
	}
	return km
}
