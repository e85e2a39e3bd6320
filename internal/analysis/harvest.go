package analysis

import (
	"math"

	"github.com/joseph-ayodele/skogsprospekt/internal/entity"
	"github.com/joseph-ayodele/skogsprospekt/internal/numeric"
)

// InitialHarvest models felling the mature classes (S1+S2) right after purchase
// under a simplified forestry tax regime with skogskonto deferral.
type InitialHarvest struct {
	AvverkningM3sk         float64            `json:"avverkning_m3sk"`
	BruttointaktSek        float64            `json:"bruttointakt_sek"`
	SkogsavdragTakSek      *float64           `json:"skogsavdrag_tak_sek"`
	SkogsavdragSek         float64            `json:"skogsavdrag_sek"`
	BeskattningsbartSek    float64            `json:"beskattningsbart_fore_skogskonto_sek"`
	SkogskontoInsattSek    float64            `json:"skogskonto_insattning_sek"`
	SkattNuSek             float64            `json:"skatt_nu_sek"`
	NettoKassaSek          float64            `json:"netto_kassa_sek"`
	UppskjutenSkattSek     float64            `json:"uppskjuten_skatt_sek"`
	SkogskontoNettoSek     float64            `json:"skogskonto_netto_sek"`
	AmorteringsgradProcent *float64           `json:"amorteringsgrad_procent"`
	Antaganden             HarvestAssumptions `json:"antaganden"`
}

type HarvestAssumptions struct {
	PriceAssumption
	SkogsavdragAndel float64 `json:"skogsavdrag_andel"`
	SkogskontoAndel  float64 `json:"skogskonto_andel"`
	Skattesats       float64 `json:"skattesats"`
}

// ComputeInitialHarvest fails only when total volume is absent.
func ComputeInitialHarvest(rec *entity.PropertyRecord, opts Options) (InitialHarvest, error) {
	if rec.VolymTotalM3sk == nil {
		return InitialHarvest{}, missing(CodeMissingVolume)
	}

	eff := EffectivePrice(rec, opts)
	as := HarvestAssumptions{
		PriceAssumption:  eff,
		SkogsavdragAndel: opts.Float(OptForestDeduction),
		SkogskontoAndel:  opts.Float(OptSkogskontoShare),
		Skattesats:       opts.Float(OptTaxRate),
	}

	ih := InitialHarvest{
		AvverkningM3sk: rec.Huggningsklasser.Mature(),
		Antaganden:     as,
	}
	ih.BruttointaktSek = ih.AvverkningM3sk * numeric.Value(eff.PrisPerM3sk, 0)

	if rec.PrisForvantningSek != nil {
		ih.SkogsavdragTakSek = numeric.Ptr(as.SkogsavdragAndel * *rec.PrisForvantningSek)
	}
	ih.SkogsavdragSek = math.Min(ih.BruttointaktSek, numeric.Value(ih.SkogsavdragTakSek, 0))
	ih.BeskattningsbartSek = math.Max(0, ih.BruttointaktSek-ih.SkogsavdragSek)
	ih.SkogskontoInsattSek = ih.BeskattningsbartSek * as.SkogskontoAndel
	ih.SkattNuSek = (ih.BeskattningsbartSek - ih.SkogskontoInsattSek) * as.Skattesats
	ih.NettoKassaSek = ih.BruttointaktSek - ih.SkattNuSek
	ih.UppskjutenSkattSek = ih.SkogskontoInsattSek * as.Skattesats
	ih.SkogskontoNettoSek = ih.SkogskontoInsattSek * (1 - as.Skattesats)

	if numeric.Positive(rec.PrisForvantningSek) {
		ih.AmorteringsgradProcent = numeric.Ptr(100 * ih.NettoKassaSek / *rec.PrisForvantningSek)
	}
	return ih, nil
}
