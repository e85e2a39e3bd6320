package analysis

import (
	"github.com/joseph-ayodele/skogsprospekt/internal/entity"
	"github.com/joseph-ayodele/skogsprospekt/internal/numeric"
)

// ForwardCashflow is a steady state year where harvest equals growth.
type ForwardCashflow struct {
	TillvaxtM3skPerAr float64             `json:"tillvaxt_m3sk_per_ar"`
	ArligIntaktSek    float64             `json:"arlig_intakt_sek"`
	Lanekapacitet     *float64            `json:"lanekapacitet_sek"`
	DSCRRestskuld     *float64            `json:"dscr_restskuld"`
	DSCRPris          *float64            `json:"dscr_pris"`
	NuvardeSek        *float64            `json:"nuvarde_sek"`
	Antaganden        CashflowAssumptions `json:"antaganden"`
}

type CashflowAssumptions struct {
	PriceAssumption
	Ranta        float64 `json:"ranta"`
	Kalkylranta  float64 `json:"kalkylranta"`
	RestskuldSek float64 `json:"restskuld_sek"`
}

// ComputeForwardCashflow uses prior for the remaining debt when given,
// otherwise recomputes the loan.
func ComputeForwardCashflow(rec *entity.PropertyRecord, opts Options, prior *LoanSustainability) (ForwardCashflow, error) {
	growth := rec.TillvaxtM3skPerAr
	if growth == nil {
		if rec.Bonitet == nil || UsableArea(rec) == nil {
			return ForwardCashflow{}, missing(CodeMissingAreaOrBonitet)
		}
		growth = AnnualGrowth(rec)
	}
	eff := EffectivePrice(rec, opts)
	if eff.PrisPerM3sk == nil {
		return ForwardCashflow{}, missing(CodeMissingPrice)
	}
	if prior == nil {
		ls := ComputeLoanSustainability(rec, opts, nil)
		prior = &ls
	}

	rate := opts.Float(OptInterestRate)
	as := CashflowAssumptions{
		PriceAssumption: eff,
		Ranta:           rate,
		Kalkylranta:     opts.Float(OptDiscountRate),
		RestskuldSek:    prior.RestskuldSek,
	}
	cf := ForwardCashflow{
		TillvaxtM3skPerAr: numeric.Value(growth, 0),
		Antaganden:        as,
	}
	cf.ArligIntaktSek = cf.TillvaxtM3skPerAr * *eff.PrisPerM3sk

	if rate > 0 {
		cf.Lanekapacitet = numeric.Ptr(cf.ArligIntaktSek / rate)
		if prior.RestskuldSek > 0 {
			cf.DSCRRestskuld = numeric.Ptr(cf.ArligIntaktSek / (prior.RestskuldSek * rate))
		}
		if numeric.Positive(rec.PrisForvantningSek) {
			cf.DSCRPris = numeric.Ptr(cf.ArligIntaktSek / (*rec.PrisForvantningSek * rate))
		}
	}
	if as.Kalkylranta > 0 {
		cf.NuvardeSek = numeric.Ptr(cf.ArligIntaktSek / as.Kalkylranta)
	}
	return cf, nil
}
