package analysis

import (
	"math"

	"github.com/joseph-ayodele/skogsprospekt/internal/entity"
	"github.com/joseph-ayodele/skogsprospekt/internal/numeric"
)

// InterestDistribution estimates the positive räntefördelning benefit.
type InterestDistribution struct {
	KapitalunderlagSek   float64                 `json:"kapitalunderlag_sek"`
	FordelningsbeloppSek float64                 `json:"rantefordelning_sek"`
	SkattebesparingSek   float64                 `json:"skattebesparing_sek"`
	Antaganden           DistributionAssumptions `json:"antaganden"`
}

type DistributionAssumptions struct {
	RestskuldSek         float64 `json:"restskuld_sek"`
	RantefordelningRanta float64 `json:"rantefordelning_ranta"`
	Naringsskattesats    float64 `json:"naringsskattesats"`
	Kapitalskattesats    float64 `json:"kapitalskattesats"`
}

// ComputeInterestDistribution uses prior when given, otherwise recomputes the loan.
func ComputeInterestDistribution(rec *entity.PropertyRecord, opts Options, prior *LoanSustainability) InterestDistribution {
	if prior == nil {
		ls := ComputeLoanSustainability(rec, opts, nil)
		prior = &ls
	}
	as := DistributionAssumptions{
		RestskuldSek:         prior.RestskuldSek,
		RantefordelningRanta: opts.Float(OptDistributionRate),
		Naringsskattesats:    opts.Float(OptBusinessTaxRate),
		Kapitalskattesats:    opts.Float(OptCapitalTaxRate),
	}

	id := InterestDistribution{Antaganden: as}
	id.KapitalunderlagSek = math.Max(0, numeric.Value(rec.PrisForvantningSek, 0)-prior.RestskuldSek)
	id.FordelningsbeloppSek = id.KapitalunderlagSek * as.RantefordelningRanta
	id.SkattebesparingSek = id.FordelningsbeloppSek * math.Max(0, as.Naringsskattesats-as.Kapitalskattesats)
	return id
}
