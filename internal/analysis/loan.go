package analysis

import (
	"math"

	"github.com/joseph-ayodele/skogsprospekt/internal/entity"
	"github.com/joseph-ayodele/skogsprospekt/internal/numeric"
)

// LoanSustainability follows the purchase loan after the initial harvest
// proceeds have been used to amortize it.
type LoanSustainability struct {
	LanSek               float64         `json:"lan_sek"`
	NettoKassaSek        float64         `json:"netto_kassa_sek"`
	AmorteringSek        float64         `json:"amortering_fran_avverkning_sek"`
	RestskuldSek         float64         `json:"restskuld_sek"`
	ArligRantaSek        float64         `json:"arlig_ranta_sek"`
	SkogskontoNettoSek   *float64        `json:"skogskonto_netto_sek"`
	ArTacktaAvSkogskonto *float64        `json:"ar_tackta_av_skogskonto"`
	Antaganden           LoanAssumptions `json:"antaganden"`
}

type LoanAssumptions struct {
	Ranta         float64  `json:"ranta"`
	Belaningsgrad float64  `json:"belaningsgrad"`
	LanebeloppSek *float64 `json:"lanebelopp_sek"`
}

// ComputeLoanSustainability uses prior when given, otherwise recomputes the
// initial harvest. A failed harvest step counts as zero proceeds.
func ComputeLoanSustainability(rec *entity.PropertyRecord, opts Options, prior *InitialHarvest) LoanSustainability {
	var netCash float64
	var deferredNet *float64
	if prior == nil {
		if ih, err := ComputeInitialHarvest(rec, opts); err == nil {
			prior = &ih
		}
	}
	if prior != nil {
		netCash = prior.NettoKassaSek
		deferredNet = numeric.Ptr(prior.SkogskontoNettoSek)
	}

	as := LoanAssumptions{
		Ranta:         opts.Float(OptInterestRate),
		Belaningsgrad: opts.Float(OptLoanShare),
		LanebeloppSek: opts.Get(OptLoanAmount),
	}

	ls := LoanSustainability{
		NettoKassaSek:      netCash,
		SkogskontoNettoSek: deferredNet,
		Antaganden:         as,
	}
	if as.LanebeloppSek != nil {
		ls.LanSek = *as.LanebeloppSek
	} else {
		ls.LanSek = numeric.Value(rec.PrisForvantningSek, 0) * as.Belaningsgrad
	}
	ls.AmorteringSek = math.Min(ls.LanSek, math.Max(0, netCash))
	ls.RestskuldSek = ls.LanSek - ls.AmorteringSek
	ls.ArligRantaSek = ls.RestskuldSek * as.Ranta
	if ls.ArligRantaSek > 0 && deferredNet != nil {
		ls.ArTacktaAvSkogskonto = numeric.Ptr(*deferredNet / ls.ArligRantaSek)
	}
	return ls
}
