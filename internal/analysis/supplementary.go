package analysis

import (
	"math"

	"github.com/joseph-ayodele/skogsprospekt/internal/entity"
	"github.com/joseph-ayodele/skogsprospekt/internal/numeric"
)

type PriceMetrics struct {
	ArealAnvHa         *float64 `json:"areal_anv"`
	VolymTotalM3sk     *float64 `json:"volym_total_m3sk"`
	VolymPerHaM3sk     *float64 `json:"volym_per_ha_m3sk"`
	PrisForvantningSek *float64 `json:"pris_forvantning_sek"`
	PrisPerHa          *float64 `json:"pris_per_ha"`
	PrisPerM3sk        *float64 `json:"pris_per_m3sk"`
}

// ComputePriceMetrics uses only the record, never the price options.
func ComputePriceMetrics(rec *entity.PropertyRecord) PriceMetrics {
	area := UsableArea(rec)
	return PriceMetrics{
		ArealAnvHa:         area,
		VolymTotalM3sk:     rec.VolymTotalM3sk,
		VolymPerHaM3sk:     numeric.Div(rec.VolymTotalM3sk, area),
		PrisForvantningSek: rec.PrisForvantningSek,
		PrisPerHa:          numeric.Div(rec.PrisForvantningSek, area),
		PrisPerM3sk:        numeric.Div(rec.PrisForvantningSek, rec.VolymTotalM3sk),
	}
}

var riskLevels = [...]string{"låg", "medel", "hög"}

type Risk struct {
	Score          int      `json:"score"`
	Niva           string   `json:"level"`
	VolymPerHaM3sk *float64 `json:"volym_per_ha_m3sk"`
	LovProcent     *float64 `json:"löv_procent"`
}

// ComputeRisk scores thin stands and a high broadleaf share.
func ComputeRisk(rec *entity.PropertyRecord, opts Options) Risk {
	r := Risk{
		VolymPerHaM3sk: VolumePerHa(rec),
		LovProcent:     rec.TradslagAndelar.LovProcent,
	}
	if r.VolymPerHaM3sk != nil && *r.VolymPerHaM3sk < opts.Float(OptLowVolumePerHa) {
		r.Score++
	}
	if r.LovProcent != nil && *r.LovProcent > opts.Float(OptHighBroadleafPct) {
		r.Score++
	}
	r.Niva = riskLevels[min(r.Score, len(riskLevels)-1)]
	return r
}

type GrowthAnalysis struct {
	TillvaxtM3skPerAr  float64  `json:"tillvaxt_m3sk_per_ar"`
	TillvaxtVardePerAr *float64 `json:"tillvaxt_varde_per_ar"`
}

// ComputeGrowthAnalysis values growth at asking price per m3sk.
func ComputeGrowthAnalysis(rec *entity.PropertyRecord) (GrowthAnalysis, error) {
	if !nonZero(rec.Bonitet) || !nonZero(rec.SkogsmarkHa) {
		return GrowthAnalysis{}, missing(CodeMissingBonitetArea)
	}
	g := GrowthAnalysis{TillvaxtM3skPerAr: *rec.Bonitet * *rec.SkogsmarkHa}
	if ppm3 := numeric.Div(rec.PrisForvantningSek, rec.VolymTotalM3sk); nonZero(ppm3) {
		g.TillvaxtVardePerAr = numeric.Ptr(g.TillvaxtM3skPerAr * *ppm3)
	}
	return g, nil
}

type HarvestPlan struct {
	GallringM3sk        float64 `json:"gallring_m3sk"`
	GallringVardeSek    float64 `json:"gallring_varde"`
	SlutavverkningM3sk  float64 `json:"slutavverkning_m3sk"`
	SlutavverkningVarde float64 `json:"slutavverkning_varde"`
	GallringAndel       float64 `json:"gallring_andel"`
}

// ComputeHarvestPlan splits the standing volume into thinning and final felling.
func ComputeHarvestPlan(rec *entity.PropertyRecord, opts Options) (HarvestPlan, error) {
	if !nonZero(rec.VolymTotalM3sk) || !nonZero(rec.PrisForvantningSek) {
		return HarvestPlan{}, missing(CodeMissingVolumePrice)
	}
	volume := *rec.VolymTotalM3sk
	ppm3 := *rec.PrisForvantningSek / volume
	share := opts.Float(OptThinningShare)

	hp := HarvestPlan{GallringAndel: share}
	hp.GallringM3sk = volume * share
	hp.SlutavverkningM3sk = volume - hp.GallringM3sk
	hp.GallringVardeSek = hp.GallringM3sk * ppm3
	hp.SlutavverkningVarde = hp.SlutavverkningM3sk * ppm3
	return hp, nil
}

type CashflowLoan struct {
	ArligIntaktSek  float64  `json:"arlig_intakt_sek"`
	Annuitetsfaktor float64  `json:"annuitetsfaktor"`
	MaxLanSek       float64  `json:"max_lan_sek"`
	AndelAvPris     *float64 `json:"andel_av_pris"`
	Ranta           float64  `json:"ranta"`
	Amorteringstid  float64  `json:"amorteringstid_ar"`
}

// ComputeCashflowLoan sizes an annuity loan serviced by the growth value.
func ComputeCashflowLoan(rec *entity.PropertyRecord, opts Options) (CashflowLoan, error) {
	growth, err := ComputeGrowthAnalysis(rec)
	if err != nil || !nonZero(rec.PrisForvantningSek) {
		return CashflowLoan{}, missing(CodeMissingPriceGrowth)
	}
	r := opts.Float(OptInterestRate)
	n := opts.Float(OptAmortizationYears)

	cl := CashflowLoan{
		ArligIntaktSek:  numeric.Value(growth.TillvaxtVardePerAr, 0),
		Annuitetsfaktor: annuityFactor(r, n),
		Ranta:           r,
		Amorteringstid:  n,
	}
	if d := r + cl.Annuitetsfaktor; d > 0 {
		cl.MaxLanSek = cl.ArligIntaktSek / d
	}
	cl.AndelAvPris = numeric.Div(&cl.MaxLanSek, rec.PrisForvantningSek)
	return cl, nil
}

// annuityFactor is r(1+r)^n / ((1+r)^n - 1), or 1/n at a zero rate.
func annuityFactor(r, n float64) float64 {
	if n <= 0 {
		return 0
	}
	if r == 0 {
		return 1 / n
	}
	f := math.Pow(1+r, n)
	return r * f / (f - 1)
}

type ValueIndicator struct {
	PrisPerM3sk       float64 `json:"ppm3"`
	PrisPerHa         float64 `json:"ppha"`
	JamforPrisPerM3sk float64 `json:"bench_ppm3"`
	JamforPrisPerHa   float64 `json:"bench_ppha"`
	Score             float64 `json:"score"`
	Signal            string  `json:"signal"`
	Indikator         string  `json:"indikator"`
}

// ComputeValueIndicator compares asking price to benchmark prices.
func ComputeValueIndicator(rec *entity.PropertyRecord, opts Options) (ValueIndicator, error) {
	area := UsableArea(rec)
	if !nonZero(rec.PrisForvantningSek) || !nonZero(rec.VolymTotalM3sk) || !nonZero(area) {
		return ValueIndicator{}, missing(CodeMissingPriceVolArea)
	}
	vi := ValueIndicator{
		PrisPerM3sk:       *rec.PrisForvantningSek / *rec.VolymTotalM3sk,
		PrisPerHa:         *rec.PrisForvantningSek / *area,
		JamforPrisPerM3sk: opts.Float(OptBenchPricePerM3sk),
		JamforPrisPerHa:   opts.Float(OptBenchPricePerHa),
	}
	if vi.JamforPrisPerM3sk != 0 {
		vi.Score += 0.5 * (vi.JamforPrisPerM3sk - vi.PrisPerM3sk) / vi.JamforPrisPerM3sk
	}
	if vi.JamforPrisPerHa != 0 {
		vi.Score += 0.5 * (vi.JamforPrisPerHa - vi.PrisPerHa) / vi.JamforPrisPerHa
	}
	switch {
	case vi.Score > 0.1:
		vi.Signal = "billig"
	case vi.Score < -0.1:
		vi.Signal = "dyr"
	default:
		vi.Signal = "neutral"
	}
	switch {
	case vi.PrisPerM3sk < 250:
		vi.Indikator = "lågt"
	case vi.PrisPerM3sk <= 400:
		vi.Indikator = "normalt"
	default:
		vi.Indikator = "högt"
	}
	return vi, nil
}

func nonZero(p *float64) bool {
	return p != nil && *p != 0
}
