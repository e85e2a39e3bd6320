package analysis

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v2"

	"github.com/joseph-ayodele/skogsprospekt/internal/numeric"
)

// Option names accepted in the options map.
const (
	OptSawlogPrice       = "timmerpris_sek_m3sk"
	OptPulpPrice         = "massavedspris_sek_m3sk"
	OptSawlogShare       = "timmer_andel_procent"
	OptPulpShare         = "massaved_andel_procent"
	OptPricePerM3sk      = "pris_per_m3sk"
	OptDefaultPrice      = "standard_pris_per_m3sk"
	OptForestDeduction   = "skogsavdrag_andel"
	OptSkogskontoShare   = "skogskonto_andel"
	OptTaxRate           = "skattesats"
	OptLoanAmount        = "lanebelopp_sek"
	OptLoanShare         = "belaningsgrad"
	OptInterestRate      = "ranta"
	OptDistributionRate  = "rantefordelning_ranta"
	OptBusinessTaxRate   = "naringsskattesats"
	OptCapitalTaxRate    = "kapitalskattesats"
	OptDiscountRate      = "kalkylranta"
	OptAmortizationYears = "amorteringstid_ar"
	OptThinningShare     = "gallring_andel"
	OptLowVolumePerHa    = "lag_volym_per_ha"
	OptHighBroadleafPct  = "hog_lov_procent"
	OptBenchPricePerM3sk = "jamfor_pris_per_m3sk"
	OptBenchPricePerHa   = "jamfor_pris_per_ha"
)

var optionDefaults = map[string]float64{
	OptDefaultPrice:      350,
	OptForestDeduction:   0.5,
	OptSkogskontoShare:   0.6,
	OptTaxRate:           0.30,
	OptLoanShare:         1.0,
	OptInterestRate:      0.05,
	OptDistributionRate:  0.0862,
	OptBusinessTaxRate:   0.45,
	OptCapitalTaxRate:    0.30,
	OptDiscountRate:      0.035,
	OptAmortizationYears: 30,
	OptThinningShare:     0.2,
	OptLowVolumePerHa:    70,
	OptHighBroadleafPct:  30,
	OptBenchPricePerM3sk: 350,
	OptBenchPricePerHa:   70000,
}

// older request payloads used these names
var optionAliases = map[string]string{
	"ränta":        OptInterestRate,
	"amort_tid":    OptAmortizationYears,
	"low_v_per_ha": OptLowVolumePerHa,
	"high_löv_pct": OptHighBroadleafPct,
	"bench_ppm3":   OptBenchPricePerM3sk,
	"bench_ppha":   OptBenchPricePerHa,
}

// Options is an immutable snapshot of caller supplied assumptions.
// Values are coerced on construction; non-finite input is dropped.
type Options struct {
	values map[string]float64
}

// ParseOptions coerces a loosely typed options map. Aliases resolve to their
// canonical name; a canonical key wins over its alias.
func ParseOptions(m map[string]any) Options {
	o := Options{values: make(map[string]float64, len(m))}
	for k, v := range m {
		name, aliased := optionAliases[k]
		if !aliased {
			name = k
		} else if _, direct := m[name]; direct {
			continue
		}
		if f := numeric.Coerce(v); f != nil {
			o.values[name] = *f
		}
	}
	return o
}

// Get returns the caller supplied value, or nil.
func (o Options) Get(name string) *float64 {
	if v, ok := o.values[name]; ok {
		return &v
	}
	return nil
}

// Float returns the caller value or the documented default (0 if none).
func (o Options) Float(name string) float64 {
	if v, ok := o.values[name]; ok {
		return v
	}
	return optionDefaults[name]
}

// With returns a copy with name set to v.
func (o Options) With(name string, v float64) Options {
	out := Options{values: make(map[string]float64, len(o.values)+1)}
	for k, val := range o.values {
		out.values[k] = val
	}
	if f := numeric.Ptr(v); f != nil {
		out.values[name] = *f
	}
	return out
}

// Merge layers over on top of o.
func (o Options) Merge(over Options) Options {
	out := Options{values: make(map[string]float64, len(o.values)+len(over.values))}
	for k, v := range o.values {
		out.values[k] = v
	}
	for k, v := range over.values {
		out.values[k] = v
	}
	return out
}

// Values returns a copy of the explicitly set options.
func (o Options) Values() map[string]float64 {
	out := make(map[string]float64, len(o.values))
	for k, v := range o.values {
		out[k] = v
	}
	return out
}

// Defaults returns the documented default of every option that has one.
func Defaults() map[string]float64 {
	out := make(map[string]float64, len(optionDefaults))
	for k, v := range optionDefaults {
		out[k] = v
	}
	return out
}

// DefaultNames lists options with a default in a stable order.
func DefaultNames() []string {
	names := make([]string, 0, len(optionDefaults))
	for k := range optionDefaults {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// LoadPresets reads a flat YAML mapping of option name to value.
func LoadPresets(path string) (Options, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("read presets: %w", err)
	}
	return ParsePresets(b)
}

// ParsePresets decodes YAML preset bytes.
func ParsePresets(b []byte) (Options, error) {
	var m map[string]interface{}
	if err := yaml.Unmarshal(b, &m); err != nil {
		return Options{}, fmt.Errorf("decode presets: %w", err)
	}
	return ParseOptions(m), nil
}
