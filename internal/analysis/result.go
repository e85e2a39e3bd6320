package analysis

import "errors"

// Error codes carried in Result.Error.
const (
	CodeUnknownAnalyzer      = "unknown_analyzer"
	CodeMissingVolume        = "missing_volym_total_m3sk"
	CodeMissingAreaOrBonitet = "missing_area_or_bonitet"
	CodeMissingPrice         = "missing_price_per_m3sk"
	CodeMissingBonitetArea   = "missing_bonitet_or_area"
	CodeMissingVolumePrice   = "missing_volym_or_pris"
	CodeMissingPriceGrowth   = "missing_pris_or_tillvaxt"
	CodeMissingPriceVolArea  = "missing_pris_volym_areal"
)

// Result is the per-analyzer envelope returned to callers.
type Result struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
	Output any    `json:"output,omitempty"`
}

// MissingInputError reports that a required quantity is absent.
type MissingInputError struct {
	Code string
}

func (e *MissingInputError) Error() string { return e.Code }

func missing(code string) error { return &MissingInputError{Code: code} }

// IsMissingInput reports whether err is a MissingInputError.
func IsMissingInput(err error) bool {
	var m *MissingInputError
	return errors.As(err, &m)
}

func resultOf(out any, err error) Result {
	if err != nil {
		return Result{OK: false, Error: err.Error()}
	}
	return Result{OK: true, Output: out}
}
