package analysis

import (
	"errors"
	"fmt"

	"github.com/joseph-ayodele/skogsprospekt/internal/entity"
)

// Func computes one analysis over a record. A non-nil error becomes a failed Result.
type Func func(rec *entity.PropertyRecord, opts Options) (any, error)

// Entry binds an analyzer name to its implementation.
type Entry struct {
	Name string
	Func Func
}

// Registry is a closed, ordered set of analyzers.
type Registry struct {
	entries []Entry
	byName  map[string]Func
}

// NewRegistry validates that every entry has a unique non-empty name and an implementation.
func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{
		entries: make([]Entry, 0, len(entries)),
		byName:  make(map[string]Func, len(entries)),
	}
	for _, e := range entries {
		if e.Name == "" {
			return nil, errors.New("analyzer with empty name")
		}
		if e.Func == nil {
			return nil, fmt.Errorf("analyzer %q has no implementation", e.Name)
		}
		if _, dup := r.byName[e.Name]; dup {
			return nil, fmt.Errorf("analyzer %q registered twice", e.Name)
		}
		r.entries = append(r.entries, e)
		r.byName[e.Name] = e.Func
	}
	return r, nil
}

// DefaultRegistry returns every built-in analyzer.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(
		Entry{"summary", func(rec *entity.PropertyRecord, o Options) (any, error) { return ComputeSummary(rec, o), nil }},
		Entry{"key_metrics", func(rec *entity.PropertyRecord, o Options) (any, error) { return ComputeKeyMetrics(rec, o), nil }},
		Entry{"initial_harvest_taxed", func(rec *entity.PropertyRecord, o Options) (any, error) { return ComputeInitialHarvest(rec, o) }},
		Entry{"loan_sustainability", func(rec *entity.PropertyRecord, o Options) (any, error) {
			return ComputeLoanSustainability(rec, o, nil), nil
		}},
		Entry{"interest_distribution", func(rec *entity.PropertyRecord, o Options) (any, error) {
			return ComputeInterestDistribution(rec, o, nil), nil
		}},
		Entry{"forward_cashflow", func(rec *entity.PropertyRecord, o Options) (any, error) {
			return ComputeForwardCashflow(rec, o, nil)
		}},
		Entry{"price_metrics", func(rec *entity.PropertyRecord, _ Options) (any, error) { return ComputePriceMetrics(rec), nil }},
		Entry{"risk", func(rec *entity.PropertyRecord, o Options) (any, error) { return ComputeRisk(rec, o), nil }},
		Entry{"growth_analysis", func(rec *entity.PropertyRecord, _ Options) (any, error) { return ComputeGrowthAnalysis(rec) }},
		Entry{"harvest_plan", func(rec *entity.PropertyRecord, o Options) (any, error) { return ComputeHarvestPlan(rec, o) }},
		Entry{"cashflow_loan", func(rec *entity.PropertyRecord, o Options) (any, error) { return ComputeCashflowLoan(rec, o) }},
		Entry{"value_indicator", func(rec *entity.PropertyRecord, o Options) (any, error) { return ComputeValueIndicator(rec, o) }},
	)
	if err != nil {
		panic(err)
	}
	return r
}

// Names returns analyzer names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Run executes one analyzer. Unknown names and panics become failed results.
func (r *Registry) Run(name string, rec *entity.PropertyRecord, opts Options) (res Result) {
	fn, ok := r.byName[name]
	if !ok {
		return Result{Error: CodeUnknownAnalyzer}
	}
	if rec == nil {
		rec = &entity.PropertyRecord{}
	}
	defer func() {
		if p := recover(); p != nil {
			res = Result{Error: fmt.Sprint(p)}
		}
	}()
	return resultOf(fn(rec, opts))
}

// RunAll runs each named analyzer independently. Repeated names are computed once.
func (r *Registry) RunAll(names []string, rec *entity.PropertyRecord, opts Options) map[string]Result {
	out := make(map[string]Result, len(names))
	for _, name := range names {
		if _, done := out[name]; done {
			continue
		}
		out[name] = r.Run(name, rec, opts)
	}
	return out
}
