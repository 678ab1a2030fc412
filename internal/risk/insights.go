package risk

import (
	"context"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"autorisk/domain/core"
	"autorisk/domain/risk"
	"autorisk/domain/table"
	"autorisk/internal/geo"
	tables "autorisk/internal/table"
)

// CompareBrands contrasts the accident totals of two brands. The riskier brand
// is the one with more accidents; ties name the first. A brand with no
// accident records is a not-found error.
func (a *Analyzer) CompareBrands(ctx context.Context, first, second string) (*risk.BrandComparison, error) {
	one, err := a.AccidentStatsByBrand(ctx, first)
	if err != nil {
		return nil, err
	}
	two, err := a.AccidentStatsByBrand(ctx, second)
	if err != nil {
		return nil, err
	}
	if !one.Found {
		return nil, core.NewNotFoundError("brand", first)
	}
	if !two.Found {
		return nil, core.NewNotFoundError("brand", second)
	}

	cmp := &risk.BrandComparison{
		First:              brandSummary(first, one),
		Second:             brandSummary(second, two),
		AbsoluteDifference: abs(one.Total - two.Total),
		RiskierBrand:       first,
	}
	if two.Total > one.Total {
		cmp.RiskierBrand = second
	}
	return cmp, nil
}

func brandSummary(name string, stats risk.BrandAccidents) risk.BrandSummary {
	s := risk.BrandSummary{Name: name, Accidents: stats.Total}
	if len(stats.TopCauses) > 0 {
		s.TopCause = stats.TopCauses[0].Value
	}
	return s
}

// MostCommonCauses ranks accident causes across every state
func (a *Analyzer) MostCommonCauses(ctx context.Context, n int) ([]table.Count, error) {
	accidents, err := a.store.Get(ctx, tables.Accidents)
	if err != nil {
		return nil, err
	}
	return accidents.ValueCounts(colCause, n), nil
}

// MostAffectedStates ranks states by summed crime quantity. crimeType filters
// by substring of the crime type; empty keeps every crime.
func (a *Analyzer) MostAffectedStates(ctx context.Context, n int, crimeType string) ([]risk.StateTotal, error) {
	crime, err := a.store.Get(ctx, tables.Crime)
	if err != nil {
		return nil, err
	}
	if crimeType != "" {
		crime = crime.Filter(func(r table.Row) bool { return strings.Contains(r[colCrimeType], crimeType) })
	}

	var order []string
	sums := make(map[string][]float64)
	for _, r := range crime.Rows {
		q, ok := r.Float(colQuantity)
		if !ok {
			continue
		}
		state := r[colState]
		if _, seen := sums[state]; !seen {
			order = append(order, state)
		}
		sums[state] = append(sums[state], q)
	}

	out := make([]risk.StateTotal, 0, len(order))
	for _, state := range order {
		out = append(out, risk.StateTotal{State: state, Total: int(floats.Sum(sums[state]))})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// CrimeEvolution sums a state's crimes per year and crime type, ordered by
// year then type
func (a *Analyzer) CrimeEvolution(ctx context.Context, state string) ([]risk.CrimePoint, error) {
	crime, err := a.store.Get(ctx, tables.Crime)
	if err != nil {
		return nil, err
	}

	type key struct{ year, kind string }
	totals := make(map[key]float64)
	for _, r := range crime.Rows {
		if !sameState(r[colState], state) {
			continue
		}
		q, ok := r.Float(colQuantity)
		if !ok {
			continue
		}
		totals[key{r[colCrimeYear], r[colCrimeType]}] += q
	}

	out := make([]risk.CrimePoint, 0, len(totals))
	for k, total := range totals {
		out = append(out, risk.CrimePoint{Year: k.year, CrimeType: k.kind, Total: int(total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].CrimeType < out[j].CrimeType
	})
	return out, nil
}

// AgeDistribution lists every state's youth and elderly shares for a
// projection year, youngest first. National and regional aggregate rows are
// skipped.
func (a *Analyzer) AgeDistribution(ctx context.Context, year int) ([]risk.AgeShare, error) {
	pop, err := a.store.Get(ctx, tables.Population)
	if err != nil {
		return nil, err
	}

	var out []risk.AgeShare
	for _, r := range pop.Rows {
		y, ok := r.Int(colPopYear)
		if !ok || y != year || !geo.IsStateCode(r[colPopUF]) {
			continue
		}
		d := demographics(r, r[colPopUF], year)
		out = append(out, risk.AgeShare{
			State:        d.Locale,
			UF:           d.UF,
			Total:        d.Total,
			YouthShare:   round(d.YouthShare, 2),
			ElderlyShare: round(d.ElderlyShare, 2),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].YouthShare > out[j].YouthShare })
	return out, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
