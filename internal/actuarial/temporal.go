package actuarial

import (
	"context"
	"sort"

	"github.com/montanaflynn/stats"

	"autorisk/domain/premium"
	"autorisk/domain/table"
	"autorisk/ports"
)

// Trends compares the two half-years of the combined policy view
type Trends struct {
	view   ports.PolicyView
	schema SchemaMapping
}

// NewTrends creates a half-over-half analyser
func NewTrends(view ports.PolicyView) *Trends {
	return &Trends{view: view, schema: DefaultSchema()}
}

// WithSchema replaces the column mapping
func (t *Trends) WithSchema(s SchemaMapping) *Trends {
	t.schema = s
	return t
}

// halves splits the view by half index, optionally restricted to one model
func (t *Trends) halves(ctx context.Context, model string) (*table.Table, *table.Table, error) {
	view, err := t.view.CombinedPolicyData(ctx)
	if err != nil {
		return nil, nil, err
	}
	if model != "" {
		view = view.Where(t.schema.ModelColumn, model)
	}
	return view.Where(t.schema.HalfColumn, "1"), view.Where(t.schema.HalfColumn, "2"), nil
}

func mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	m, err := stats.Mean(values)
	if err != nil {
		return 0, false
	}
	return m, true
}

// variationPercent is (second-first)/first*100 rounded to 2 places; nil when first is not positive
func variationPercent(first, second float64) *float64 {
	if first <= 0 {
		return nil
	}
	v := Round((second-first)/first*100, 2)
	return &v
}

func (t *Trends) halfStats(tbl *table.Table) *premium.HalfStats {
	m, ok := mean(tbl.Floats(t.schema.PremiumColumn))
	if !ok {
		return nil
	}
	return &premium.HalfStats{Records: tbl.Len(), MeanPremium: Round(m, 2)}
}

// PriceEvolution compares mean premium between halves; model "" covers every model
func (t *Trends) PriceEvolution(ctx context.Context, model string) (*premium.PriceEvolution, error) {
	h1, h2, err := t.halves(ctx, model)
	if err != nil {
		return nil, err
	}

	ev := &premium.PriceEvolution{
		Model:      model,
		FirstHalf:  t.halfStats(h1),
		SecondHalf: t.halfStats(h2),
	}
	if ev.FirstHalf != nil && ev.SecondHalf != nil {
		abs := Round(ev.SecondHalf.MeanPremium-ev.FirstHalf.MeanPremium, 2)
		ev.Variation = &abs
		ev.VariationPercent = variationPercent(ev.FirstHalf.MeanPremium, ev.SecondHalf.MeanPremium)
	}
	return ev, nil
}

// groupMeans averages the premium per value of column
func (t *Trends) groupMeans(tbl *table.Table, column string) map[string]float64 {
	groups := make(map[string][]float64)
	for _, r := range tbl.Rows {
		key, ok := r.Value(column)
		if !ok {
			continue
		}
		if v, ok := r.Float(t.schema.PremiumColumn); ok {
			groups[key] = append(groups[key], v)
		}
	}
	out := make(map[string]float64, len(groups))
	for k, vs := range groups {
		if m, ok := mean(vs); ok {
			out[k] = m
		}
	}
	return out
}

// TopMovers ranks models present in both halves by premium change, largest
// increase first when growing, largest decrease first otherwise
func (t *Trends) TopMovers(ctx context.Context, n int, growing bool) ([]premium.ModelMovement, error) {
	h1, h2, err := t.halves(ctx, "")
	if err != nil {
		return nil, err
	}
	first := t.groupMeans(h1, t.schema.ModelColumn)
	second := t.groupMeans(h2, t.schema.ModelColumn)

	var moves []premium.ModelMovement
	for model, m1 := range first {
		m2, ok := second[model]
		if !ok || m1 == 0 {
			continue
		}
		moves = append(moves, premium.ModelMovement{
			Model:            model,
			FirstHalfMean:    Round(m1, 2),
			SecondHalfMean:   Round(m2, 2),
			VariationPercent: Round((m2-m1)/m1*100, 2),
		})
	}

	sort.Slice(moves, func(i, j int) bool {
		if moves[i].VariationPercent == moves[j].VariationPercent {
			return moves[i].Model < moves[j].Model
		}
		if growing {
			return moves[i].VariationPercent > moves[j].VariationPercent
		}
		return moves[i].VariationPercent < moves[j].VariationPercent
	})
	if n > 0 && len(moves) > n {
		moves = moves[:n]
	}
	return moves, nil
}

// CompareRegions reports mean premium per region in each half, ordered by region
func (t *Trends) CompareRegions(ctx context.Context) ([]premium.RegionComparison, error) {
	h1, h2, err := t.halves(ctx, "")
	if err != nil {
		return nil, err
	}
	first := t.groupMeans(h1, t.schema.RegionColumn)
	second := t.groupMeans(h2, t.schema.RegionColumn)

	regions := make(map[string]struct{}, len(first)+len(second))
	for r := range first {
		regions[r] = struct{}{}
	}
	for r := range second {
		regions[r] = struct{}{}
	}
	names := make([]string, 0, len(regions))
	for r := range regions {
		names = append(names, r)
	}
	sort.Strings(names)

	out := make([]premium.RegionComparison, 0, len(names))
	for _, name := range names {
		cmp := premium.RegionComparison{Region: name}
		if m, ok := first[name]; ok {
			v := Round(m, 2)
			cmp.FirstHalfMean = &v
		}
		if m, ok := second[name]; ok {
			v := Round(m, 2)
			cmp.SecondHalfMean = &v
		}
		if cmp.FirstHalfMean != nil && cmp.SecondHalfMean != nil {
			cmp.VariationPercent = variationPercent(first[name], second[name])
		}
		out = append(out, cmp)
	}
	return out, nil
}

// claimFrequency is the mean of the per-column means of the frequency
// columns; columns with no values in tbl are skipped
func (t *Trends) claimFrequency(tbl *table.Table, columns []string) (float64, bool) {
	var means []float64
	for _, col := range columns {
		if m, ok := mean(tbl.Floats(col)); ok {
			means = append(means, m)
		}
	}
	return mean(means)
}

// ClaimsTrend compares mean claim frequency between halves
func (t *Trends) ClaimsTrend(ctx context.Context, model string) (*premium.ClaimsTrend, error) {
	h1, h2, err := t.halves(ctx, model)
	if err != nil {
		return nil, err
	}
	columns := MatchColumns(h1.Columns, t.schema.FrequencyPatterns)

	trend := &premium.ClaimsTrend{Model: model}
	if f, ok := t.claimFrequency(h1, columns); ok {
		v := Round(f, 6)
		trend.FirstHalfFrequency = &v
	}
	if f, ok := t.claimFrequency(h2, columns); ok {
		v := Round(f, 6)
		trend.SecondHalfFrequency = &v
	}
	if trend.FirstHalfFrequency != nil && trend.SecondHalfFrequency != nil {
		trend.VariationPercent = variationPercent(*trend.FirstHalfFrequency, *trend.SecondHalfFrequency)
	}
	return trend, nil
}
