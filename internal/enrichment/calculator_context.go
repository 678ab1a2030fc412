package enrichment

import (
	"context"

	"github.com/montanaflynn/stats"

	"autorisk/domain/enrichment"
	"autorisk/domain/premium"
	"autorisk/internal/actuarial"
	tables "autorisk/internal/table"
)

// topRegionModels caps the models listed in region stats
const topRegionModels = 3

// CalculatorContext summarises the model and region of a quote without intent
// classification. Sections whose rows are missing are left nil.
func (e *Enricher) CalculatorContext(ctx context.Context, q premium.Query) (*enrichment.CalculatorContext, error) {
	q = q.Normalize()
	view, err := e.view.CombinedPolicyData(ctx)
	if err != nil {
		return nil, err
	}

	out := &enrichment.CalculatorContext{TablesUsed: []string{tables.PolicyH1, tables.PolicyH2}}
	premiumCol := e.schema.PremiumColumn

	rows := view.Where(e.schema.ModelColumn, q.Model)
	if premiums := stats.Float64Data(rows.Floats(premiumCol)); len(premiums) > 0 {
		mean, _ := premiums.Mean()
		lo, _ := premiums.Min()
		hi, _ := premiums.Max()
		out.Model = &enrichment.ModelStats{
			Records:     rows.Len(),
			MeanPremium: actuarial.Round(mean, 2),
			MinPremium:  lo,
			MaxPremium:  hi,
		}

		first, _ := stats.Mean(rows.Where(e.schema.HalfColumn, "1").Floats(premiumCol))
		second, errSecond := stats.Mean(rows.Where(e.schema.HalfColumn, "2").Floats(premiumCol))
		if first > 0 && errSecond == nil {
			out.Evolution = &enrichment.Evolution{
				FirstHalfMean:    actuarial.Round(first, 2),
				SecondHalfMean:   actuarial.Round(second, 2),
				VariationPercent: actuarial.Round((second-first)/first*100, 2),
			}
		}
	}

	if q.Region != "" {
		region := view.Where(e.schema.RegionColumn, q.Region)
		if !region.Empty() {
			mean, _ := stats.Mean(region.Floats(premiumCol))
			out.Region = &enrichment.RegionStats{
				Records:     region.Len(),
				MeanPremium: actuarial.Round(mean, 2),
				TopModels:   region.ValueCounts(e.schema.ModelColumn, topRegionModels),
			}
		}
	}
	return out, nil
}
