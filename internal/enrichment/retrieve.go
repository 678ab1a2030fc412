package enrichment

import (
	"context"

	"autorisk/domain/enrichment"
	"autorisk/domain/table"
	"autorisk/internal/geo"
	"autorisk/internal/risk"
	tables "autorisk/internal/table"
)

// Slice names of a Bundle
const (
	SliceModel      = "modelo"
	SliceFirstHalf  = "semestre_1"
	SliceSecondHalf = "semestre_2"
	SliceSample     = "amostra"
)

// TheftYear is the crime year used to ground state questions
const TheftYear = 2019

// RetrieveRelevantData gathers the slices and summaries an intent needs. A
// model yields its rows split by half-year plus the brand's accidents; a
// policy need without a model yields a seeded sample; a state yields its
// theft stats. Sub-results that are not found are left out.
func (e *Enricher) RetrieveRelevantData(ctx context.Context, intent enrichment.Intent) (*enrichment.Bundle, error) {
	bundle := &enrichment.Bundle{}
	if !intent.NeedsData {
		return bundle, nil
	}

	if intent.NeedsTable(tables.PolicyView) {
		view, err := e.view.CombinedPolicyData(ctx)
		if err != nil {
			return nil, err
		}

		if model := intent.Entities.Model; model != "" {
			rows := view.Where(e.schema.ModelColumn, model)
			bundle.Slices = append(bundle.Slices,
				enrichment.Slice{Name: SliceModel, Table: rows},
				enrichment.Slice{Name: SliceFirstHalf, Table: rows.Where(e.schema.HalfColumn, "1")},
				enrichment.Slice{Name: SliceSecondHalf, Table: rows.Where(e.schema.HalfColumn, "2")},
			)
		} else {
			bundle.Slices = append(bundle.Slices, enrichment.Slice{Name: SliceSample, Table: e.sample(view)})
		}
	}

	if intent.NeedsTable(tables.Accidents) && intent.Entities.Model != "" {
		stats, err := e.risk.AccidentStatsByBrand(ctx, risk.BrandOf(intent.Entities.Model))
		if err != nil {
			e.logger.Warn("enrich: accident stats unavailable: %v", err)
		} else if stats.Found {
			bundle.Accidents = &stats
		}
	}

	if intent.NeedsTable(tables.Crime) && intent.Entities.State != "" {
		stats, err := e.risk.TheftStatsByState(ctx, geo.StateName(intent.Entities.State), TheftYear)
		if err != nil {
			e.logger.Warn("enrich: theft stats unavailable: %v", err)
		} else if stats.Found {
			bundle.Theft = &stats
		}
	}
	return bundle, nil
}

func (e *Enricher) sample(view *table.Table) *table.Table {
	idx := e.rng.Sample(view.Len(), e.opts.SampleSize)
	rows := make([]table.Row, 0, len(idx))
	for _, i := range idx {
		rows = append(rows, view.Rows[i])
	}
	return view.WithRows(rows)
}
