package ports

import (
	"context"

	"autorisk/domain/risk"
)

// RiskLookup answers the auxiliary-table questions used to ground prompts
type RiskLookup interface {
	AccidentStatsByBrand(ctx context.Context, brand string) (risk.BrandAccidents, error)
	TheftStatsByState(ctx context.Context, state string, year int) (risk.TheftStats, error)
}
