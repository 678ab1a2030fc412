package ports

import (
	"context"

	"autorisk/domain/enrichment"
	"autorisk/domain/premium"
	"autorisk/domain/risk"
)

// PremiumEstimator prices a premium query
type PremiumEstimator interface {
	Estimate(ctx context.Context, q premium.Query) (*premium.Estimate, error)
}

// QuoteContextProvider summarises the model and region of a quote
type QuoteContextProvider interface {
	CalculatorContext(ctx context.Context, q premium.Query) (*enrichment.CalculatorContext, error)
}

// EvolutionProvider compares a model's premium between half-years
type EvolutionProvider interface {
	PriceEvolution(ctx context.Context, model string) (*premium.PriceEvolution, error)
}

// RiskProfiler builds the integrated risk profile of a model in a state
type RiskProfiler interface {
	IntegratedRiskProfile(ctx context.Context, model, uf string) (*risk.Profile, error)
}
