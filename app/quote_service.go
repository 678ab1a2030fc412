package app

import (
	"context"
	"fmt"

	"autorisk/domain/core"
	"autorisk/domain/enrichment"
	"autorisk/domain/premium"
	"autorisk/domain/risk"
	"autorisk/internal"
	"autorisk/internal/geo"
	"autorisk/ports"
)

// QuoteResult is the full answer to a premium query. A model absent from the
// policy data is reported through Error and Message rather than a Go error.
type QuoteResult struct {
	Error       bool                          `json:"erro"`
	Message     string                        `json:"mensagem,omitempty"`
	Query       premium.Query                 `json:"consulta"`
	Estimate    *premium.Estimate             `json:"estimativa,omitempty"`
	Context     *enrichment.CalculatorContext `json:"contexto_adicional,omitempty"`
	Evolution   *premium.PriceEvolution       `json:"evolucao_semestral,omitempty"`
	RiskProfile *risk.Profile                 `json:"perfil_risco,omitempty"`
}

// QuoteService combines the estimate with its surrounding context
type QuoteService struct {
	estimator ports.PremiumEstimator
	context   ports.QuoteContextProvider
	evolution ports.EvolutionProvider
	profiler  ports.RiskProfiler
	logger    *internal.Logger
}

func NewQuoteService(
	estimator ports.PremiumEstimator,
	quoteContext ports.QuoteContextProvider,
	evolution ports.EvolutionProvider,
	profiler ports.RiskProfiler,
	logger *internal.Logger,
) *QuoteService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &QuoteService{
		estimator: estimator,
		context:   quoteContext,
		evolution: evolution,
		profiler:  profiler,
		logger:    logger,
	}
}

// Quote estimates the premium, then attaches the model and region context,
// the model's half-year evolution and, when the region names a state, the
// integrated risk profile
func (s *QuoteService) Quote(ctx context.Context, q premium.Query) (*QuoteResult, error) {
	q = q.Normalize()
	result := &QuoteResult{Query: q}

	est, err := s.estimator.Estimate(ctx, q)
	if err != nil {
		if core.IsModelNotFound(err) {
			result.Error = true
			result.Message = fmt.Sprintf("Model '%s' not found.", q.Model)
			return result, nil
		}
		return nil, err
	}
	result.Estimate = est

	if result.Context, err = s.context.CalculatorContext(ctx, q); err != nil {
		return nil, fmt.Errorf("quote context for %s: %w", q.Model, err)
	}

	if result.Evolution, err = s.evolution.PriceEvolution(ctx, q.Model); err != nil {
		return nil, fmt.Errorf("price evolution for %s: %w", q.Model, err)
	}

	if uf := geo.ResolveStateCode(q.Region); uf != "" {
		if result.RiskProfile, err = s.profiler.IntegratedRiskProfile(ctx, q.Model, uf); err != nil {
			return nil, fmt.Errorf("risk profile for %s/%s: %w", q.Model, uf, err)
		}
	} else {
		s.logger.Debug("quote %s: region %q names no state, skipping risk profile", q.Model, q.Region)
	}

	s.logger.Info("quote %s/%d: premium=%.2f", q.Model, q.Year, est.Premium)
	return result, nil
}
