package actuarial

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autorisk/adapters/source"
	"autorisk/domain/core"
	"autorisk/domain/premium"
	tables "autorisk/internal/table"
	"autorisk/internal/testkit"
)

func fixtureView(t *testing.T) (*tables.Combiner, *testkit.Fixture) {
	t.Helper()
	fix := testkit.WriteFixture(t)
	router := source.NewRouter(source.Options{DataDir: fix.Dir})
	t.Cleanup(func() { router.Close() })

	reg := tables.NewRegistry(router, nil)
	require.NoError(t, tables.RegisterDefaults(reg, fix.Config))
	return tables.NewCombiner(reg, nil), fix
}

func TestEstimateUsesLossCostWhenClaimsExist(t *testing.T) {
	view, _ := fixtureView(t)
	calc := NewCalculator(view, nil)

	est, err := calc.Estimate(context.Background(), premium.Query{
		Model: "CIVIC", Year: 2023, Sex: "M", Region: "Met. de São Paulo", AgeBand: "26 a 35 anos",
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.04, est.Frequency, 1e-12)
	assert.InDelta(t, 15000.0, est.Severity, 1e-9)
	assert.True(t, est.LossCostApplied)
	assert.InDelta(t, 600.0, est.BasePremium, 1e-9)
	assert.InDelta(t, 698.28, est.Premium, 1e-9)
	assert.InDelta(t, 2500.0, est.HistoricalPremium, 1e-9)
	assert.Equal(t, tables.FirstHalfLabel, est.Period)
	assert.Equal(t, []string{"faixa_desc", "regiao_desc"}, est.Refinements)
	assert.Equal(t, 2, est.ScopeRows)

	require.Len(t, est.Adjustments, 3)
	assert.Equal(t, "idade_veiculo", est.Adjustments[0].Factor)
	assert.InDelta(t, 0.92, est.Adjustments[0].Multiplier, 1e-12)
	assert.Equal(t, "sexo", est.Adjustments[1].Factor)
	assert.InDelta(t, 1.10, est.Adjustments[1].Multiplier, 1e-12)
	assert.Equal(t, "regiao", est.Adjustments[2].Factor)
	assert.Equal(t, "SP", est.Adjustments[2].Basis)
	assert.InDelta(t, 1.15, est.Adjustments[2].Multiplier, 1e-12)
}

func TestEstimateFallsBackToHistoricalPremium(t *testing.T) {
	view, _ := fixtureView(t)

	est, err := NewCalculator(view, nil).Estimate(context.Background(), premium.Query{
		Model: "CIVIC", Year: 2020, Sex: "F", Region: "Met. do Rio de Janeiro", AgeBand: "36 a 45 anos",
	})
	require.NoError(t, err)

	assert.False(t, est.LossCostApplied)
	assert.Zero(t, est.Frequency)
	assert.InDelta(t, 2585.73, est.Premium, 1e-9)
	assert.Equal(t, "2300.00", est.Record["premio1"])
}

func TestEstimateUnknownModel(t *testing.T) {
	view, _ := fixtureView(t)

	_, err := NewCalculator(view, nil).Estimate(context.Background(), premium.Query{Model: "FUSCA", Year: 1980})
	require.Error(t, err)
	assert.True(t, core.IsModelNotFound(err))
	assert.True(t, core.IsNotFoundError(err))
}

func TestEstimateRejectsInvalidQuery(t *testing.T) {
	view, _ := fixtureView(t)

	_, err := NewCalculator(view, nil).Estimate(context.Background(), premium.Query{Model: " ", Year: 2020})
	assert.True(t, errors.Is(err, core.ErrInvalidQuery))

	_, err = NewCalculator(view, nil).Estimate(context.Background(), premium.Query{Model: "CIVIC"})
	assert.True(t, errors.Is(err, core.ErrInvalidQuery))
}

func TestEveryModelInViewEstimates(t *testing.T) {
	view, _ := fixtureView(t)
	calc := NewCalculator(view, nil)

	models, err := view.UniqueValues(context.Background(), tables.PolicyView, "modelo")
	require.NoError(t, err)
	require.NotEmpty(t, models)

	for _, model := range models {
		_, err := calc.Estimate(context.Background(), premium.Query{Model: model, Year: 2020, Region: "nowhere", AgeBand: "nobody"})
		assert.NoError(t, err, model)
	}
}

func TestFallbackMatchesQueryWithoutMissingCriterion(t *testing.T) {
	view, _ := fixtureView(t)
	calc := NewCalculator(view, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		full    premium.Query
		reduced premium.Query
	}{
		{
			name:    "unknown region",
			full:    premium.Query{Model: "CIVIC", Year: 2020, AgeBand: "26 a 35 anos", Region: "Met. de Curitiba"},
			reduced: premium.Query{Model: "CIVIC", Year: 2020, AgeBand: "26 a 35 anos"},
		},
		{
			name:    "unknown age band",
			full:    premium.Query{Model: "CIVIC", Year: 2020, AgeBand: "60 anos ou mais", Region: "Grande Campinas"},
			reduced: premium.Query{Model: "CIVIC", Year: 2020, Region: "Grande Campinas"},
		},
		{
			name:    "both unknown",
			full:    premium.Query{Model: "COROLLA", Year: 2020, AgeBand: "x", Region: "y"},
			reduced: premium.Query{Model: "COROLLA", Year: 2020},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			full, err := calc.MatchRecord(ctx, tt.full)
			require.NoError(t, err)
			reduced, err := calc.MatchRecord(ctx, tt.reduced)
			require.NoError(t, err)
			assert.Equal(t, reduced.Record, full.Record)
		})
	}
}

func TestEstimateWithDegradedView(t *testing.T) {
	view, fix := fixtureView(t)
	fix.Remove(t, testkit.PolicyH2File)

	est, err := NewCalculator(view, nil).Estimate(context.Background(), premium.Query{Model: "CIVIC", Year: 2023, Sex: "M"})
	require.NoError(t, err)
	assert.Equal(t, 3, est.ScopeRows)
	assert.NotEmpty(t, view.Degraded())

	_, err = NewCalculator(view, nil).Estimate(context.Background(), premium.Query{Model: "ONIX", Year: 2023})
	assert.True(t, core.IsModelNotFound(err), "second-half-only model is absent from a degraded view")
}

func TestFactors(t *testing.T) {
	ageTests := []struct {
		year int
		want float64
	}{
		{2023, 0.92},
		{2025, 0.90},
		{2015, 1.0},
		{1990, 1.2},
		{2050, 0.7},
	}
	for _, tt := range ageTests {
		assert.InDelta(t, tt.want, AgeFactor(tt.year), 1e-12, "year %d", tt.year)
	}

	assert.Equal(t, 1.10, SexFactor("M"))
	assert.Equal(t, 0.97, SexFactor("feminino"))
	assert.Equal(t, 1.0, SexFactor(""))

	f, uf := RegionFactor("Met. do Rio de Janeiro")
	assert.Equal(t, 1.22, f)
	assert.Equal(t, "RJ", uf)
	f, uf = RegionFactor("ESPIRITO SANTO")
	assert.Equal(t, 1.0, f)
	assert.Equal(t, "ES", uf)
	f, _ = RegionFactor("SP - Capital")
	assert.Equal(t, 1.15, f)
}

func TestMatchColumns(t *testing.T) {
	cols := []string{"modelo", "freq_sin1", "indeniz1", "freq_sin2", "freq_total"}
	assert.Equal(t, []string{"freq_sin1", "freq_sin2"}, MatchColumns(cols, []string{"freq_sin"}))
	assert.Equal(t, []string{"freq_sin1", "freq_sin2", "freq_total"}, MatchColumns(cols, []string{"freq_sin", "freq_t"}))
	assert.Empty(t, MatchColumns(cols, nil))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 698.28, Round(698.2800000001, 2))
	assert.Equal(t, 0.333333, Round(1.0/3, 6))
	assert.Equal(t, -19.05, Round(-19.0476, 2))
}
