package risk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autorisk/adapters/source"
	"autorisk/domain/risk"
	"autorisk/domain/table"
	tables "autorisk/internal/table"
	"autorisk/internal/testkit"
)

func fixtureAnalyzer(t *testing.T, remove ...string) *Analyzer {
	t.Helper()
	fix := testkit.WriteFixture(t)
	for _, name := range remove {
		fix.Remove(t, name)
	}
	router := source.NewRouter(source.Options{DataDir: fix.Dir})
	t.Cleanup(func() { router.Close() })

	reg := tables.NewRegistry(router, nil)
	require.NoError(t, tables.RegisterDefaults(reg, fix.Config))
	return NewAnalyzer(reg, nil)
}

func TestAccidentStatsByBrand(t *testing.T) {
	a := fixtureAnalyzer(t)

	got, err := a.AccidentStatsByBrand(context.Background(), "honda")
	require.NoError(t, err)

	assert.True(t, got.Found)
	assert.Equal(t, 4, got.Total)
	assert.Equal(t, []table.Count{{Value: "Falta de atenção", Count: 2}, {Value: "Velocidade incompatível", Count: 1}, {Value: "Ingestão de álcool", Count: 1}}, got.TopCauses)
	assert.Equal(t, []table.Count{{Value: "SP", Count: 3}, {Value: "RJ", Count: 1}}, got.TopStates)
	require.NotNil(t, got.MeanDriverAge)
	assert.InDelta(t, 35.0, *got.MeanDriverAge, 1e-9)
	assert.Equal(t, []table.Count{{Value: "Masculino", Count: 2}, {Value: "Feminino", Count: 1}}, got.DriverSexCounts)
}

func TestAccidentStatsByBrandNotFound(t *testing.T) {
	a := fixtureAnalyzer(t)

	got, err := a.AccidentStatsByBrand(context.Background(), "FERRARI")
	require.NoError(t, err)
	assert.Equal(t, risk.BrandAccidents{Found: false, Brand: "FERRARI"}, got)

	empty, err := a.AccidentStatsByBrand(context.Background(), "  ")
	require.NoError(t, err)
	assert.False(t, empty.Found)
}

func TestAccidentStatsByState(t *testing.T) {
	a := fixtureAnalyzer(t)

	got, err := a.AccidentStatsByState(context.Background(), "sp")
	require.NoError(t, err)
	assert.True(t, got.Found)
	assert.Equal(t, "SP", got.UF)
	assert.Equal(t, "São Paulo", got.StateName)
	assert.Equal(t, 4, got.Total)
	assert.Equal(t, table.Count{Value: "HONDA/CIVIC", Count: 3}, got.TopBrands[0])

	missing, err := a.AccidentStatsByState(context.Background(), "AM")
	require.NoError(t, err)
	assert.False(t, missing.Found)
}

func TestTheftStatsByStateForYear(t *testing.T) {
	a := fixtureAnalyzer(t)

	got, err := a.TheftStatsByState(context.Background(), " rio de janeiro ", 2019)
	require.NoError(t, err)

	assert.True(t, got.Found)
	assert.Equal(t, "Rio de Janeiro", got.State)
	assert.Equal(t, "2019", got.Year)
	assert.Equal(t, 850, got.TotalRobberies)
	assert.Equal(t, 300, got.TotalThefts)
	require.NotNil(t, got.MonthlyRobberies)
	assert.InDelta(t, 425.0, *got.MonthlyRobberies, 1e-9)
	assert.Equal(t, "fevereiro", got.PeakRobberyMonth)
	assert.Equal(t, "março", got.PeakTheftMonth)
	assert.Equal(t, 1150, got.Total())
}

func TestTheftStatsByStateAllYears(t *testing.T) {
	a := fixtureAnalyzer(t)

	got, err := a.TheftStatsByState(context.Background(), "São Paulo", 0)
	require.NoError(t, err)
	assert.Equal(t, AllYears, got.Year)
	assert.Equal(t, 20500, got.TotalRobberies)
	assert.Equal(t, 5500, got.TotalThefts)
	assert.Equal(t, "janeiro", got.PeakRobberyMonth)
}

func TestTheftStatsByStateYearWithoutRows(t *testing.T) {
	a := fixtureAnalyzer(t)

	got, err := a.TheftStatsByState(context.Background(), "São Paulo", 2005)
	require.NoError(t, err)
	assert.True(t, got.Found)
	assert.Zero(t, got.Total())
	assert.Nil(t, got.MonthlyRobberies)

	missing, err := a.TheftStatsByState(context.Background(), "Acre", 2019)
	require.NoError(t, err)
	assert.False(t, missing.Found)
}

func TestPopulationByState(t *testing.T) {
	a := fixtureAnalyzer(t)

	got, err := a.PopulationByState(context.Background(), "MG", 2025)
	require.NoError(t, err)
	assert.True(t, got.Found)
	assert.Equal(t, 2000000, got.Total)
	assert.Equal(t, 120000, got.Youth)
	assert.Equal(t, 140000, got.YoungAdults)
	assert.InDelta(t, 6.0, got.YouthShare, 1e-9)
	assert.InDelta(t, 15.0, got.ElderlyShare, 1e-9)

	missing, err := a.PopulationByState(context.Background(), "MG", 2030)
	require.NoError(t, err)
	assert.False(t, missing.Found)
}

func TestBrandOf(t *testing.T) {
	tests := map[string]string{
		"HONDA/CIVIC":      "HONDA",
		"VW GOL 1.0":       "VW",
		"CIVIC":            "CIVIC",
		" TOYOTA /COROLLA": "TOYOTA",
		"":                 "",
	}
	for model, want := range tests {
		assert.Equal(t, want, BrandOf(model), model)
	}
}

func TestScoreThresholds(t *testing.T) {
	accidents := func(n int) risk.BrandAccidents { return risk.BrandAccidents{Found: true, Total: n} }
	theft := func(n int) risk.TheftStats { return risk.TheftStats{Found: true, TotalRobberies: n} }
	young := risk.Demographics{Found: true, YouthShare: 5.5}

	tests := []struct {
		name string
		acc  risk.BrandAccidents
		th   risk.TheftStats
		demo risk.Demographics
		want int
	}{
		{"nothing found", risk.BrandAccidents{}, risk.TheftStats{}, risk.Demographics{}, 50},
		{"accidents at boundary", accidents(100), risk.TheftStats{}, risk.Demographics{}, 50},
		{"accidents over 100", accidents(101), risk.TheftStats{}, risk.Demographics{}, 55},
		{"accidents over 500", accidents(501), risk.TheftStats{}, risk.Demographics{}, 60},
		{"accidents over 1000", accidents(1001), risk.TheftStats{}, risk.Demographics{}, 65},
		{"theft over 1000", risk.BrandAccidents{}, theft(1001), risk.Demographics{}, 60},
		{"theft over 5000", risk.BrandAccidents{}, theft(5001), risk.Demographics{}, 65},
		{"theft over 10000", risk.BrandAccidents{}, theft(10001), risk.Demographics{}, 70},
		{"youth share at boundary", risk.BrandAccidents{}, risk.TheftStats{}, risk.Demographics{Found: true, YouthShare: 5}, 50},
		{"everything", accidents(2000), theft(20000), young, 90},
		{"not found ignored", risk.BrandAccidents{Total: 5000}, risk.TheftStats{TotalRobberies: 50000}, risk.Demographics{YouthShare: 50}, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.acc, tt.th, tt.demo))
		})
	}
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, risk.LevelHigh, LevelFor(71))
	assert.Equal(t, risk.LevelMedium, LevelFor(70))
	assert.Equal(t, risk.LevelMedium, LevelFor(41))
	assert.Equal(t, risk.LevelLow, LevelFor(40))
	assert.NotEmpty(t, Recommendation(risk.LevelHigh))
	assert.NotEqual(t, Recommendation(risk.LevelHigh), Recommendation(risk.LevelLow))
}

func TestIntegratedRiskProfile(t *testing.T) {
	a := fixtureAnalyzer(t)

	tests := []struct {
		uf    string
		score int
		level risk.Level
	}{
		{"SP", 70, risk.LevelMedium},
		{"RJ", 60, risk.LevelMedium},
		{"MG", 55, risk.LevelMedium},
	}
	for _, tt := range tests {
		t.Run(tt.uf, func(t *testing.T) {
			p, err := a.IntegratedRiskProfile(context.Background(), "HONDA/CIVIC", tt.uf)
			require.NoError(t, err)
			assert.Equal(t, "HONDA", p.Brand)
			assert.Equal(t, tt.score, p.Score)
			assert.Equal(t, tt.level, p.Level)
			assert.Equal(t, Recommendation(tt.level), p.Recommendation)
			assert.True(t, p.Accidents.Found)
			assert.Nil(t, p.Unavailable)
		})
	}
}

func TestIntegratedRiskProfileKeepsNotFoundMarkers(t *testing.T) {
	a := fixtureAnalyzer(t)

	p, err := a.IntegratedRiskProfile(context.Background(), "FERRARI F8", "AM")
	require.NoError(t, err)
	assert.Equal(t, BaseScore, p.Score)
	assert.Equal(t, "Amazonas", p.State)
	assert.False(t, p.Accidents.Found)
	assert.Equal(t, "FERRARI", p.Accidents.Brand)
	assert.False(t, p.Theft.Found)
	assert.False(t, p.Demographics.Found)
}

func TestIntegratedRiskProfileRecordsUnavailableSources(t *testing.T) {
	a := fixtureAnalyzer(t, testkit.CrimeFile)

	p, err := a.IntegratedRiskProfile(context.Background(), "HONDA/CIVIC", "SP")
	require.NoError(t, err)
	assert.Contains(t, p.Unavailable, "dados_seguranca")
	assert.Len(t, p.Unavailable, 1)
	assert.False(t, p.Theft.Found)
	assert.Equal(t, BaseScore, p.Score)
}
