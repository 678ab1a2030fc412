package actuarial

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceEvolution(t *testing.T) {
	view, _ := fixtureView(t)
	trends := NewTrends(view)

	ev, err := trends.PriceEvolution(context.Background(), "CIVIC")
	require.NoError(t, err)
	require.NotNil(t, ev.FirstHalf)
	require.NotNil(t, ev.SecondHalf)
	assert.Equal(t, 3, ev.FirstHalf.Records)
	assert.InDelta(t, 2300.0, ev.FirstHalf.MeanPremium, 1e-9)
	assert.InDelta(t, 2700.0, ev.SecondHalf.MeanPremium, 1e-9)
	assert.InDelta(t, 400.0, *ev.Variation, 1e-9)
	assert.InDelta(t, 17.39, *ev.VariationPercent, 1e-9)

	all, err := trends.PriceEvolution(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 6, all.FirstHalf.Records)
	assert.Equal(t, 3, all.SecondHalf.Records)

	gol, err := trends.PriceEvolution(context.Background(), "GOL")
	require.NoError(t, err)
	assert.NotNil(t, gol.FirstHalf)
	assert.Nil(t, gol.SecondHalf)
	assert.Nil(t, gol.VariationPercent)
}

func TestTopMovers(t *testing.T) {
	view, _ := fixtureView(t)
	trends := NewTrends(view)

	growing, err := trends.TopMovers(context.Background(), 10, true)
	require.NoError(t, err)
	require.Len(t, growing, 2)
	assert.Equal(t, "CIVIC", growing[0].Model)
	assert.InDelta(t, 17.39, growing[0].VariationPercent, 1e-9)
	assert.Equal(t, "COROLLA", growing[1].Model)
	assert.InDelta(t, 7.14, growing[1].VariationPercent, 1e-9)

	declining, err := trends.TopMovers(context.Background(), 1, false)
	require.NoError(t, err)
	require.Len(t, declining, 1)
	assert.Equal(t, "COROLLA", declining[0].Model)
}

func TestCompareRegions(t *testing.T) {
	view, _ := fixtureView(t)

	regions, err := NewTrends(view).CompareRegions(context.Background())
	require.NoError(t, err)
	require.Len(t, regions, 4)

	assert.Equal(t, "Demais regiões", regions[0].Region)
	assert.Nil(t, regions[0].SecondHalfMean)
	assert.Nil(t, regions[0].VariationPercent)

	assert.Equal(t, "Grande Campinas", regions[1].Region)
	assert.InDelta(t, -19.05, *regions[1].VariationPercent, 1e-9)

	assert.Equal(t, "Met. do Rio de Janeiro", regions[3].Region)
	assert.InDelta(t, 2100.0, *regions[3].FirstHalfMean, 1e-9)
	assert.InDelta(t, 42.86, *regions[3].VariationPercent, 1e-9)
}

func TestClaimsTrend(t *testing.T) {
	view, _ := fixtureView(t)

	trend, err := NewTrends(view).ClaimsTrend(context.Background(), "CIVIC")
	require.NoError(t, err)
	require.NotNil(t, trend.FirstHalfFrequency)
	require.NotNil(t, trend.SecondHalfFrequency)
	assert.InDelta(t, 0.013333, *trend.FirstHalfFrequency, 1e-9)
	assert.InDelta(t, 0.04, *trend.SecondHalfFrequency, 1e-9)
	assert.InDelta(t, 200.0, *trend.VariationPercent, 0.05)
}
