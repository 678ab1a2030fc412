package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autorisk/domain/premium"
	"autorisk/internal/config"
	tables "autorisk/internal/table"
	"autorisk/internal/testkit"
)

func fixtureConfig(t *testing.T) (*config.Config, *testkit.Fixture) {
	t.Helper()
	fix := testkit.WriteFixture(t)
	return &config.Config{
		Data:       fix.Config,
		Server:     config.ServerConfig{Port: "0", GinMode: "test"},
		Enrichment: config.EnrichmentConfig{SampleSize: 5, SampleSeed: 1, HistoryTurns: 5},
		Logging:    config.LoggingConfig{Level: "ERROR"},
	}, fix
}

func TestNewRejectsNilConfig(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)
}

func TestContainerWiresQuoteService(t *testing.T) {
	cfg, _ := fixtureConfig(t)
	c, err := New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Shutdown(context.Background()) })

	assert.ElementsMatch(t,
		[]string{tables.PolicyH1, tables.PolicyH2, tables.Accidents, tables.Crime, tables.Population},
		c.Registry.Names())

	require.NoError(t, c.Preload(context.Background()))
	for _, name := range c.Registry.Names() {
		assert.True(t, c.Registry.Loaded(name), name)
	}

	res, err := c.Quotes.Quote(context.Background(), premium.Query{Model: "COROLLA", Year: 2021, Sex: "F", Region: "Met. de São Paulo"})
	require.NoError(t, err)
	assert.False(t, res.Error)
	assert.NotNil(t, res.RiskProfile)
}

func TestPreloadFailsWhenPolicySourceMissing(t *testing.T) {
	cfg, fix := fixtureConfig(t)
	fix.Remove(t, testkit.PolicyH1File)

	c, err := New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Shutdown(context.Background()) })

	assert.Error(t, c.Preload(context.Background()))
}

func TestPreloadToleratesMissingAuxiliaryTable(t *testing.T) {
	cfg, fix := fixtureConfig(t)
	fix.Remove(t, testkit.CrimeFile)

	c, err := New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Shutdown(context.Background()) })

	require.NoError(t, c.Preload(context.Background()))
	assert.False(t, c.Registry.Loaded(tables.Crime))
}

func TestPreloadToleratesMissingSecondHalf(t *testing.T) {
	cfg, fix := fixtureConfig(t)
	fix.Remove(t, testkit.PolicyH2File)

	c, err := New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Shutdown(context.Background()) })

	require.NoError(t, c.Preload(context.Background()))

	view, err := c.Combiner.CombinedPolicyData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testkit.Rows(testkit.PolicyH1, true), view.Len())
	assert.NotEmpty(t, c.Combiner.Degraded())
}
