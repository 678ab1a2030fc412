package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autorisk/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATA_DIR", "")
	t.Setenv("SOURCE_TIMEOUT", "")
	t.Setenv("ENRICH_SAMPLE_SEED", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./data", cfg.Data.Dir)
	assert.Equal(t, 30*time.Second, cfg.Data.SourceTimeout)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Enrichment.SampleSize)
	assert.Equal(t, int64(7), cfg.Enrichment.SampleSeed)
	assert.Equal(t, 5, cfg.Enrichment.HistoryTurns)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("POLICY_H2_LOCATOR", "s3://bucket/casco_sem2.csv")
	t.Setenv("SOURCE_TIMEOUT", "5s")
	t.Setenv("PRELOAD_TABLES", "true")
	t.Setenv("TABLES_MANIFEST", "tables.yaml")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s3://bucket/casco_sem2.csv", cfg.Data.PolicyH2Locator)
	assert.Equal(t, 5*time.Second, cfg.Data.SourceTimeout)
	assert.True(t, cfg.Data.Preload)
	assert.Equal(t, "tables.yaml", cfg.Data.Manifest)
}

func TestLoadRejectsNonPositiveSampleSize(t *testing.T) {
	t.Setenv("ENRICH_SAMPLE_SIZE", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
