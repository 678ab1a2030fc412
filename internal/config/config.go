package config

import (
	"os"
	"strconv"
	"time"

	"autorisk/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data       DataConfig
	Server     ServerConfig
	Enrichment EnrichmentConfig
	Logging    LoggingConfig
}

// DataConfig holds table locations and loading behaviour
type DataConfig struct {
	Dir               string
	PolicyH1Locator   string
	PolicyH2Locator   string
	AccidentsLocator  string
	CrimeLocator      string
	PopulationLocator string
	Manifest          string
	SourceTimeout     time.Duration
	Preload           bool
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// EnrichmentConfig holds prompt-context settings
type EnrichmentConfig struct {
	SampleSize   int
	SampleSeed   int64
	HistoryTurns int
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data:       *loadDataConfig(),
		Server:     *loadServerConfig(),
		Enrichment: *loadEnrichmentConfig(),
		Logging:    LoggingConfig{Level: getEnvOrDefault("LOG_LEVEL", "INFO")},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		Dir:               getEnvOrDefault("DATA_DIR", "./data"),
		PolicyH1Locator:   getEnvOrDefault("POLICY_H1_LOCATOR", "casco_tratadoA.csv"),
		PolicyH2Locator:   getEnvOrDefault("POLICY_H2_LOCATOR", "casco_tratadoB.csv"),
		AccidentsLocator:  getEnvOrDefault("ACCIDENTS_LOCATOR", "acidentes2019_todas_causas_tipos.csv"),
		CrimeLocator:      getEnvOrDefault("CRIME_LOCATOR", "indicadoressegurancapublicauf.csv"),
		PopulationLocator: getEnvOrDefault("POPULATION_LOCATOR", "projecoes_grupos_etarios_quantidades.csv"),
		Manifest:          getEnvOrDefault("TABLES_MANIFEST", ""),
		SourceTimeout:     getEnvDurationOrDefault("SOURCE_TIMEOUT", 30*time.Second),
		Preload:           getEnvBoolOrDefault("PRELOAD_TABLES", false),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadEnrichmentConfig() *EnrichmentConfig {
	return &EnrichmentConfig{
		SampleSize:   getEnvIntOrDefault("ENRICH_SAMPLE_SIZE", 10),
		SampleSeed:   getEnvInt64OrDefault("ENRICH_SAMPLE_SEED", time.Now().UnixNano()),
		HistoryTurns: getEnvIntOrDefault("ENRICH_HISTORY_TURNS", 5),
	}
}

func validateConfig(config *Config) error {
	d := config.Data
	if d.PolicyH1Locator == "" {
		return errors.ConfigInvalid("POLICY_H1_LOCATOR is required")
	}
	if d.SourceTimeout <= 0 {
		return errors.ConfigInvalid("SOURCE_TIMEOUT must be positive")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Enrichment.SampleSize <= 0 {
		return errors.ConfigInvalid("ENRICH_SAMPLE_SIZE must be positive")
	}
	if config.Enrichment.HistoryTurns < 0 {
		return errors.ConfigInvalid("ENRICH_HISTORY_TURNS cannot be negative")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
