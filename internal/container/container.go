package container

import (
	"context"
	"fmt"

	"autorisk/adapters/source"
	"autorisk/app"
	"autorisk/internal"
	"autorisk/internal/actuarial"
	"autorisk/internal/config"
	"autorisk/internal/enrichment"
	"autorisk/internal/risk"
	tables "autorisk/internal/table"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Data access
	Router   *source.Router
	Registry *tables.Registry
	Combiner *tables.Combiner

	// Analysis components
	Calculator *actuarial.Calculator
	Trends     *actuarial.Trends
	Analyzer   *risk.Analyzer
	Enricher   *enrichment.Enricher

	// Services
	Quotes *app.QuoteService
}

// New creates the container. Tables are registered but not loaded; call
// Preload to load them eagerly.
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	if err := c.initData(); err != nil {
		return nil, fmt.Errorf("failed to initialize data layer: %w", err)
	}
	c.initAnalysis()

	logger.Info("container initialized with tables %v", c.Registry.Names())
	return c, nil
}

// initData wires the source router, table registry and policy view
func (c *Container) initData() error {
	c.Router = source.NewRouter(source.Options{
		DataDir: c.Config.Data.Dir,
		Timeout: c.Config.Data.SourceTimeout,
		Logger:  c.Logger.With("component", "source"),
	})

	c.Registry = tables.NewRegistry(c.Router, c.Logger.With("component", "registry"))
	if err := tables.RegisterDefaults(c.Registry, c.Config.Data); err != nil {
		return err
	}

	c.Combiner = tables.NewCombiner(c.Registry, c.Logger.With("component", "combiner"))
	return nil
}

// initAnalysis wires the calculators, risk analyzer, enricher and quote service
func (c *Container) initAnalysis() {
	c.Calculator = actuarial.NewCalculator(c.Combiner, c.Logger.With("component", "calculator"))
	c.Trends = actuarial.NewTrends(c.Combiner)
	c.Analyzer = risk.NewAnalyzer(c.Registry, c.Logger.With("component", "risk"))
	c.Enricher = enrichment.NewEnricher(
		c.Combiner,
		c.Analyzer,
		enrichment.NewSeededRNG(c.Config.Enrichment.SampleSeed),
		enrichment.Options{
			SampleSize:   c.Config.Enrichment.SampleSize,
			HistoryTurns: c.Config.Enrichment.HistoryTurns,
		},
		c.Logger.With("component", "enrichment"),
	)
	c.Quotes = app.NewQuoteService(c.Calculator, c.Enricher, c.Trends, c.Analyzer, c.Logger.With("component", "quotes"))
}

// Preload loads every registered table and builds the policy view. Only a
// policy view that cannot be built is an error; other missing tables and a
// degraded view are logged.
func (c *Container) Preload(ctx context.Context) error {
	if err := c.Registry.LoadAll(ctx); err != nil {
		c.Logger.Warn("preload: %v", err)
	}
	if _, err := c.Combiner.CombinedPolicyData(ctx); err != nil {
		return err
	}
	if reason := c.Combiner.Degraded(); reason != "" {
		c.Logger.Warn("policy view degraded: %s", reason)
	}
	return nil
}

// Shutdown releases source clients and flushes the logger
func (c *Container) Shutdown(ctx context.Context) error {
	err := c.Router.Close()
	_ = c.Logger.Sync()
	return err
}
