// Package enrichment selects the policy, accident and crime data relevant to a
// free-text question and renders it into a prompt for an external text
// generator.
package enrichment

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"autorisk/domain/enrichment"
	"autorisk/internal"
	"autorisk/internal/actuarial"
	"autorisk/ports"
)

// Defaults for Options
const (
	DefaultSampleSize   = 10
	DefaultHistoryTurns = 5
)

// Options tune retrieval and prompt assembly
type Options struct {
	SampleSize   int
	HistoryTurns int
}

// Enricher classifies questions and gathers the data that grounds them
type Enricher struct {
	view   ports.PolicyView
	risk   ports.RiskLookup
	rng    ports.RNGPort
	schema actuarial.SchemaMapping
	opts   Options
	logger *internal.Logger

	mu      sync.Mutex
	matcher *modelMatcher
}

// NewEnricher creates an enricher. rng drives the sample taken when a
// question needs policy data but names no model.
func NewEnricher(view ports.PolicyView, risk ports.RiskLookup, rng ports.RNGPort, opts Options, logger *internal.Logger) *Enricher {
	if opts.SampleSize <= 0 {
		opts.SampleSize = DefaultSampleSize
	}
	if opts.HistoryTurns <= 0 {
		opts.HistoryTurns = DefaultHistoryTurns
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Enricher{
		view:   view,
		risk:   risk,
		rng:    rng,
		schema: actuarial.DefaultSchema(),
		opts:   opts,
		logger: logger,
	}
}

// WithSchema replaces the policy column mapping
func (e *Enricher) WithSchema(s actuarial.SchemaMapping) *Enricher {
	e.schema = s
	return e
}

const promptTemplate = `You are an assistant specialized in auto insurance.
%s
Instructions:
- Use the data above to answer precisely
- If the data is not enough, be honest about the limitations
- Give clear and objective answers
- Mention trends in the data when relevant

Conversation history:
%s

User question:
%s

Your answer:`

// EnrichPrompt classifies text, retrieves the data it needs and assembles the
// prompt. history is read, never modified.
func (e *Enricher) EnrichPrompt(ctx context.Context, text string, history []enrichment.Turn) (*enrichment.Prompt, error) {
	intent, err := e.ClassifyIntent(ctx, text)
	if err != nil {
		return nil, err
	}

	bundle, err := e.RetrieveRelevantData(ctx, intent)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("enrich: topic=%s model=%q state=%q slices=%d", intent.Topic, intent.Entities.Model, intent.Entities.State, len(bundle.Slices))

	return &enrichment.Prompt{
		Text:   fmt.Sprintf(promptTemplate, FormatForPrompt(bundle, e.schema), e.formatHistory(history), text),
		Intent: intent,
	}, nil
}

func (e *Enricher) formatHistory(history []enrichment.Turn) string {
	if len(history) == 0 {
		return "No previous history."
	}
	if len(history) > e.opts.HistoryTurns {
		history = history[len(history)-e.opts.HistoryTurns:]
	}
	lines := make([]string, 0, len(history))
	for _, t := range history {
		lines = append(lines, strings.ToUpper(t.Role)+": "+t.Content)
	}
	return strings.Join(lines, "\n")
}
