// Package enrichment defines the intent and data bundle types used to build
// grounded prompts for an external text generator.
package enrichment

import (
	"autorisk/domain/risk"
	"autorisk/domain/table"
)

// Topic is the coarse subject of a user message
type Topic string

const (
	TopicGeneral Topic = "general"
	TopicPricing Topic = "pricing"
	TopicClaims  Topic = "claims"
)

// Entities are the values recognised in a message
type Entities struct {
	Model string `json:"modelo,omitempty"`
	State string `json:"uf,omitempty"`
}

// Intent classifies a message
type Intent struct {
	NeedsData    bool     `json:"needs_data"`
	Topic        Topic    `json:"topic"`
	Entities     Entities `json:"entities"`
	TablesNeeded []string `json:"tables_needed"`
}

// NeedsTable reports whether name is among the tables the intent needs
func (i Intent) NeedsTable(name string) bool {
	for _, t := range i.TablesNeeded {
		if t == name {
			return true
		}
	}
	return false
}

// Slice is a named subset of the policy view
type Slice struct {
	Name  string       `json:"nome"`
	Table *table.Table `json:"tabela"`
}

// Bundle is the data retrieved for one intent
type Bundle struct {
	Slices    []Slice              `json:"slices"`
	Accidents *risk.BrandAccidents `json:"acidentes,omitempty"`
	Theft     *risk.TheftStats     `json:"seguranca,omitempty"`
}

// Slice returns the named slice, or nil
func (b *Bundle) Slice(name string) *table.Table {
	for _, s := range b.Slices {
		if s.Name == name {
			return s.Table
		}
	}
	return nil
}

// Empty reports whether nothing was retrieved
func (b *Bundle) Empty() bool {
	return len(b.Slices) == 0 && b.Accidents == nil && b.Theft == nil
}

// Turn is one prior message of a conversation
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ModelStats aggregates premiums of one model
type ModelStats struct {
	Records     int     `json:"total_registros"`
	MeanPremium float64 `json:"premio_medio"`
	MinPremium  float64 `json:"premio_minimo"`
	MaxPremium  float64 `json:"premio_maximo"`
}

// Evolution is the half-over-half mean premium of a model
type Evolution struct {
	FirstHalfMean    float64 `json:"premio_medio_sem1"`
	SecondHalfMean   float64 `json:"premio_medio_sem2"`
	VariationPercent float64 `json:"variacao_percentual"`
}

// RegionStats aggregates premiums of one region
type RegionStats struct {
	Records     int           `json:"total_registros"`
	MeanPremium float64       `json:"premio_medio"`
	TopModels   []table.Count `json:"modelos_mais_comuns"`
}

// CalculatorContext is the lightweight context attached to a premium quote
type CalculatorContext struct {
	TablesUsed []string     `json:"tabelas_usadas"`
	Model      *ModelStats  `json:"estatisticas_modelo,omitempty"`
	Evolution  *Evolution   `json:"evolucao_temporal,omitempty"`
	Region     *RegionStats `json:"estatisticas_regiao,omitempty"`
}

// Prompt is an enriched prompt with the intent that shaped it
type Prompt struct {
	Text   string `json:"prompt"`
	Intent Intent `json:"intent"`
}
