// Package premium defines premium queries, estimates and half-year trend results.
package premium

import (
	"strings"

	"autorisk/domain/core"
	"autorisk/domain/table"
)

// Query is one premium request
type Query struct {
	Model   string `json:"modelo" binding:"required"`
	Year    int    `json:"ano" binding:"required"`
	Sex     string `json:"sexo"`
	Region  string `json:"regiao_desc"`
	AgeBand string `json:"faixa_desc"`
}

// Normalize trims every text field
func (q Query) Normalize() Query {
	q.Model = strings.TrimSpace(q.Model)
	q.Sex = strings.TrimSpace(q.Sex)
	q.Region = strings.TrimSpace(q.Region)
	q.AgeBand = strings.TrimSpace(q.AgeBand)
	return q
}

// Validate rejects queries without a model or a plausible year
func (q Query) Validate() error {
	if strings.TrimSpace(q.Model) == "" {
		return core.NewInvalidQueryError("modelo", "is required")
	}
	if q.Year < 1900 || q.Year > 2100 {
		return core.NewInvalidQueryError("ano", "must be a four-digit year")
	}
	return nil
}

// Adjustment records one multiplicative factor applied to the base premium
type Adjustment struct {
	Factor     string  `json:"fator"`
	Multiplier float64 `json:"multiplicador"`
	Basis      string  `json:"base"`
}

// Estimate is the calculator's result
type Estimate struct {
	Premium           float64      `json:"premio_estimado"`
	HistoricalPremium float64      `json:"premio_historico"`
	BasePremium       float64      `json:"premio_base"`
	Frequency         float64      `json:"frequencia"`
	Severity          float64      `json:"severidade"`
	LossCostApplied   bool         `json:"custo_sinistro_aplicado"`
	Adjustments       []Adjustment `json:"ajustes"`
	Record            table.Row    `json:"registro_utilizado"`
	Period            string       `json:"periodo_dados,omitempty"`
	Refinements       []string     `json:"refinamentos"`
	ScopeRows         int          `json:"registros_no_escopo"`
}

// HalfStats aggregates premiums of one half-year
type HalfStats struct {
	Records     int     `json:"registros"`
	MeanPremium float64 `json:"premio_medio"`
}

// PriceEvolution compares mean premium between the two halves
type PriceEvolution struct {
	Model            string     `json:"modelo,omitempty"`
	FirstHalf        *HalfStats `json:"semestre1,omitempty"`
	SecondHalf       *HalfStats `json:"semestre2,omitempty"`
	Variation        *float64   `json:"variacao_absoluta,omitempty"`
	VariationPercent *float64   `json:"variacao_percentual,omitempty"`
}

// ModelMovement is one model's premium change between halves
type ModelMovement struct {
	Model            string  `json:"modelo"`
	FirstHalfMean    float64 `json:"premio_semestre1"`
	SecondHalfMean   float64 `json:"premio_semestre2"`
	VariationPercent float64 `json:"variacao_percentual"`
}

// ClaimsTrend compares mean claim frequency between halves
type ClaimsTrend struct {
	Model               string   `json:"modelo,omitempty"`
	FirstHalfFrequency  *float64 `json:"frequencia_semestre1,omitempty"`
	SecondHalfFrequency *float64 `json:"frequencia_semestre2,omitempty"`
	VariationPercent    *float64 `json:"variacao_percentual,omitempty"`
}

// RegionComparison is one region's mean premium per half
type RegionComparison struct {
	Region           string   `json:"regiao_desc"`
	FirstHalfMean    *float64 `json:"premio_semestre1,omitempty"`
	SecondHalfMean   *float64 `json:"premio_semestre2,omitempty"`
	VariationPercent *float64 `json:"variacao_percentual,omitempty"`
}
