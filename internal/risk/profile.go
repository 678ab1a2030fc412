package risk

import (
	"context"
	"math"
	"strconv"
	"strings"

	"autorisk/domain/risk"
	"autorisk/internal/geo"
)

// Years used by the integrated profile
const (
	ProfileTheftYear      = 2019
	ProfilePopulationYear = 2025
)

// Score bounds
const (
	BaseScore = 50
	MaxScore  = 100
)

var recommendations = map[risk.Level]string{
	risk.LevelHigh:   "Recommended: full coverage including robbery/theft and 24h assistance",
	risk.LevelMedium: "Recommended: intermediate coverage with robbery protection",
	risk.LevelLow:    "Recommended: basic coverage may be sufficient",
}

// BrandOf extracts the brand from a model string: the text before "/" or the
// first whitespace-separated token
func BrandOf(model string) string {
	model = strings.TrimSpace(model)
	if before, _, ok := strings.Cut(model, "/"); ok {
		return strings.TrimSpace(before)
	}
	if fields := strings.Fields(model); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// Score adds accident, crime and youth bonuses to the base and caps at MaxScore.
// Sub-results that were not found contribute nothing.
func Score(accidents risk.BrandAccidents, theft risk.TheftStats, demo risk.Demographics) int {
	score := BaseScore

	if accidents.Found {
		switch {
		case accidents.Total > 1000:
			score += 15
		case accidents.Total > 500:
			score += 10
		case accidents.Total > 100:
			score += 5
		}
	}

	if theft.Found {
		switch total := theft.Total(); {
		case total > 10000:
			score += 20
		case total > 5000:
			score += 15
		case total > 1000:
			score += 10
		}
	}

	if demo.Found && demo.YouthShare > 5 {
		score += 5
	}

	if score > MaxScore {
		score = MaxScore
	}
	return score
}

// LevelFor labels a score: High above 70, Medium above 40, Low otherwise
func LevelFor(score int) risk.Level {
	switch {
	case score > 70:
		return risk.LevelHigh
	case score > 40:
		return risk.LevelMedium
	default:
		return risk.LevelLow
	}
}

// Recommendation returns the coverage advice for a level
func Recommendation(level risk.Level) string {
	return recommendations[level]
}

// IntegratedRiskProfile combines brand accidents, state accidents, 2019 theft
// and 2025 demographics for a model and state code. Sub-queries whose table
// cannot be loaded are recorded in Unavailable and scored as not found.
func (a *Analyzer) IntegratedRiskProfile(ctx context.Context, model, uf string) (*risk.Profile, error) {
	code := strings.ToUpper(strings.TrimSpace(uf))
	stateName := geo.StateName(code)
	if stateName == "" {
		stateName = uf
	}

	p := &risk.Profile{
		Model: model,
		UF:    uf,
		State: stateName,
		Brand: BrandOf(model),
	}
	unavailable := make(map[string]string)
	note := func(key string, err error) {
		if err != nil {
			a.logger.Warn("risk profile %s/%s: %s unavailable: %v", model, uf, key, err)
			unavailable[key] = err.Error()
		}
	}

	var err error
	p.Accidents, err = a.AccidentStatsByBrand(ctx, p.Brand)
	note("dados_acidentes", err)
	p.StateAccidents, err = a.AccidentStatsByState(ctx, code)
	note("dados_acidentes_estado", err)
	p.Theft, err = a.TheftStatsByState(ctx, stateName, ProfileTheftYear)
	note("dados_seguranca", err)
	p.Demographics, err = a.PopulationByState(ctx, code, ProfilePopulationYear)
	note("dados_demografia", err)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.Score = Score(p.Accidents, p.Theft, p.Demographics)
	p.Level = LevelFor(p.Score)
	p.Recommendation = Recommendation(p.Level)
	if len(unavailable) > 0 {
		p.Unavailable = unavailable
	}
	return p, nil
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
