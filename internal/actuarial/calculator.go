// Package actuarial estimates premiums from the combined policy view and
// analyses how premiums and claims moved between the two half-years.
package actuarial

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"

	"autorisk/domain/core"
	"autorisk/domain/premium"
	"autorisk/domain/table"
	"autorisk/internal"
	"autorisk/internal/geo"
	tables "autorisk/internal/table"
	"autorisk/ports"
)

// ReferenceYear anchors the vehicle-age factor
const ReferenceYear = 2025

// SchemaMapping names the policy columns the calculator reads. Frequency and
// severity columns are discovered by substring pattern so snapshots may carry
// any number of them.
type SchemaMapping struct {
	ModelColumn       string
	AgeBandColumn     string
	RegionColumn      string
	PremiumColumn     string
	PeriodColumn      string
	HalfColumn        string
	FrequencyPatterns []string
	SeverityPatterns  []string
}

// DefaultSchema matches the hull-insurance policy files
func DefaultSchema() SchemaMapping {
	return SchemaMapping{
		ModelColumn:       "modelo",
		AgeBandColumn:     "faixa_desc",
		RegionColumn:      "regiao_desc",
		PremiumColumn:     "premio1",
		PeriodColumn:      tables.PeriodColumn,
		HalfColumn:        tables.HalfColumn,
		FrequencyPatterns: []string{"freq_sin"},
		SeverityPatterns:  []string{"indeniz"},
	}
}

// MatchColumns returns the columns whose names contain any pattern, in schema order
func MatchColumns(columns, patterns []string) []string {
	var out []string
	for _, c := range columns {
		for _, p := range patterns {
			if p != "" && strings.Contains(c, p) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// Calculator estimates premiums
type Calculator struct {
	view   ports.PolicyView
	schema SchemaMapping
	logger *internal.Logger
}

// NewCalculator creates a calculator over the combined policy view
func NewCalculator(view ports.PolicyView, logger *internal.Logger) *Calculator {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Calculator{view: view, schema: DefaultSchema(), logger: logger}
}

// WithSchema replaces the column mapping
func (c *Calculator) WithSchema(s SchemaMapping) *Calculator {
	c.schema = s
	return c
}

// Match is the record selected for a query and the scope it came from
type Match struct {
	Record      table.Row
	Scope       *table.Table
	Refinements []string
	View        *table.Table
}

// MatchRecord restricts the view to the model, then narrows by age band and
// region, keeping the previous scope whenever a step would leave nothing. The
// first row of the final scope is the match.
func (c *Calculator) MatchRecord(ctx context.Context, q premium.Query) (*Match, error) {
	view, err := c.view.CombinedPolicyData(ctx)
	if err != nil {
		return nil, err
	}

	scope := view.Where(c.schema.ModelColumn, q.Model)
	if scope.Empty() {
		return nil, core.NewModelNotFoundError(q.Model)
	}

	var steps []tables.Step
	if q.AgeBand != "" {
		steps = append(steps, tables.Equals(c.schema.AgeBandColumn, q.AgeBand))
	}
	if q.Region != "" {
		steps = append(steps, tables.Equals(c.schema.RegionColumn, q.Region))
	}
	scope, applied := tables.Refine(scope, steps...)

	return &Match{
		Record:      scope.Rows[0],
		Scope:       scope,
		Refinements: applied,
		View:        view,
	}, nil
}

// Estimate prices a query. Only a model absent from the view is an error.
func (c *Calculator) Estimate(ctx context.Context, q premium.Query) (*premium.Estimate, error) {
	q = q.Normalize()
	if err := q.Validate(); err != nil {
		return nil, err
	}

	m, err := c.MatchRecord(ctx, q)
	if err != nil {
		return nil, err
	}

	frequency := meanOfColumns(m.Record, MatchColumns(m.View.Columns, c.schema.FrequencyPatterns))
	severity := meanOfColumns(m.Record, MatchColumns(m.View.Columns, c.schema.SeverityPatterns))
	historical, _ := m.Record.Float(c.schema.PremiumColumn)

	base := historical
	lossCost := frequency > 0 && severity > 0
	if lossCost {
		base = frequency * severity
	}

	ageFactor := AgeFactor(q.Year)
	sexFactor := SexFactor(q.Sex)
	regionFactor, uf := RegionFactor(q.Region)

	adjustments := []premium.Adjustment{
		{Factor: "idade_veiculo", Multiplier: ageFactor, Basis: strconv.Itoa(q.Year)},
		{Factor: "sexo", Multiplier: sexFactor, Basis: q.Sex},
		{Factor: "regiao", Multiplier: regionFactor, Basis: uf},
	}
	estimated := base
	for _, adj := range adjustments {
		estimated *= adj.Multiplier
	}

	period, _ := m.Record.Value(c.schema.PeriodColumn)
	c.logger.Debug("estimate %s/%d: base=%.2f loss_cost=%t factors=%.2f,%.2f,%.2f refinements=%v",
		q.Model, q.Year, base, lossCost, ageFactor, sexFactor, regionFactor, m.Refinements)

	return &premium.Estimate{
		Premium:           Round(estimated, 2),
		HistoricalPremium: Round(historical, 2),
		BasePremium:       Round(base, 2),
		Frequency:         Round(frequency, 6),
		Severity:          Round(severity, 2),
		LossCostApplied:   lossCost,
		Adjustments:       adjustments,
		Record:            m.Record.Clone(0),
		Period:            period,
		Refinements:       m.Refinements,
		ScopeRows:         m.Scope.Len(),
	}, nil
}

// meanOfColumns averages the record's cells over columns; null or
// unparseable cells count as zero
func meanOfColumns(r table.Row, columns []string) float64 {
	values := make(stats.Float64Data, len(columns))
	for i, col := range columns {
		if v, ok := r.Float(col); ok {
			values[i] = v
		}
	}
	mean, err := values.Mean()
	if err != nil {
		return 0
	}
	return mean
}

// AgeFactor is clamp(0.7, 1.2, (ReferenceYear-year)*0.01+0.9)
func AgeFactor(year int) float64 {
	f := float64(ReferenceYear-year)*0.01 + 0.9
	return math.Max(0.7, math.Min(1.2, f))
}

// SexFactor is 1.10 for male drivers, 0.97 for female, 1.0 otherwise
func SexFactor(sex string) float64 {
	switch strings.ToUpper(strings.TrimSpace(sex)) {
	case "M", "MASCULINO", "MALE":
		return 1.10
	case "F", "FEMININO", "FEMALE":
		return 0.97
	default:
		return 1.0
	}
}

// RegionFactor resolves the descriptor to a state and returns 1.15 for SP,
// 1.22 for RJ and 1.0 otherwise, with the resolved code
func RegionFactor(region string) (float64, string) {
	uf := geo.ResolveStateCode(region)
	switch uf {
	case "SP":
		return 1.15, uf
	case "RJ":
		return 1.22, uf
	default:
		return 1.0, uf
	}
}

// Round rounds half away from zero to places decimals
func Round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
