// Package risk answers accident, crime and demographic questions from the
// auxiliary tables and combines them into an integrated risk profile.
package risk

import (
	"context"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"autorisk/domain/risk"
	"autorisk/domain/table"
	"autorisk/internal"
	"autorisk/internal/geo"
	tables "autorisk/internal/table"
	"autorisk/ports"
)

// Column names of the auxiliary tables
const (
	colBrand      = "marca"
	colUF         = "uf"
	colCause      = "causa_acidente"
	colType       = "tipo_acidente"
	colRole       = "tipo_envolvido"
	colSex        = "sexo"
	colAge        = "idade"
	colState      = "estado"
	colCrimeType  = "tipo_crime"
	colCrimeYear  = "ano"
	colMonth      = "mes"
	colQuantity   = "quantidade"
	colPopYear    = "ANO"
	colPopUF      = "SIGLA"
	colPopLocale  = "LOCAL"
	colPopTotal   = "POP_T"
	colPopYouth   = "15-17_T"
	colPopAdults  = "18-21_T"
	colPopElderly = "60+_T"
)

// DriverRole marks the driver among the people involved in an accident
const DriverRole = "Condutor"

// Crime type markers
const (
	RobberyMarker = "Roubo"
	TheftMarker   = "Furto"
)

// AllYears is reported as the year of theft stats computed without a year filter
const AllYears = "Todos"

// Analyzer queries the accident, crime and population tables
type Analyzer struct {
	store  ports.TableStore
	logger *internal.Logger
}

// NewAnalyzer creates an analyzer over store
func NewAnalyzer(store ports.TableStore, logger *internal.Logger) *Analyzer {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Analyzer{store: store, logger: logger}
}

// AccidentStatsByBrand matches brand case-insensitively as a substring of the
// accident brand column. Totals and rankings cover every matched row; mean age
// and sex distribution cover drivers only.
func (a *Analyzer) AccidentStatsByBrand(ctx context.Context, brand string) (risk.BrandAccidents, error) {
	brand = strings.TrimSpace(brand)
	notFound := risk.BrandAccidents{Found: false, Brand: brand}
	if brand == "" {
		return notFound, nil
	}

	accidents, err := a.store.Get(ctx, tables.Accidents)
	if err != nil {
		return notFound, err
	}

	needle := strings.ToUpper(brand)
	matched := accidents.Filter(func(r table.Row) bool {
		return strings.Contains(strings.ToUpper(r[colBrand]), needle)
	})
	if matched.Empty() {
		return notFound, nil
	}

	drivers := matched.Where(colRole, DriverRole)
	out := risk.BrandAccidents{
		Found:           true,
		Brand:           brand,
		Total:           matched.Len(),
		TopCauses:       matched.ValueCounts(colCause, 5),
		TopTypes:        matched.ValueCounts(colType, 5),
		TopStates:       matched.ValueCounts(colUF, 5),
		DriverSexCounts: drivers.ValueCounts(colSex, 0),
	}
	if ages := drivers.Floats(colAge); len(ages) > 0 {
		m := round(stat.Mean(ages, nil), 1)
		out.MeanDriverAge = &m
	}
	return out, nil
}

// AccidentStatsByState matches the upper-cased code exactly
func (a *Analyzer) AccidentStatsByState(ctx context.Context, uf string) (risk.StateAccidents, error) {
	code := strings.ToUpper(strings.TrimSpace(uf))
	notFound := risk.StateAccidents{Found: false, UF: uf}

	accidents, err := a.store.Get(ctx, tables.Accidents)
	if err != nil {
		return notFound, err
	}

	matched := accidents.Where(colUF, code)
	if matched.Empty() {
		return notFound, nil
	}

	name := geo.StateName(code)
	if name == "" {
		name = code
	}
	return risk.StateAccidents{
		Found:     true,
		UF:        code,
		StateName: name,
		Total:     matched.Len(),
		TopCauses: matched.ValueCounts(colCause, 5),
		TopTypes:  matched.ValueCounts(colType, 5),
		TopBrands: matched.ValueCounts(colBrand, 10),
	}, nil
}

// sameState compares state names trimmed and title-cased
func sameState(a, b string) bool {
	return geo.Title(a) == geo.Title(b)
}

// TheftStatsByState splits a state's crimes into robbery and theft. year 0
// covers every year. A state with no rows at all is not found; a known state
// without rows for the year reports zero totals.
func (a *Analyzer) TheftStatsByState(ctx context.Context, state string, year int) (risk.TheftStats, error) {
	notFound := risk.TheftStats{Found: false, State: state}

	crime, err := a.store.Get(ctx, tables.Crime)
	if err != nil {
		return notFound, err
	}

	rows := crime.Filter(func(r table.Row) bool { return sameState(r[colState], state) })
	if rows.Empty() {
		return notFound, nil
	}

	out := risk.TheftStats{
		Found: true,
		State: rows.Rows[0][colState],
		Year:  AllYears,
	}
	if year != 0 {
		out.Year = itoa(year)
		rows = rows.Filter(func(r table.Row) bool {
			y, ok := r.Int(colCrimeYear)
			return ok && y == year
		})
	}

	robberies := rows.Filter(func(r table.Row) bool { return strings.Contains(r[colCrimeType], RobberyMarker) })
	thefts := rows.Filter(func(r table.Row) bool { return strings.Contains(r[colCrimeType], TheftMarker) })

	out.TotalRobberies, out.MonthlyRobberies, out.PeakRobberyMonth = crimeSummary(robberies)
	out.TotalThefts, out.MonthlyThefts, out.PeakTheftMonth = crimeSummary(thefts)
	return out, nil
}

// crimeSummary returns the total, the mean per row and the month of the
// largest quantity (first on ties)
func crimeSummary(rows *table.Table) (int, *float64, string) {
	quantities := make([]float64, 0, rows.Len())
	months := make([]string, 0, rows.Len())
	for _, r := range rows.Rows {
		q, ok := r.Float(colQuantity)
		if !ok {
			continue
		}
		quantities = append(quantities, q)
		months = append(months, r[colMonth])
	}
	if len(quantities) == 0 {
		return 0, nil, ""
	}

	m := round(stat.Mean(quantities, nil), 2)
	return int(floats.Sum(quantities)), &m, months[floats.MaxIdx(quantities)]
}

// PopulationByState matches SIGLA and ANO exactly and reports the youth and
// elderly shares of the total as percentages
func (a *Analyzer) PopulationByState(ctx context.Context, uf string, year int) (risk.Demographics, error) {
	code := strings.ToUpper(strings.TrimSpace(uf))
	notFound := risk.Demographics{Found: false, UF: uf, Year: year}

	pop, err := a.store.Get(ctx, tables.Population)
	if err != nil {
		return notFound, err
	}

	matched := pop.Filter(func(r table.Row) bool {
		y, ok := r.Int(colPopYear)
		return r[colPopUF] == code && ok && y == year
	})
	if matched.Empty() {
		return notFound, nil
	}

	return demographics(matched.Rows[0], code, year), nil
}

func demographics(r table.Row, code string, year int) risk.Demographics {
	total, _ := r.Int(colPopTotal)
	youth, _ := r.Int(colPopYouth)
	adults, _ := r.Int(colPopAdults)
	elderly, _ := r.Int(colPopElderly)

	d := risk.Demographics{
		Found:       true,
		UF:          code,
		Year:        year,
		Locale:      r[colPopLocale],
		Total:       total,
		Youth:       youth,
		YoungAdults: adults,
		Elderly:     elderly,
	}
	if total > 0 {
		d.YouthShare = float64(youth) / float64(total) * 100
		d.ElderlyShare = float64(elderly) / float64(total) * 100
	}
	return d
}
