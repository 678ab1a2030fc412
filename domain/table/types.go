// Package table holds the in-memory representation of a loaded dataset.
//
// Tables are immutable once loaded: filters and heads return new *Table
// values that share Row maps with their parent, so callers must not mutate
// rows they receive.
package table

import (
	"sort"
	"strings"
)

// Profile selects the parser used for a table's source bytes
type Profile string

const (
	// ProfileDelimited is a comma-delimited file with a header row
	ProfileDelimited Profile = "delimited"
	// ProfileSemicolonLatin1 is a semicolon-delimited ISO-8859-1 file with a header row
	ProfileSemicolonLatin1 Profile = "semicolon_latin1"
	// ProfileCrimeFixed is a headerless file with the fixed crime layout
	ProfileCrimeFixed Profile = "crime_fixed"
	// ProfileXLSX is the first (or named) sheet of an Excel workbook
	ProfileXLSX Profile = "xlsx"
	// ProfileSQL is the result set of a SQL query
	ProfileSQL Profile = "sql"
	// ProfileJSON is an array of objects, optionally nested under a data path
	ProfileJSON Profile = "json"
)

// CrimeColumns is the fixed column layout of the headerless crime profile
var CrimeColumns = []string{"estado", "tipo_crime", "ano", "mes", "quantidade"}

// Valid reports whether p names a known parser profile
func (p Profile) Valid() bool {
	switch p {
	case ProfileDelimited, ProfileSemicolonLatin1, ProfileCrimeFixed, ProfileXLSX, ProfileSQL, ProfileJSON:
		return true
	}
	return false
}

// Declaration describes where a table lives and how to parse it
type Declaration struct {
	Name        string   `yaml:"name" json:"name"`
	Locator     string   `yaml:"locator" json:"locator"`
	Profile     Profile  `yaml:"profile" json:"profile"`
	Description string   `yaml:"description" json:"description"`
	KeyColumns  []string `yaml:"key_columns" json:"key_columns"`
	Sheet       string   `yaml:"sheet,omitempty" json:"sheet,omitempty"`
	Query       string   `yaml:"query,omitempty" json:"query,omitempty"`
	DataPath    string   `yaml:"data_path,omitempty" json:"data_path,omitempty"`
}

// Row maps column names to trimmed cell text. A missing key or an empty
// string is a null cell.
type Row map[string]string

// Value returns the cell text and whether it is non-null
func (r Row) Value(column string) (string, bool) {
	v, ok := r[column]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Float parses the cell as a number, tolerating thousands separators
func (r Row) Float(column string) (float64, bool) {
	v, ok := r.Value(column)
	if !ok {
		return 0, false
	}
	return ParseNumber(v)
}

// Int parses the cell as a whole number
func (r Row) Int(column string) (int, bool) {
	f, ok := r.Float(column)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Clone returns a shallow copy with room for extra columns
func (r Row) Clone(extra int) Row {
	out := make(Row, len(r)+extra)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Count is one entry of a frequency table
type Count struct {
	Value string `json:"valor"`
	Count int    `json:"quantidade"`
}

// Table is a named rectangular dataset
type Table struct {
	Name       string   `json:"name"`
	Locator    string   `json:"locator,omitempty"`
	Profile    Profile  `json:"profile,omitempty"`
	KeyColumns []string `json:"key_columns,omitempty"`
	Columns    []string `json:"columns"`
	Rows       []Row    `json:"rows"`
}

// New builds a table from a column list and rows
func New(name string, columns []string, rows []Row) *Table {
	return &Table{Name: name, Columns: columns, Rows: rows}
}

// Len returns the row count
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table has no rows
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// HasColumn reports whether the schema contains column
func (t *Table) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// derive returns an empty table carrying t's schema and metadata
func (t *Table) derive(rows []Row) *Table {
	return &Table{
		Name:       t.Name,
		Locator:    t.Locator,
		Profile:    t.Profile,
		KeyColumns: t.KeyColumns,
		Columns:    t.Columns,
		Rows:       rows,
	}
}

// Filter keeps rows for which keep returns true, preserving order
func (t *Table) Filter(keep func(Row) bool) *Table {
	var rows []Row
	for _, r := range t.Rows {
		if keep(r) {
			rows = append(rows, r)
		}
	}
	return t.derive(rows)
}

// Where keeps rows whose column equals value exactly
func (t *Table) Where(column, value string) *Table {
	return t.Filter(func(r Row) bool { return r[column] == value })
}

// Head returns the first n rows
func (t *Table) Head(n int) *Table {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	if n < 0 {
		n = 0
	}
	return t.derive(t.Rows[:n])
}

// WithRows returns a table with t's schema and the given rows
func (t *Table) WithRows(rows []Row) *Table {
	return t.derive(rows)
}

// Floats returns the parseable non-null values of column in row order
func (t *Table) Floats(column string) []float64 {
	var out []float64
	for _, r := range t.Rows {
		if f, ok := r.Float(column); ok {
			out = append(out, f)
		}
	}
	return out
}

// IsNumeric reports whether every non-null cell of column parses as a number
// and at least one such cell exists
func (t *Table) IsNumeric(column string) bool {
	seen := false
	for _, r := range t.Rows {
		v, ok := r.Value(column)
		if !ok {
			continue
		}
		if _, ok := ParseNumber(v); !ok {
			return false
		}
		seen = true
	}
	return seen
}

// Unique returns the sorted distinct non-null values of column
func (t *Table) Unique(column string) []string {
	set := make(map[string]struct{})
	for _, r := range t.Rows {
		if v, ok := r.Value(column); ok {
			set[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := strings.ToLower(out[i]), strings.ToLower(out[j])
		if li == lj {
			return out[i] < out[j]
		}
		return li < lj
	})
	return out
}

// ValueCounts counts non-null values of column, most frequent first. Ties
// keep first-appearance order. n <= 0 returns every value.
func (t *Table) ValueCounts(column string, n int) []Count {
	index := make(map[string]int)
	var counts []Count
	for _, r := range t.Rows {
		v, ok := r.Value(column)
		if !ok {
			continue
		}
		if i, seen := index[v]; seen {
			counts[i].Count++
			continue
		}
		index[v] = len(counts)
		counts = append(counts, Count{Value: v, Count: 1})
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}
