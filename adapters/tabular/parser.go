// Package tabular parses delimited text tables.
package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"autorisk/domain/table"
)

var nullTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parser handles the delimited, semicolon_latin1 and crime_fixed profiles
type Parser struct{}

// NewParser creates a delimited-text parser
func NewParser() *Parser {
	return &Parser{}
}

// Supports reports whether p can be parsed by this package
func Supports(p table.Profile) bool {
	switch p {
	case table.ProfileDelimited, table.ProfileSemicolonLatin1, table.ProfileCrimeFixed:
		return true
	}
	return false
}

// Parse reads r according to decl.Profile
func (p *Parser) Parse(r io.Reader, decl table.Declaration) (*table.Table, error) {
	delim := ','
	header := true
	src := r
	var columns []string

	switch decl.Profile {
	case table.ProfileDelimited, "":
	case table.ProfileSemicolonLatin1:
		delim = ';'
		src = charmap.ISO8859_1.NewDecoder().Reader(r)
	case table.ProfileCrimeFixed:
		header = false
		columns = append([]string(nil), table.CrimeColumns...)
	default:
		return nil, fmt.Errorf("profile %q is not a delimited text profile", decl.Profile)
	}

	reader := csv.NewReader(skipBOM(src))
	reader.Comma = delim
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s data: %w", decl.Profile, err)
	}

	if header {
		if len(records) == 0 {
			return nil, fmt.Errorf("table %q has no header row", decl.Name)
		}
		columns = headerColumns(records[0])
		records = records[1:]
	}

	return build(decl, columns, records), nil
}

func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

func headerColumns(raw []string) []string {
	columns := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i)
		}
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n)
		} else {
			seen[name] = 1
		}
		columns[i] = name
	}
	return columns
}

// build converts raw records into rows, dropping null tokens and blank lines
func build(decl table.Declaration, columns []string, records [][]string) *table.Table {
	rows := make([]table.Row, 0, len(records))
	for _, rec := range records {
		if blank(rec) {
			continue
		}
		row := make(table.Row, len(columns))
		for j, cell := range rec {
			if j >= len(columns) {
				break
			}
			if v := Clean(cell); v != "" {
				row[columns[j]] = v
			}
		}
		rows = append(rows, row)
	}

	return &table.Table{
		Name:       decl.Name,
		Locator:    decl.Locator,
		Profile:    decl.Profile,
		KeyColumns: decl.KeyColumns,
		Columns:    columns,
		Rows:       rows,
	}
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Clean trims a cell and maps null tokens to ""
func Clean(cell string) string {
	v := strings.TrimSpace(cell)
	if _, null := nullTokens[v]; null {
		return ""
	}
	return v
}
