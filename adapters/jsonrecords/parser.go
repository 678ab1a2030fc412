// Package jsonrecords reads JSON documents holding an array of flat records.
package jsonrecords

import (
	"fmt"
	"io"

	"github.com/tidwall/gjson"

	"autorisk/adapters/tabular"
	"autorisk/domain/table"
)

// Parser parses the json profile
type Parser struct{}

// NewParser creates a JSON record parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse extracts the records at decl.DataPath (the document root when empty).
// A single object is read as a one-row table. Columns keep first-seen order.
func (p *Parser) Parse(r io.Reader, decl table.Declaration) (*table.Table, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON for %q: %w", decl.Name, err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON for %q", decl.Name)
	}

	result := gjson.ParseBytes(body)
	if decl.DataPath != "" {
		result = gjson.GetBytes(body, decl.DataPath)
		if !result.Exists() {
			return nil, fmt.Errorf("data path %q not found in %q", decl.DataPath, decl.Name)
		}
	}

	var records []gjson.Result
	switch {
	case result.IsArray():
		records = result.Array()
	case result.IsObject():
		records = []gjson.Result{result}
	default:
		return nil, fmt.Errorf("data at %q in %q is neither an array nor an object", decl.DataPath, decl.Name)
	}

	t := &table.Table{
		Name:       decl.Name,
		Locator:    decl.Locator,
		Profile:    decl.Profile,
		KeyColumns: decl.KeyColumns,
	}
	seen := make(map[string]bool)
	for i, rec := range records {
		if !rec.IsObject() {
			return nil, fmt.Errorf("record %d in %q is not an object", i, decl.Name)
		}
		row := make(table.Row)
		rec.ForEach(func(key, value gjson.Result) bool {
			col := tabular.Clean(key.String())
			if col == "" {
				return true
			}
			if !seen[col] {
				seen[col] = true
				t.Columns = append(t.Columns, col)
			}
			if v := cellText(value); v != "" {
				row[col] = v
			}
			return true
		})
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func cellText(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return tabular.Clean(v.Str)
	case gjson.Number, gjson.JSON:
		return v.Raw
	default:
		return v.String()
	}
}
