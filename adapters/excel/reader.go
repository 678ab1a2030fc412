// Package excel reads workbook sheets into tables.
package excel

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"autorisk/adapters/tabular"
	"autorisk/domain/table"
)

// Reader parses the xlsx profile
type Reader struct{}

// NewReader creates an xlsx reader
func NewReader() *Reader {
	return &Reader{}
}

// Parse reads decl.Sheet (or the first sheet) with its first row as header
func (r *Reader) Parse(src io.Reader, decl table.Declaration) (*table.Table, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel workbook: %w", err)
	}
	defer f.Close()

	sheet := decl.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook for %q has no sheets", decl.Name)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q must have a header row", sheet)
	}

	return processRows(decl, rows), nil
}

// processRows converts raw sheet rows into a table; excelize trims trailing
// empty cells, so short rows leave the remaining columns null
func processRows(decl table.Declaration, rows [][]string) *table.Table {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
		if headers[i] == "" {
			headers[i] = fmt.Sprintf("column_%d", i)
		}
	}

	dataRows := make([]table.Row, 0, len(rows)-1)
	for _, raw := range rows[1:] {
		row := make(table.Row, len(headers))
		empty := true
		for j, cell := range raw {
			if j >= len(headers) {
				break
			}
			if v := tabular.Clean(cell); v != "" {
				row[headers[j]] = v
				empty = false
			}
		}
		if !empty {
			dataRows = append(dataRows, row)
		}
	}

	return &table.Table{
		Name:       decl.Name,
		Locator:    decl.Locator,
		Profile:    table.ProfileXLSX,
		KeyColumns: decl.KeyColumns,
		Columns:    headers,
		Rows:       dataRows,
	}
}
