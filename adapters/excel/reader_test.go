package excel

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"autorisk/domain/table"
)

func workbook(t *testing.T, sheet string, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseFirstSheet(t *testing.T) {
	buf := workbook(t, "Sheet1", [][]interface{}{
		{"ANO", "SIGLA", "POP_T"},
		{2025, "SP", "46,000,000"},
		{2025, "RJ", "NA"},
	})

	tbl, err := NewReader().Parse(buf, table.Declaration{Name: "projecoes_populacao", Profile: table.ProfileXLSX})
	require.NoError(t, err)

	assert.Equal(t, []string{"ANO", "SIGLA", "POP_T"}, tbl.Columns)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "SP", tbl.Rows[0]["SIGLA"])
	n, ok := tbl.Rows[0].Int("POP_T")
	require.True(t, ok)
	assert.Equal(t, 46000000, n)
	_, ok = tbl.Rows[1].Value("POP_T")
	assert.False(t, ok)
}

func TestParseNamedSheet(t *testing.T) {
	buf := workbook(t, "dados", [][]interface{}{{"modelo"}, {"CIVIC"}})

	tbl, err := NewReader().Parse(buf, table.Declaration{Name: "x", Sheet: "dados"})
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())

	buf = workbook(t, "dados", [][]interface{}{{"modelo"}})
	_, err = NewReader().Parse(buf, table.Declaration{Name: "x", Sheet: "missing"})
	assert.Error(t, err)
}

func TestParseRejectsNonWorkbook(t *testing.T) {
	_, err := NewReader().Parse(bytes.NewBufferString("a,b\n1,2\n"), table.Declaration{Name: "x"})
	assert.Error(t, err)
}
