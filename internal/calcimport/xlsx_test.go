package calcimport

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/buildlane/sitetruth/internal/model"
)

func writeWorkbook(t *testing.T, sheetName string, rows [][]string) string {
	t.Helper()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	require.NoError(t, err)
	for _, cells := range rows {
		row := sheet.AddRow()
		for _, c := range cells {
			row.AddCell().SetString(c)
		}
	}

	path := filepath.Join(t.TempDir(), "calc.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadWorkbook(t *testing.T) {
	path := writeWorkbook(t, "Materials", [][]string{
		{"Item", "Qty", "Unit", "Unit Price"},
		{"Drywall sheet", "18", "sheet", "$15.25"},
		{"Joint compound", "2", "pail", "18.50"},
	})

	items, err := ReadWorkbook(path, Options{})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Drywall sheet", items[0].Name)
	assert.InDelta(t, 18.0, items[0].Quantity, 0.001)
	assert.Equal(t, "sheet", items[0].Unit)
	assert.InDelta(t, 15.25, items[0].UnitPrice, 0.001)
	assert.InDelta(t, 274.5, items[0].TotalPrice, 0.001)
	assert.Equal(t, model.SourceCalculator, items[0].Source)
}

func TestReadWorkbook_SkipsBadRows(t *testing.T) {
	path := writeWorkbook(t, "Materials", [][]string{
		{"Item", "Qty", "Unit", "Unit Price"},
		{"", "5", "pc", "1.00"},
		{"No quantity here", "lots", "pc", "1.00"},
		{"Good row", "3", "pc", "2.00"},
	})

	items, err := ReadWorkbook(path, Options{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Good row", items[0].Name)
}

func TestReadWorkbook_MissingPriceDefaultsToZero(t *testing.T) {
	path := writeWorkbook(t, "Materials", [][]string{
		{"Item", "Qty", "Unit", "Unit Price"},
		{"Unpriced thing", "4", "pc", ""},
	})

	items, err := ReadWorkbook(path, Options{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.InDelta(t, 0.0, items[0].UnitPrice, 0.001)
	assert.False(t, items[0].Priced())
}

func TestReadWorkbook_SheetByName(t *testing.T) {
	path := writeWorkbook(t, "Estimate", [][]string{
		{"Item", "Qty", "Unit", "Unit Price"},
		{"Paint", "3", "gal", "42"},
	})

	items, err := ReadWorkbook(path, Options{SheetName: "Estimate"})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = ReadWorkbook(path, Options{SheetName: "Nope"})
	assert.Error(t, err)
}

func TestReadWorkbook_ThousandsSeparators(t *testing.T) {
	path := writeWorkbook(t, "Materials", [][]string{
		{"Item", "Qty", "Unit", "Unit Price"},
		{"Concrete", "1,200", "sq ft", "$6.50"},
	})

	items, err := ReadWorkbook(path, Options{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.InDelta(t, 1200.0, items[0].Quantity, 0.001)
}

func TestReadWorkbook_FileNotFound(t *testing.T) {
	_, err := ReadWorkbook(filepath.Join(t.TempDir(), "missing.xlsx"), Options{})
	assert.Error(t, err)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"18", 18, false},
		{"$15.25", 15.25, false},
		{"1,200.50", 1200.50, false},
		{" 42 ", 42, false},
		{"", 0, true},
		{"lots", 0, true},
	}

	for _, tt := range tests {
		got, err := parseNumber(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want, got, 0.001, tt.in)
	}
}
