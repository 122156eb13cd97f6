// Package calcimport reads calculator spreadsheets into calculator-sourced
// ledger line items.
package calcimport

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/buildlane/sitetruth/internal/model"
)

// Options configures the workbook parser. Zero values read sheet 0 with a
// single header row and the conventional column order name, quantity,
// unit, unit price.
type Options struct {
	SheetIndex   int
	SheetName    string // if set, overrides SheetIndex
	SkipRows     int    // header rows to skip; default 1
	NameCol      int
	QuantityCol  int
	UnitCol      int
	UnitPriceCol int
}

func (o Options) normalized() Options {
	if o.SkipRows == 0 {
		o.SkipRows = 1
	}
	if o.QuantityCol == 0 && o.NameCol == 0 && o.UnitCol == 0 && o.UnitPriceCol == 0 {
		o.NameCol, o.QuantityCol, o.UnitCol, o.UnitPriceCol = 0, 1, 2, 3
	}
	return o
}

// ReadWorkbook reads an XLSX calculator sheet and returns line items
// stamped Source = calculator. Rows without a name or with an unparseable
// quantity are skipped with a log entry rather than failing the import.
func ReadWorkbook(path string, opts Options) ([]model.MaterialLineItem, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "calcimport: open file")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	opts = opts.normalized()

	var items []model.MaterialLineItem
	for i, row := range sheet.Rows {
		if i < opts.SkipRows {
			continue
		}
		cells := rowToStrings(row)
		name := cellAt(cells, opts.NameCol)
		if name == "" {
			continue
		}

		qty, err := parseNumber(cellAt(cells, opts.QuantityCol))
		if err != nil {
			zap.L().Debug("calcimport: skipping row with bad quantity",
				zap.Int("row", i),
				zap.String("name", name),
			)
			continue
		}

		price, err := parseNumber(cellAt(cells, opts.UnitPriceCol))
		if err != nil {
			// Missing price is fine: enrichment backfills it later.
			price = 0
		}

		it := model.MaterialLineItem{
			Name:      name,
			Quantity:  qty,
			Unit:      cellAt(cells, opts.UnitCol),
			UnitPrice: price,
			Source:    model.SourceCalculator,
		}
		it.Recompute()
		items = append(items, it)
	}

	return items, nil
}

func getSheet(f *xlsx.File, opts Options) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("calcimport: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}
	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("calcimport: sheet index %d out of range (%d sheets)", opts.SheetIndex, len(f.Sheets))
	}
	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	out := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		out[i] = strings.TrimSpace(cell.String())
	}
	return out
}

func cellAt(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

// parseNumber handles the formatting calculators produce: thousands
// separators, currency signs, trailing units.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, eris.New("calcimport: empty number")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "calcimport: parse %q", s)
	}
	return n, nil
}
