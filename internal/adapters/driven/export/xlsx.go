// Package export renders ledger tables as downloadable documents.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v2"

	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driven"
)

var _ driven.Exporter = (*XLSX)(nil)

// XLSX writes a single-sheet workbook. Numeric cells stay numeric so the
// amounts can be summed in a spreadsheet application.
type XLSX struct{}

// NewXLSX creates an XLSX exporter.
func NewXLSX() *XLSX {
	return &XLSX{}
}

// Export writes header and rows to w as a workbook with one sheet.
func (x *XLSX) Export(w io.Writer, sheet string, header []any, rows [][]any) error {
	f := xlsx.NewFile()
	s, err := f.AddSheet(sheet)
	if err != nil {
		return eris.Wrapf(err, "xlsx: add sheet %q", sheet)
	}

	if len(header) > 0 {
		addRow(s, header)
	}
	for _, row := range rows {
		addRow(s, row)
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "xlsx: write workbook")
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, cells []any) {
	row := sheet.AddRow()
	for _, v := range cells {
		setCell(row.AddCell(), v)
	}
}

func setCell(cell *xlsx.Cell, v any) {
	switch t := v.(type) {
	case nil:
		cell.SetString("")
	case string:
		cell.SetString(t)
	case float64:
		cell.SetFloat(t)
	case int:
		cell.SetInt(t)
	case int64:
		cell.SetInt64(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			cell.SetFloat(f)
			return
		}
		cell.SetString(t.String())
	case decimal.Decimal:
		cell.SetFloat(t.InexactFloat64())
	default:
		cell.SetString(fmt.Sprint(t))
	}
}
