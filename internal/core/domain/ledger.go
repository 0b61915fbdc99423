package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Ledger column positions, in persisted order.
const (
	ColTicketID = iota
	ColStore
	ColDate
	ColProduct
	ColCategory
	ColQuantity
	ColUnitPrice
	ColDiscount
	ColLineTotal

	// LedgerColumns is the width of a ledger row.
	LedgerColumns
)

// LedgerHeader is the header row written when the ledger is provisioned.
var LedgerHeader = []any{
	"ID Ticket", "Tienda", "Fecha", "Producto", "Categoría",
	"Cantidad", "P. Unitario", "Descuento", "Total Línea",
}

// LedgerRow is one persisted ledger line: a product line or a Total Row.
type LedgerRow struct {
	TicketID  string
	Store     string
	Date      string
	Product   string
	Category  string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	LineTotal decimal.Decimal
}

// IsTotal reports whether the row is a ticket's Total Row.
func (r LedgerRow) IsTotal() bool {
	return IsTotalMarker(r.Product)
}

// Cells renders the row in column order. Total Rows leave the
// quantity, unit price and discount cells blank.
func (r LedgerRow) Cells() []any {
	if r.IsTotal() {
		return []any{
			r.TicketID, r.Store, r.Date, r.Product, r.Category,
			"", "", "", r.LineTotal.InexactFloat64(),
		}
	}
	return []any{
		r.TicketID, r.Store, r.Date, r.Product, r.Category,
		r.Quantity.InexactFloat64(),
		r.UnitPrice.InexactFloat64(),
		r.Discount.InexactFloat64(),
		r.LineTotal.InexactFloat64(),
	}
}

// LedgerRowFromCells parses a stored row. Short rows are padded with
// blanks; rows without a ticket id are rejected.
func LedgerRowFromCells(cells []any) (LedgerRow, bool) {
	row := LedgerRow{
		TicketID:  CellText(cells, ColTicketID),
		Store:     CellText(cells, ColStore),
		Date:      CellText(cells, ColDate),
		Product:   CellText(cells, ColProduct),
		Category:  CellText(cells, ColCategory),
		Quantity:  ParseAmount(cellAt(cells, ColQuantity)),
		UnitPrice: ParseAmount(cellAt(cells, ColUnitPrice)),
		Discount:  ParseAmount(cellAt(cells, ColDiscount)),
		LineTotal: ParseAmount(cellAt(cells, ColLineTotal)),
	}
	if row.TicketID == "" {
		return LedgerRow{}, false
	}
	return row, true
}

// CellText returns the cell at i as trimmed text, or "" when absent.
func CellText(cells []any, i int) string {
	v := cellAt(cells, i)
	if v == nil {
		return ""
	}
	return strings.TrimSpace(Stringify(v))
}

func cellAt(cells []any, i int) any {
	if i < 0 || i >= len(cells) {
		return nil
	}
	return cells[i]
}

// Stringify renders any scalar cell or JSON value as text.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return decimal.NewFromFloat(t).String()
	case decimal.Decimal:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

var nonAmountChars = regexp.MustCompile(`[^\d.,-]`)

// ParseAmount reads a numeric cell leniently. Currency symbols and spaces
// are dropped and a decimal comma is accepted ("1,50 €" is 1.50).
// Unparseable values are zero.
func ParseAmount(v any) decimal.Decimal {
	switch t := v.(type) {
	case nil:
		return decimal.Zero
	case float64:
		return decimal.NewFromFloat(t)
	case int:
		return decimal.NewFromInt(int64(t))
	case int64:
		return decimal.NewFromInt(t)
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return decimal.Zero
		}
		return d
	case decimal.Decimal:
		return t
	}
	s := nonAmountChars.ReplaceAllString(Stringify(v), "")
	s = strings.Replace(s, ",", ".", 1)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
