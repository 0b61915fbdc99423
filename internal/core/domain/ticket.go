package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Reserved ledger values.
const (
	// TotalMarker is the product name carried by a ticket's Total Row.
	// It is never a real product and must be skipped by normalisation and
	// product/category aggregation.
	TotalMarker = "--- TOTAL TICKET ---"

	// TotalCategory is the category cell of a Total Row.
	TotalCategory = "TOTAL"

	// DefaultCategory is assigned to items the model did not categorise.
	DefaultCategory = "Otros"
)

// IsTotalMarker reports whether name is the reserved Total Row marker.
func IsTotalMarker(name string) bool {
	return strings.TrimSpace(name) == TotalMarker
}

// LineItem is one product line within a ticket.
type LineItem struct {
	// Name is the product name as printed on the receipt.
	Name string

	// Category defaults to DefaultCategory.
	Category string

	// UnitPrice defaults to zero.
	UnitPrice decimal.Decimal

	// Quantity defaults to one.
	Quantity decimal.Decimal

	// Discount is a positive amount taken off the line; defaults to zero.
	Discount decimal.Decimal

	// LineTotal is the amount charged for the line as reported by the model.
	// It is not reconciled against UnitPrice*Quantity-Discount.
	LineTotal decimal.Decimal
}

// Ticket is one purchase event.
type Ticket struct {
	// ID is the caller-supplied identifier shared by all ledger rows.
	ID string

	// Store is the merchant name.
	Store string

	// Date is an ISO calendar date (YYYY-MM-DD) as text.
	Date string

	// Items are the product lines in receipt order.
	Items []LineItem

	// Total is the ticket's grand total.
	Total decimal.Decimal
}

// Rows flattens the ticket into ledger rows: one per item, in order,
// followed by exactly one Total Row.
func (t *Ticket) Rows() []LedgerRow {
	rows := make([]LedgerRow, 0, len(t.Items)+1)
	for _, item := range t.Items {
		rows = append(rows, LedgerRow{
			TicketID:  t.ID,
			Store:     t.Store,
			Date:      t.Date,
			Product:   item.Name,
			Category:  item.Category,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
			LineTotal: item.LineTotal,
		})
	}
	rows = append(rows, LedgerRow{
		TicketID:  t.ID,
		Store:     t.Store,
		Date:      t.Date,
		Product:   TotalMarker,
		Category:  TotalCategory,
		LineTotal: t.Total,
	})
	return rows
}
