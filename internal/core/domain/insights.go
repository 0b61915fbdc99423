package domain

import "github.com/shopspring/decimal"

// HistoryTicket summarises one ticket for listings.
type HistoryTicket struct {
	ID    string
	Store string
	Date  string
	Total decimal.Decimal
}

// Lens selects the dimension ledger spend is grouped by.
type Lens string

// Available lenses.
const (
	LensProducts   Lens = "products"
	LensCategories Lens = "categories"
	LensStores     Lens = "stores"
)

// IsValid returns true if the lens is recognised.
func (l Lens) IsValid() bool {
	switch l {
	case LensProducts, LensCategories, LensStores:
		return true
	default:
		return false
	}
}

// NoCategory is reported as the top category when nothing was spent.
const NoCategory = "Ninguna"

// Stats are the headline figures over a set of ledger rows.
type Stats struct {
	TotalSpent  decimal.Decimal
	AvgTicket   decimal.Decimal
	TopCategory string
	TicketCount int
}

// LensEntry is one aggregated bucket.
type LensEntry struct {
	Name  string
	Value decimal.Decimal
}

// Insights bundles stats and a lens aggregation for a date window.
type Insights struct {
	Stats   Stats
	Lens    Lens
	Entries []LensEntry
}
