package domain

import (
	"fmt"
	"strings"
)

// Collection names a logical table inside the store.
type Collection string

// Collections held by one store instance.
const (
	CollectionSettings Collection = "Settings"
	CollectionLedger   Collection = "Gastos"
	CollectionRules    Collection = "Rules"
	CollectionMappings Collection = "Mapping_Cache"
)

// AllCollections lists every collection in provisioning order.
func AllCollections() []Collection {
	return []Collection{CollectionSettings, CollectionLedger, CollectionRules, CollectionMappings}
}

// Range selects a rectangle of cells within a collection.
// Rows are 1-based; a zero FromRow means row 1 and a zero ToRow means
// "to the last row". StartCol is 0-based.
type Range struct {
	Collection Collection
	FromRow    int
	ToRow      int
	StartCol   int
	Columns    int
}

// A1 renders the range in spreadsheet A1 notation, e.g. "Gastos!A2:I".
func (r Range) A1() string {
	cols := r.Columns
	if cols < 1 {
		cols = 1
	}
	first := ColumnName(r.StartCol)
	last := ColumnName(r.StartCol + cols - 1)

	var b strings.Builder
	b.WriteString(string(r.Collection))
	b.WriteString("!")
	switch {
	case r.FromRow == 0 && r.ToRow == 0:
		fmt.Fprintf(&b, "%s:%s", first, last)
	case r.ToRow == 0:
		fmt.Fprintf(&b, "%s%d:%s", first, r.FromRow, last)
	default:
		fmt.Fprintf(&b, "%s%d:%s%d", first, r.start(), last, r.ToRow)
	}
	return b.String()
}

func (r Range) start() int {
	if r.FromRow < 1 {
		return 1
	}
	return r.FromRow
}

// Start returns the first row of the range (1-based).
func (r Range) Start() int {
	return r.start()
}

// Contains reports whether the 1-based row number falls inside the range.
func (r Range) Contains(row int) bool {
	if row < r.start() {
		return false
	}
	return r.ToRow == 0 || row <= r.ToRow
}

// ColumnName converts a 0-based column index to letters (0 -> A, 26 -> AA).
func ColumnName(col int) string {
	if col < 0 {
		col = 0
	}
	name := ""
	for col >= 0 {
		name = string(rune('A'+col%26)) + name
		col = col/26 - 1
	}
	return name
}

// Standard ranges used by the services.
var (
	// LedgerDataRange covers every ledger row below the header.
	LedgerDataRange = Range{Collection: CollectionLedger, FromRow: 2, ToRow: 10000, Columns: LedgerColumns}

	// LedgerAppendRange is the append target for ledger rows.
	LedgerAppendRange = Range{Collection: CollectionLedger, Columns: LedgerColumns}

	// RulesDataRange covers every rule below the header.
	RulesDataRange = Range{Collection: CollectionRules, FromRow: 2, ToRow: 1000, Columns: 3}

	// RulesAppendRange is the append target for new rules.
	RulesAppendRange = Range{Collection: CollectionRules, Columns: 3}

	// MappingsRange covers the whole mapping cache (it has no header).
	MappingsRange = Range{Collection: CollectionMappings, Columns: 2}

	// SettingsRange covers the key/value settings block.
	SettingsRange = Range{Collection: CollectionSettings, FromRow: 1, ToRow: 5, Columns: 2}
)

// SeedBlock is one block of cells written when a store is provisioned.
type SeedBlock struct {
	Range Range
	Rows  [][]any
}

// Seed returns the default settings and the header rows of a new store.
func Seed() []SeedBlock {
	return []SeedBlock{
		{SettingsRange, DefaultSettings().Rows()},
		{headerRange(CollectionLedger, LedgerColumns), [][]any{LedgerHeader}},
		{headerRange(CollectionRules, len(RulesHeader)), [][]any{RulesHeader}},
	}
}

func headerRange(c Collection, columns int) Range {
	return Range{Collection: c, FromRow: 1, ToRow: 1, Columns: columns}
}
