package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driven"
	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driving"
)

// Ensure LedgerService implements the interface.
var _ driving.LedgerService = (*LedgerService)(nil)

const isoDate = "2006-01-02"

// LedgerService reads the persisted ledger for listings and aggregation.
type LedgerService struct {
	store    driven.Store
	exporter driven.Exporter
}

// NewLedgerService creates a new ledger service. exporter may be nil, in
// which case Export is unavailable.
func NewLedgerService(store driven.Store, exporter driven.Exporter) *LedgerService {
	return &LedgerService{
		store:    store,
		exporter: exporter,
	}
}

// History groups ledger rows by ticket. The Total Row supplies the total;
// a ticket without one reports zero. Most recent date first.
func (s *LedgerService) History(ctx context.Context) ([]domain.HistoryTicket, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return nil, err
	}

	order := make([]string, 0)
	tickets := make(map[string]*domain.HistoryTicket)
	for _, row := range rows {
		t, seen := tickets[row.TicketID]
		if !seen {
			t = &domain.HistoryTicket{ID: row.TicketID, Store: row.Store, Date: row.Date}
			tickets[row.TicketID] = t
			order = append(order, row.TicketID)
		}
		if row.IsTotal() {
			t.Store = row.Store
			t.Date = row.Date
			t.Total = row.LineTotal
		}
	}

	history := make([]domain.HistoryTicket, 0, len(order))
	for _, id := range order {
		history = append(history, *tickets[id])
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Date > history[j].Date
	})
	return history, nil
}

// Insights computes headline stats and a lens aggregation for tickets
// dated within [from, to]. Product names and categories are normalised at
// read time: a matching rule replaces both, otherwise a cached simplified
// name replaces the name only.
func (s *LedgerService) Insights(ctx context.Context, from, to time.Time, lens domain.Lens) (*domain.Insights, error) {
	if !lens.IsValid() {
		return nil, fmt.Errorf("%w: unknown lens %q", domain.ErrInvalidInput, lens)
	}

	rows, err := s.rows(ctx)
	if err != nil {
		return nil, err
	}
	rules, err := loadRules(ctx, s.store)
	if err != nil {
		return nil, err
	}
	mappings, err := loadMappings(ctx, s.store)
	if err != nil {
		return nil, err
	}

	rows = NormalizeRows(filterByDate(rows, from, to), rules, domain.MappingIndex(mappings))

	return &domain.Insights{
		Stats:   ComputeStats(rows),
		Lens:    lens,
		Entries: Aggregate(rows, lens),
	}, nil
}

// Export writes the ledger, header included, through the exporter.
func (s *LedgerService) Export(ctx context.Context, w io.Writer) error {
	if s.exporter == nil {
		return fmt.Errorf("export: %w", domain.ErrInvalidInput)
	}
	rows, err := s.rows(ctx)
	if err != nil {
		return err
	}

	cells := make([][]any, len(rows))
	for i, row := range rows {
		cells[i] = row.Cells()
	}
	if err := s.exporter.Export(w, string(domain.CollectionLedger), domain.LedgerHeader, cells); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

func (s *LedgerService) rows(ctx context.Context) ([]domain.LedgerRow, error) {
	if s.store == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	return loadLedger(ctx, s.store)
}

func loadLedger(ctx context.Context, store driven.Store) ([]domain.LedgerRow, error) {
	cells, err := store.ReadRange(ctx, domain.LedgerDataRange)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	rows := make([]domain.LedgerRow, 0, len(cells))
	for _, c := range cells {
		if row, ok := domain.LedgerRowFromCells(c); ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// filterByDate keeps rows whose ISO date text lies within [from, to].
// Zero bounds are open.
func filterByDate(rows []domain.LedgerRow, from, to time.Time) []domain.LedgerRow {
	if from.IsZero() && to.IsZero() {
		return rows
	}
	lo, hi := "", ""
	if !from.IsZero() {
		lo = from.Format(isoDate)
	}
	if !to.IsZero() {
		hi = to.Format(isoDate)
	}

	out := make([]domain.LedgerRow, 0, len(rows))
	for _, row := range rows {
		if lo != "" && row.Date < lo {
			continue
		}
		if hi != "" && row.Date > hi {
			continue
		}
		out = append(out, row)
	}
	return out
}

// NormalizeRows applies rules and the cache to product rows. Total Rows
// and rows without a product name pass through unchanged. A rule or cached
// name equal to the total marker is ignored so product rows never turn
// into Total Rows.
func NormalizeRows(rows []domain.LedgerRow, rules []domain.Rule, cache map[string]string) []domain.LedgerRow {
	out := make([]domain.LedgerRow, len(rows))
	for i, row := range rows {
		out[i] = row
		if row.IsTotal() || row.Product == "" {
			continue
		}
		if row.Category == "" {
			out[i].Category = domain.DefaultCategory
		}
		if rule, ok := domain.FirstMatch(rules, row.Product); ok && !domain.IsTotalMarker(rule.Normalized) {
			out[i].Product = rule.Normalized
			out[i].Category = rule.Category
			continue
		}
		if simplified, ok := cache[row.Product]; ok && simplified != "" && !domain.IsTotalMarker(simplified) {
			out[i].Product = simplified
		}
	}
	return out
}

// ComputeStats derives totals from Total Rows and the top category from
// product line totals.
func ComputeStats(rows []domain.LedgerRow) domain.Stats {
	stats := domain.Stats{TopCategory: domain.NoCategory}
	byCategory := make(map[string]decimal.Decimal)
	var categories []string

	for _, row := range rows {
		if row.IsTotal() {
			stats.TotalSpent = stats.TotalSpent.Add(row.LineTotal)
			stats.TicketCount++
			continue
		}
		if _, ok := byCategory[row.Category]; !ok {
			categories = append(categories, row.Category)
		}
		byCategory[row.Category] = byCategory[row.Category].Add(row.LineTotal)
	}

	if stats.TicketCount > 0 {
		stats.AvgTicket = stats.TotalSpent.Div(decimal.NewFromInt(int64(stats.TicketCount)))
	}

	var best decimal.Decimal
	for i, cat := range categories {
		if v := byCategory[cat]; i == 0 || v.GreaterThan(best) {
			best = v
			stats.TopCategory = cat
		}
	}
	return stats
}

// Aggregate sums product line totals by the lens key, largest first.
// Total Rows and rows with an empty key are skipped.
func Aggregate(rows []domain.LedgerRow, lens domain.Lens) []domain.LensEntry {
	sums := make(map[string]decimal.Decimal)
	var keys []string

	for _, row := range rows {
		if row.IsTotal() {
			continue
		}
		var key string
		switch lens {
		case domain.LensProducts:
			key = row.Product
		case domain.LensCategories:
			key = row.Category
		case domain.LensStores:
			key = row.Store
		}
		if key == "" {
			continue
		}
		if _, ok := sums[key]; !ok {
			keys = append(keys, key)
		}
		sums[key] = sums[key].Add(row.LineTotal)
	}

	entries := make([]domain.LensEntry, len(keys))
	for i, k := range keys {
		entries[i] = domain.LensEntry{Name: k, Value: sums[k]}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value.GreaterThan(entries[j].Value)
	})
	return entries
}
