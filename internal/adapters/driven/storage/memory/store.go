package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.Store       = (*Store)(nil)
	_ driven.Provisioner = (*Store)(nil)
)

// ID is the store id reported by Ensure.
const ID = "memory"

// Store is an in-memory implementation of driven.Store. Each collection
// is a grid of cells addressed like a spreadsheet tab.
type Store struct {
	mu    sync.RWMutex
	grids map[domain.Collection][][]any
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		grids: make(map[domain.Collection][][]any),
	}
}

// AppendRows adds rows below the last non-empty row of the collection.
func (s *Store) AppendRows(_ context.Context, rng domain.Range, rows [][]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	grid := s.grids[rng.Collection]
	next := lastDataRow(grid)
	for i, row := range rows {
		grid = setRow(grid, next+i, rng.StartCol, row)
	}
	s.grids[rng.Collection] = grid
	return nil
}

// ReadRange returns the rows inside the range.
func (s *Store) ReadRange(_ context.Context, rng domain.Range) ([][]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	grid := s.grids[rng.Collection]
	first := rng.Start() - 1
	last := len(grid)
	if rng.ToRow > 0 && rng.ToRow < last {
		last = rng.ToRow
	}

	var out [][]any
	for i := first; i < last; i++ {
		out = append(out, window(grid[i], rng.StartCol, rng.Columns))
	}
	return trimTrailing(out), nil
}

// WriteRange overwrites cells from the top-left corner of the range.
func (s *Store) WriteRange(_ context.Context, rng domain.Range, rows [][]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	grid := s.grids[rng.Collection]
	for i, row := range rows {
		grid = setRow(grid, rng.Start()-1+i, rng.StartCol, row)
	}
	s.grids[rng.Collection] = grid
	return nil
}

// Ensure seeds an empty store with default settings and header rows.
func (s *Store) Ensure(ctx context.Context, _ string) (string, bool, error) {
	s.mu.RLock()
	empty := len(s.grids) == 0
	s.mu.RUnlock()
	if !empty {
		return ID, false, nil
	}

	for _, block := range domain.Seed() {
		if err := s.WriteRange(ctx, block.Range, block.Rows); err != nil {
			return ID, true, err
		}
	}
	return ID, true, nil
}

// Reset drops every collection.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grids = make(map[domain.Collection][][]any)
}

// lastDataRow returns the 0-based index just past the last non-empty row.
func lastDataRow(grid [][]any) int {
	for i := len(grid) - 1; i >= 0; i-- {
		if !emptyRow(grid[i]) {
			return i + 1
		}
	}
	return 0
}

func setRow(grid [][]any, index, startCol int, cells []any) [][]any {
	for len(grid) <= index {
		grid = append(grid, nil)
	}
	row := grid[index]
	for len(row) < startCol+len(cells) {
		row = append(row, nil)
	}
	for j, c := range cells {
		row[startCol+j] = c
	}
	grid[index] = row
	return grid
}

func window(row []any, startCol, columns int) []any {
	if startCol >= len(row) {
		return []any{}
	}
	end := len(row)
	if columns > 0 && startCol+columns < end {
		end = startCol + columns
	}
	out := make([]any, end-startCol)
	copy(out, row[startCol:end])
	for len(out) > 0 && emptyCell(out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

func trimTrailing(rows [][]any) [][]any {
	for len(rows) > 0 && emptyRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}

func emptyRow(row []any) bool {
	for _, c := range row {
		if !emptyCell(c) {
			return false
		}
	}
	return true
}

func emptyCell(c any) bool {
	if c == nil {
		return true
	}
	s, ok := c.(string)
	return ok && s == ""
}
