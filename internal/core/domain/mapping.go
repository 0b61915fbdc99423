package domain

import "strings"

// NameMapping is a learned raw-to-simplified product name pair.
type NameMapping struct {
	Original   string
	Simplified string
}

// Cells renders the mapping in column order.
func (m NameMapping) Cells() []any {
	return []any{m.Original, m.Simplified}
}

// MappingFromCells parses a stored mapping row. Rows with fewer than two
// cells are rejected.
func MappingFromCells(cells []any) (NameMapping, bool) {
	if len(cells) < 2 {
		return NameMapping{}, false
	}
	return NameMapping{
		Original:   Stringify(cells[0]),
		Simplified: Stringify(cells[1]),
	}, true
}

// MappingIndex builds the lookup view of the append-only cache.
// The first occurrence of an original name is authoritative.
func MappingIndex(mappings []NameMapping) map[string]string {
	index := make(map[string]string, len(mappings))
	for _, m := range mappings {
		key := strings.TrimSpace(m.Original)
		if key == "" {
			continue
		}
		if _, seen := index[key]; seen {
			continue
		}
		index[key] = m.Simplified
	}
	return index
}
