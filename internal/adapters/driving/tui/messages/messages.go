// Package messages defines Bubbletea message types for the TUI.
// Messages carry sync pipeline events into the Elm update loop.
package messages

import (
	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
)

// Progress is one checkpoint line reported by the sync pipeline.
type Progress struct {
	Text string
}

// SyncCompleted carries the outcome of a run back to the model.
type SyncCompleted struct {
	Results []domain.SyncResult
	Err     error
}

// Succeeded returns the number of items persisted and marked.
func (m SyncCompleted) Succeeded() int {
	ok, _ := domain.CountOutcomes(m.Results)
	return ok
}

// Failures returns the failed results in discovery order.
func (m SyncCompleted) Failures() []domain.SyncResult {
	var failed []domain.SyncResult
	for _, r := range m.Results {
		if !r.Succeeded() {
			failed = append(failed, r)
		}
	}
	return failed
}
