package driving

import (
	"context"

	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
)

// ProgressFunc receives human-readable status lines at pipeline
// checkpoints, synchronously and in pipeline order. A nil ProgressFunc
// is allowed.
type ProgressFunc func(msg string)

// Report calls fn when it is set.
func (fn ProgressFunc) Report(msg string) {
	if fn != nil {
		fn(msg)
	}
}

// SyncOrchestrator turns labelled receipt emails into ledger rows.
type SyncOrchestrator interface {
	// Run processes every pending mailbox item once, sequentially.
	// Per-item failures are returned as error results; only configuration
	// and discovery failures abort the run.
	Run(ctx context.Context, progress ProgressFunc) ([]domain.SyncResult, error)

	// Status returns the state of the active run, if any.
	Status(ctx context.Context) (*SyncStatus, error)
}

// SyncStatus represents the current state of a sync operation.
type SyncStatus struct {
	// Running indicates if sync is currently in progress.
	Running bool

	// Pending is the number of items discovered for the run.
	Pending int

	// ItemsProcessed is the count of items persisted and marked.
	ItemsProcessed int

	// ErrorCount is the number of items that failed.
	ErrorCount int
}
