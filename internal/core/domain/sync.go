package domain

// SyncOutcome is the terminal state of one source item in a run.
type SyncOutcome string

// Sync outcomes.
const (
	OutcomeSuccess SyncOutcome = "success"
	OutcomeError   SyncOutcome = "error"
)

// SyncResult records what happened to one discovered source item.
type SyncResult struct {
	// SourceID is the mailbox item identifier.
	SourceID string `json:"source_id"`

	// TicketID is the ledger id assigned to the item, if one was generated.
	TicketID string `json:"ticket_id,omitempty"`

	// Outcome is success or error.
	Outcome SyncOutcome `json:"outcome"`

	// Error is the human-readable failure, empty on success.
	Error string `json:"error,omitempty"`
}

// Succeeded reports whether the item was persisted and marked.
func (r SyncResult) Succeeded() bool {
	return r.Outcome == OutcomeSuccess
}

// CountOutcomes tallies successes and failures.
func CountOutcomes(results []SyncResult) (succeeded, failed int) {
	for _, r := range results {
		if r.Succeeded() {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}
