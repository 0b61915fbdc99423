package mcp

import (
	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Sync runs the mailbox-to-ledger pipeline.
	Sync driving.SyncOrchestrator

	// Resolver normalises product names.
	Resolver driving.NameResolver

	// Ledger reads ticket history.
	Ledger driving.LedgerService

	// Rules lists normalisation rules.
	Rules driving.RuleService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Sync == nil {
		return ErrMissingSyncService
	}
	// The remaining ports are optional; their tools report unavailability.
	return nil
}
