package mcp

import (
	"context"
	"errors"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rotisserie/eris"

	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
	"github.com/custodia-labs/omniticket-cli/internal/logger"
)

// errUnavailable is returned by tools whose service was not wired.
var errUnavailable = errors.New("mcp: service not configured")

// SyncInput is the input schema for the sync tool. It takes no arguments.
type SyncInput struct{}

// SyncOutput is the output schema for the sync tool.
type SyncOutput struct {
	Results   []domain.SyncResult `json:"results"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
	Progress  []string            `json:"progress"`
}

// NormalizeInput is the input schema for the normalisation tool.
type NormalizeInput struct {
	Names []string `json:"names" jsonschema:"raw product names as printed on receipts"`
}

// NormalizeOutput is the output schema for the normalisation tool.
type NormalizeOutput struct {
	Mappings map[string]string `json:"mappings"`
	Count    int               `json:"count"`
}

// HistoryInput is the input schema for the history tool.
type HistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of tickets to return (default 20)"`
}

// HistoryOutput is the output schema for the history tool.
type HistoryOutput struct {
	Tickets []TicketOutput `json:"tickets"`
	Count   int            `json:"count"`
}

// TicketOutput represents one ticket in the history.
type TicketOutput struct {
	ID    string `json:"id"`
	Store string `json:"store"`
	Date  string `json:"date"`
	Total string `json:"total"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync_tickets",
		Description: "Process new receipt emails into the expense ledger",
	}, s.handleSync)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "normalize_products",
		Description: "Map raw receipt product names to short generic names",
	}, s.handleNormalize)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ticket_history",
		Description: "List recorded tickets, most recent first",
	}, s.handleHistory)
}

// handleSync runs one sync pass and returns per-item results together with
// the progress messages emitted along the way.
func (s *Server) handleSync(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ SyncInput,
) (*mcp.CallToolResult, SyncOutput, error) {
	var (
		mu       sync.Mutex
		progress []string
	)
	report := func(msg string) {
		mu.Lock()
		defer mu.Unlock()
		progress = append(progress, msg)
		logger.Debug("mcp sync: %s", msg)
	}

	results, err := s.ports.Sync.Run(ctx, report)
	if err != nil {
		return nil, SyncOutput{}, eris.Wrap(err, "sync")
	}

	succeeded, failed := domain.CountOutcomes(results)
	if results == nil {
		results = []domain.SyncResult{}
	}
	return nil, SyncOutput{
		Results:   results,
		Succeeded: succeeded,
		Failed:    failed,
		Progress:  progress,
	}, nil
}

// handleNormalize resolves names through rules, cache and the AI model.
func (s *Server) handleNormalize(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input NormalizeInput,
) (*mcp.CallToolResult, NormalizeOutput, error) {
	if s.ports.Resolver == nil {
		return nil, NormalizeOutput{}, errUnavailable
	}

	mappings, err := s.ports.Resolver.Normalize(ctx, input.Names)
	if err != nil {
		return nil, NormalizeOutput{}, eris.Wrap(err, "normalize")
	}
	if mappings == nil {
		mappings = map[string]string{}
	}

	return nil, NormalizeOutput{Mappings: mappings, Count: len(mappings)}, nil
}

// handleHistory lists tickets from the ledger.
func (s *Server) handleHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input HistoryInput,
) (*mcp.CallToolResult, HistoryOutput, error) {
	if s.ports.Ledger == nil {
		return nil, HistoryOutput{}, errUnavailable
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	tickets, err := s.ports.Ledger.History(ctx)
	if err != nil {
		return nil, HistoryOutput{}, eris.Wrap(err, "history")
	}
	if len(tickets) > limit {
		tickets = tickets[:limit]
	}

	output := HistoryOutput{
		Tickets: make([]TicketOutput, len(tickets)),
		Count:   len(tickets),
	}
	for i, t := range tickets {
		output.Tickets[i] = TicketOutput{
			ID:    t.ID,
			Store: t.Store,
			Date:  t.Date,
			Total: t.Total.StringFixed(2),
		}
	}

	return nil, output, nil
}
