package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
)

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	if ports.Sync == nil {
		ports.Sync = &mockSyncOrchestrator{}
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleSync(t *testing.T) {
	ctx := context.Background()

	t.Run("returns results and progress", func(t *testing.T) {
		orch := &mockSyncOrchestrator{
			progress: []string{"Searching the mailbox for new tickets...", "Done"},
			results: []domain.SyncResult{
				{SourceID: "m1", TicketID: "t1", Outcome: domain.OutcomeSuccess},
				{SourceID: "m2", Outcome: domain.OutcomeError, Error: "MISSING_STORE"},
			},
		}
		server := newTestServer(t, &Ports{Sync: orch})

		_, output, err := server.handleSync(ctx, nil, SyncInput{})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Succeeded)
		assert.Equal(t, 1, output.Failed)
		assert.Len(t, output.Results, 2)
		assert.Equal(t, []string{"Searching the mailbox for new tickets...", "Done"}, output.Progress)
	})

	t.Run("empty run returns empty results", func(t *testing.T) {
		server := newTestServer(t, &Ports{Sync: &mockSyncOrchestrator{}})

		_, output, err := server.handleSync(ctx, nil, SyncInput{})

		require.NoError(t, err)
		assert.NotNil(t, output.Results)
		assert.Empty(t, output.Results)
	})

	t.Run("fatal error is returned", func(t *testing.T) {
		orch := &mockSyncOrchestrator{err: domain.ErrAuthInvalid}
		server := newTestServer(t, &Ports{Sync: orch})

		_, _, err := server.handleSync(ctx, nil, SyncInput{})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrAuthInvalid)
	})
}

func TestServer_handleNormalize(t *testing.T) {
	ctx := context.Background()

	t.Run("returns mappings", func(t *testing.T) {
		resolver := &mockResolver{mappings: map[string]string{"LECHE ENT. 1L": "Leche"}}
		server := newTestServer(t, &Ports{Resolver: resolver})

		_, output, err := server.handleNormalize(ctx, nil, NormalizeInput{Names: []string{"LECHE ENT. 1L"}})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		assert.Equal(t, "Leche", output.Mappings["LECHE ENT. 1L"])
		assert.Equal(t, []string{"LECHE ENT. 1L"}, resolver.names)
	})

	t.Run("resolver failure", func(t *testing.T) {
		resolver := &mockResolver{err: domain.ErrModelUnavailable}
		server := newTestServer(t, &Ports{Resolver: resolver})

		_, _, err := server.handleNormalize(ctx, nil, NormalizeInput{Names: []string{"x"}})

		assert.ErrorIs(t, err, domain.ErrModelUnavailable)
	})

	t.Run("missing resolver", func(t *testing.T) {
		server := newTestServer(t, &Ports{})

		_, _, err := server.handleNormalize(ctx, nil, NormalizeInput{})

		assert.ErrorIs(t, err, errUnavailable)
	})
}

func TestServer_handleHistory(t *testing.T) {
	ctx := context.Background()
	tickets := []domain.HistoryTicket{
		{ID: "t2", Store: "Lidl", Date: "2025-03-02", Total: decimal.RequireFromString("12.5")},
		{ID: "t1", Store: "Mercadona", Date: "2025-03-01", Total: decimal.RequireFromString("3")},
	}

	t.Run("formats totals", func(t *testing.T) {
		server := newTestServer(t, &Ports{Ledger: &mockLedgerService{tickets: tickets}})

		_, output, err := server.handleHistory(ctx, nil, HistoryInput{})

		require.NoError(t, err)
		require.Equal(t, 2, output.Count)
		assert.Equal(t, TicketOutput{ID: "t2", Store: "Lidl", Date: "2025-03-02", Total: "12.50"}, output.Tickets[0])
		assert.Equal(t, "3.00", output.Tickets[1].Total)
	})

	t.Run("applies limit", func(t *testing.T) {
		server := newTestServer(t, &Ports{Ledger: &mockLedgerService{tickets: tickets}})

		_, output, err := server.handleHistory(ctx, nil, HistoryInput{Limit: 1})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		assert.Equal(t, "t2", output.Tickets[0].ID)
	})

	t.Run("ledger failure", func(t *testing.T) {
		server := newTestServer(t, &Ports{Ledger: &mockLedgerService{err: errors.New("sheet gone")}})

		_, _, err := server.handleHistory(ctx, nil, HistoryInput{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "sheet gone")
	})
}
