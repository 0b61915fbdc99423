package mcp

import (
	"context"
	"io"
	"time"

	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driving"
)

// mockSyncOrchestrator is a mock implementation of driving.SyncOrchestrator.
type mockSyncOrchestrator struct {
	progress []string
	results  []domain.SyncResult
	err      error
}

func (m *mockSyncOrchestrator) Run(_ context.Context, progress driving.ProgressFunc) ([]domain.SyncResult, error) {
	for _, msg := range m.progress {
		progress.Report(msg)
	}
	return m.results, m.err
}

func (m *mockSyncOrchestrator) Status(_ context.Context) (*driving.SyncStatus, error) {
	return &driving.SyncStatus{}, nil
}

// mockResolver is a mock implementation of driving.NameResolver.
type mockResolver struct {
	names    []string
	mappings map[string]string
	err      error
}

func (m *mockResolver) Resolve(
	_ context.Context,
	_ []string,
	_ []domain.Rule,
	_ map[string]string,
) (map[string]string, error) {
	return m.mappings, m.err
}

func (m *mockResolver) Normalize(_ context.Context, names []string) (map[string]string, error) {
	m.names = names
	return m.mappings, m.err
}

// mockLedgerService is a mock implementation of driving.LedgerService.
type mockLedgerService struct {
	tickets []domain.HistoryTicket
	err     error
}

func (m *mockLedgerService) History(_ context.Context) ([]domain.HistoryTicket, error) {
	return m.tickets, m.err
}

func (m *mockLedgerService) Insights(_ context.Context, _, _ time.Time, _ domain.Lens) (*domain.Insights, error) {
	return nil, m.err
}

func (m *mockLedgerService) Export(_ context.Context, _ io.Writer) error {
	return m.err
}

// mockRuleService is a mock implementation of driving.RuleService.
type mockRuleService struct {
	rules []domain.Rule
	err   error
}

func (m *mockRuleService) List(_ context.Context) ([]domain.Rule, error) {
	return m.rules, m.err
}

func (m *mockRuleService) Add(_ context.Context, _ domain.Rule) error {
	return m.err
}

func (m *mockRuleService) Import(_ context.Context, _ io.Reader) (int, error) {
	return 0, m.err
}

func (m *mockRuleService) Export(_ context.Context, _ io.Writer) error {
	return m.err
}
