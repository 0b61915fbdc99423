package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driven"
	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driving"
)

// mockSyncOrchestrator implements driving.SyncOrchestrator for testing.
type mockSyncOrchestrator struct {
	steps   []string
	results []domain.SyncResult
	err     error
}

func (m *mockSyncOrchestrator) Run(_ context.Context, progress driving.ProgressFunc) ([]domain.SyncResult, error) {
	for _, s := range m.steps {
		progress.Report(s)
	}
	return m.results, m.err
}

func (m *mockSyncOrchestrator) Status(_ context.Context) (*driving.SyncStatus, error) {
	return &driving.SyncStatus{}, nil
}

// mockResolver implements driving.NameResolver for testing.
type mockResolver struct {
	mapping map[string]string
	err     error
	got     []string
}

func (m *mockResolver) Resolve(_ context.Context, names []string, _ []domain.Rule, _ map[string]string) (map[string]string, error) {
	m.got = names
	return m.mapping, m.err
}

func (m *mockResolver) Normalize(ctx context.Context, names []string) (map[string]string, error) {
	return m.Resolve(ctx, names, nil, nil)
}

// mockRuleService implements driving.RuleService for testing.
type mockRuleService struct {
	rules    []domain.Rule
	imported string
	err      error
}

func (m *mockRuleService) List(_ context.Context) ([]domain.Rule, error) {
	return m.rules, m.err
}

func (m *mockRuleService) Add(_ context.Context, rule domain.Rule) error {
	if m.err != nil {
		return m.err
	}
	m.rules = append(m.rules, rule)
	return nil
}

func (m *mockRuleService) Import(_ context.Context, r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	m.imported = string(data)
	return strings.Count(m.imported, "pattern:"), m.err
}

func (m *mockRuleService) Export(_ context.Context, w io.Writer) error {
	if m.err != nil {
		return m.err
	}
	for _, r := range m.rules {
		if _, err := io.WriteString(w, "- pattern: "+r.Pattern+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// mockLedgerService implements driving.LedgerService for testing.
type mockLedgerService struct {
	tickets  []domain.HistoryTicket
	insights *domain.Insights
	err      error

	from, to time.Time
	lens     domain.Lens
}

func (m *mockLedgerService) History(_ context.Context) ([]domain.HistoryTicket, error) {
	return m.tickets, m.err
}

func (m *mockLedgerService) Insights(_ context.Context, from, to time.Time, lens domain.Lens) (*domain.Insights, error) {
	m.from, m.to, m.lens = from, to, lens
	if m.err != nil {
		return nil, m.err
	}
	return m.insights, nil
}

func (m *mockLedgerService) Export(_ context.Context, w io.Writer) error {
	if m.err != nil {
		return m.err
	}
	_, err := io.WriteString(w, "xlsx")
	return err
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings domain.Settings
	err      error
}

func (m *mockSettingsService) Get(_ context.Context) (*domain.Settings, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) UpdateLastSync(_ context.Context, at time.Time) error {
	m.settings.LastSync = at.Format("2006-01-02 15:04:05")
	return m.err
}

func (m *mockSettingsService) SetAPIKey(_ context.Context, key string) error {
	m.settings.AIAPIKey = key
	return m.err
}

func (m *mockSettingsService) SetLabels(_ context.Context, search, processed string) error {
	m.settings.SearchLabel = search
	m.settings.ProcessedLabel = processed
	return m.err
}

// mockProvisioner implements driven.Provisioner for testing.
type mockProvisioner struct {
	id      string
	created bool
	err     error
	title   string
}

func (m *mockProvisioner) Ensure(_ context.Context, title string) (string, bool, error) {
	m.title = title
	return m.id, m.created, m.err
}

// mockSessionStore implements driven.SessionStore for testing.
type mockSessionStore struct {
	session *driven.Session
	saves   int
}

func (m *mockSessionStore) Load() (*driven.Session, error) {
	return m.session, nil
}

func (m *mockSessionStore) Save(session *driven.Session) error {
	m.session = session
	m.saves++
	return nil
}

// testServices holds the fakes installed by setupTestServices.
type testServices struct {
	sync        *mockSyncOrchestrator
	resolver    *mockResolver
	rules       *mockRuleService
	ledger      *mockLedgerService
	settings    *mockSettingsService
	provisioner *mockProvisioner
	session     *mockSessionStore
}

// setupTestServices installs fresh fakes and restores the previous
// services when the test ends.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	saved := Services{
		Sync:             syncOrchestrator,
		Resolver:         nameResolver,
		Rules:            ruleService,
		Ledger:           ledgerService,
		Settings:         settingsService,
		Provisioner:      provisioner,
		Session:          sessionStore,
		Scheduler:        scheduler,
		SchedulerEnabled: schedulerEnabled,
		Metrics:          metricsHandler,
		MetricsAddr:      metricsAddr,
	}
	savedTitle := ledgerTitle
	t.Cleanup(func() {
		restoreServices(saved)
		ledgerTitle = savedTitle
	})

	ts := &testServices{
		sync:     &mockSyncOrchestrator{},
		resolver: &mockResolver{},
		rules:    &mockRuleService{},
		ledger:   &mockLedgerService{},
		settings: &mockSettingsService{settings: domain.DefaultSettings()},
		provisioner: &mockProvisioner{
			id: "sheet-123",
		},
		session: &mockSessionStore{},
	}
	SetServices(&Services{
		Sync:        ts.sync,
		Resolver:    ts.resolver,
		Rules:       ts.rules,
		Ledger:      ts.ledger,
		Settings:    ts.settings,
		Provisioner: ts.provisioner,
		Session:     ts.session,
	})
	return ts
}

// restoreServices assigns every service, including nil ones.
func restoreServices(s Services) {
	syncOrchestrator = s.Sync
	nameResolver = s.Resolver
	ruleService = s.Rules
	ledgerService = s.Ledger
	settingsService = s.Settings
	provisioner = s.Provisioner
	sessionStore = s.Session
	scheduler = s.Scheduler
	schedulerEnabled = s.SchedulerEnabled
	metricsHandler = s.Metrics
	metricsAddr = s.MetricsAddr
}

// clearServices unsets every service for the duration of the test.
func clearServices(t *testing.T) {
	t.Helper()
	setupTestServices(t)
	restoreServices(Services{})
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default between runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

var errBoom = errors.New("boom")

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
