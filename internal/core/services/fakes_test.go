package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driven"
)

// --- Fakes shared by the service tests ---

// fakeMailbox implements driven.Mailbox over a fixed set of items.
type fakeMailbox struct {
	mu        sync.Mutex
	ids       []string
	content   map[string]string
	searchErr error
	fetchErr  map[string]error
	labelErr  map[string]error
	queries   []string
	labelled  map[string][]string
}

func newFakeMailbox(ids ...string) *fakeMailbox {
	content := make(map[string]string, len(ids))
	for _, id := range ids {
		content[id] = "receipt " + id
	}
	return &fakeMailbox{
		ids:      ids,
		content:  content,
		fetchErr: make(map[string]error),
		labelErr: make(map[string]error),
		labelled: make(map[string][]string),
	}
}

func (m *fakeMailbox) Search(_ context.Context, query string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return append([]string(nil), m.ids...), nil
}

func (m *fakeMailbox) FetchContent(_ context.Context, id string) (string, error) {
	if err := m.fetchErr[id]; err != nil {
		return "", err
	}
	return m.content[id], nil
}

func (m *fakeMailbox) ApplyLabel(_ context.Context, id, label string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.labelErr[id]; err != nil {
		return err
	}
	m.labelled[id] = append(m.labelled[id], label)
	return nil
}

// fakeModel implements driven.Model with a programmable answer.
type fakeModel struct {
	mu       sync.Mutex
	requests []driven.InferRequest
	answer   func(req driven.InferRequest) (string, error)
}

func (m *fakeModel) Infer(_ context.Context, req driven.InferRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.answer == nil {
		return "", errors.New("no answer configured")
	}
	return m.answer(req)
}

func (m *fakeModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// promptList returns the names listed after "List:" in a normalisation
// prompt.
func promptList(prompt string) []string {
	_, list, ok := strings.Cut(prompt, "List:\n")
	if !ok {
		return nil
	}
	return strings.Split(list, "\n")
}

// echoMappings answers a normalisation prompt with "<name> (simple)".
func echoMappings(req driven.InferRequest) (string, error) {
	var parts []string
	for _, n := range promptList(req.Prompt) {
		parts = append(parts, fmt.Sprintf(`{"original":%q,"simplificado":%q}`, n, n+" (simple)"))
	}
	return "[" + strings.Join(parts, ",") + "]", nil
}

// failingStore wraps a driven.Store and fails selected operations.
type failingStore struct {
	driven.Store
	appendErr error
	readErr   map[domain.Collection]error
	writeErr  map[domain.Collection]error
	appends   int
}

func (s *failingStore) AppendRows(ctx context.Context, rng domain.Range, rows [][]any) error {
	s.appends++
	if s.appendErr != nil {
		return s.appendErr
	}
	return s.Store.AppendRows(ctx, rng, rows)
}

func (s *failingStore) ReadRange(ctx context.Context, rng domain.Range) ([][]any, error) {
	if err := s.readErr[rng.Collection]; err != nil {
		return nil, err
	}
	return s.Store.ReadRange(ctx, rng)
}

func (s *failingStore) WriteRange(ctx context.Context, rng domain.Range, rows [][]any) error {
	if err := s.writeErr[rng.Collection]; err != nil {
		return err
	}
	return s.Store.WriteRange(ctx, rng, rows)
}

// recordingMetrics implements driven.Metrics.
type recordingMetrics struct {
	mu      sync.Mutex
	items   map[domain.SyncOutcome]int
	runs    int
	failed  int
	sent    int
	learned int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{items: make(map[domain.SyncOutcome]int)}
}

func (m *recordingMetrics) SyncItem(outcome domain.SyncOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[outcome]++
}

func (m *recordingMetrics) SyncRun(failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs++
	if failed {
		m.failed++
	}
}

func (m *recordingMetrics) ResolveBatch(sent, learned int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent += sent
	m.learned += learned
}

var (
	_ driven.Mailbox = (*fakeMailbox)(nil)
	_ driven.Model   = (*fakeModel)(nil)
	_ driven.Store   = (*failingStore)(nil)
	_ driven.Metrics = (*recordingMetrics)(nil)
)
