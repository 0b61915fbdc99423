package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/omniticket-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
)

func seededSettingsStore(t *testing.T, rows ...[]any) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	if len(rows) > 0 {
		require.NoError(t, store.WriteRange(context.Background(), domain.SettingsRange, rows))
	}
	return store
}

func TestNewSettingsService(t *testing.T) {
	service := NewSettingsService(memory.NewStore())
	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewStore())

	settings, err := service.Get(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), *settings)
	assert.Equal(t, "OmniTicket", settings.SearchLabel)
	assert.Equal(t, "OmniTicket/Procesado", settings.ProcessedLabel)
	assert.Equal(t, "Nunca", settings.LastSync)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := seededSettingsStore(t,
		[]any{"GMAIL_SEARCH_LABEL", "Tickets"},
		[]any{"GMAIL_PROCESSED_LABEL", "Tickets/Done"},
		[]any{"GEMINI_API_KEY", "legacy-key"},
		[]any{"LAST_SYNC", "2025-01-01 09:00:00"},
	)
	service := NewSettingsService(store)

	settings, err := service.Get(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Tickets", settings.SearchLabel)
	assert.Equal(t, "Tickets/Done", settings.ProcessedLabel)
	assert.Equal(t, "legacy-key", settings.AIAPIKey)
	assert.Equal(t, "2025-01-01 09:00:00", settings.LastSync)
}

func TestSettingsService_Get_ReadError(t *testing.T) {
	store := &failingStore{
		Store:   memory.NewStore(),
		readErr: map[domain.Collection]error{domain.CollectionSettings: errors.New("401")},
	}
	service := NewSettingsService(store)

	_, err := service.Get(context.Background())
	require.Error(t, err)
}

func TestSettingsService_NoStore(t *testing.T) {
	service := NewSettingsService(nil)

	_, err := service.Get(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreNotConfigured)
}

func TestSettingsService_UpdateLastSync_OverwritesInPlace(t *testing.T) {
	ctx := context.Background()
	store := seededSettingsStore(t, domain.DefaultSettings().Rows()...)
	service := NewSettingsService(store)

	at := time.Date(2025, 6, 1, 18, 30, 0, 0, time.UTC)
	require.NoError(t, service.UpdateLastSync(ctx, at))

	rows, err := store.ReadRange(ctx, domain.SettingsRange)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []any{"LAST_SYNC", "2025-06-01 18:30:00"}, rows[3])
}

func TestSettingsService_UpdateLastSync_AppendsMissingKey(t *testing.T) {
	ctx := context.Background()
	store := seededSettingsStore(t, []any{"GMAIL_SEARCH_LABEL", "OmniTicket"})
	service := NewSettingsService(store)

	require.NoError(t, service.UpdateLastSync(ctx, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))

	settings, err := service.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01 00:00:00", settings.LastSync)
}

func TestSettingsService_SetAPIKey_ReusesLegacyRow(t *testing.T) {
	ctx := context.Background()
	store := seededSettingsStore(t,
		[]any{"GMAIL_SEARCH_LABEL", "OmniTicket"},
		[]any{"GMAIL_PROCESSED_LABEL", "OmniTicket/Procesado"},
		[]any{"GEMINI_API_KEY", ""},
		[]any{"LAST_SYNC", "Nunca"},
	)
	service := NewSettingsService(store)

	require.NoError(t, service.SetAPIKey(ctx, "  sk-new  "))

	rows, err := store.ReadRange(ctx, domain.SettingsRange)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []any{"GEMINI_API_KEY", "sk-new"}, rows[2])

	settings, err := service.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sk-new", settings.AIAPIKey)
}

func TestSettingsService_SetLabels(t *testing.T) {
	ctx := context.Background()
	service := NewSettingsService(seededSettingsStore(t, domain.DefaultSettings().Rows()...))

	require.NoError(t, service.SetLabels(ctx, "Receipts", "Receipts/Done"))

	settings, err := service.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Receipts", settings.SearchLabel)
	assert.Equal(t, "Receipts/Done", settings.ProcessedLabel)
	assert.Equal(t, "label:Receipts -label:Receipts/Done", settings.PendingQuery())
}

func TestSettingsService_SetLabels_Invalid(t *testing.T) {
	service := NewSettingsService(memory.NewStore())

	assert.ErrorIs(t, service.SetLabels(context.Background(), "", "x"), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.SetLabels(context.Background(), "same", "same"), domain.ErrInvalidInput)
}

func TestSettingsService_SettingsBlockFull(t *testing.T) {
	store := seededSettingsStore(t,
		[]any{"A", "1"}, []any{"B", "2"}, []any{"C", "3"}, []any{"D", "4"}, []any{"E", "5"},
	)
	service := NewSettingsService(store)

	err := service.UpdateLastSync(context.Background(), time.Now())
	require.Error(t, err)
}
