package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driven"
	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// LastSyncLayout formats the LAST_SYNC setting.
const LastSyncLayout = "2006-01-02 15:04:05"

// SettingsService manages the key/value Settings collection of the store.
type SettingsService struct {
	store driven.Store
}

// NewSettingsService creates a new settings service.
func NewSettingsService(store driven.Store) *SettingsService {
	return &SettingsService{store: store}
}

// Get retrieves the stored settings with defaults applied.
func (s *SettingsService) Get(ctx context.Context) (*domain.Settings, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return nil, err
	}
	settings := domain.SettingsFromRows(rows)
	return &settings, nil
}

// UpdateLastSync records when the last run finished.
func (s *SettingsService) UpdateLastSync(ctx context.Context, at time.Time) error {
	return s.set(ctx, at.Format(LastSyncLayout), domain.SettingLastSync)
}

// SetAPIKey stores the AI model key. An existing legacy key row is
// overwritten in place.
func (s *SettingsService) SetAPIKey(ctx context.Context, key string) error {
	return s.set(ctx, strings.TrimSpace(key), domain.SettingAIAPIKey, domain.SettingLegacyAPIKey)
}

// SetLabels stores the search and processed labels.
func (s *SettingsService) SetLabels(ctx context.Context, search, processed string) error {
	search = strings.TrimSpace(search)
	processed = strings.TrimSpace(processed)
	if search == "" || processed == "" {
		return fmt.Errorf("%w: labels must not be empty", domain.ErrInvalidInput)
	}
	if search == processed {
		return fmt.Errorf("%w: search and processed labels must differ", domain.ErrInvalidInput)
	}
	if err := s.set(ctx, search, domain.SettingSearchLabel); err != nil {
		return err
	}
	return s.set(ctx, processed, domain.SettingProcessedLabel)
}

func (s *SettingsService) rows(ctx context.Context) ([][]any, error) {
	if s.store == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	rows, err := s.store.ReadRange(ctx, domain.SettingsRange)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	return rows, nil
}

// set writes value next to the first key found. When no key row exists, a
// new row for keys[0] is written below the last one.
func (s *SettingsService) set(ctx context.Context, value string, keys ...string) error {
	rows, err := s.rows(ctx)
	if err != nil {
		return err
	}

	row := domain.SettingRow(rows, keys...)
	if row > 0 {
		rng := domain.Range{
			Collection: domain.CollectionSettings,
			FromRow:    row,
			ToRow:      row,
			StartCol:   1,
			Columns:    1,
		}
		if err := s.store.WriteRange(ctx, rng, [][]any{{value}}); err != nil {
			return fmt.Errorf("write setting %s: %w", keys[0], err)
		}
		return nil
	}

	row = len(rows) + 1
	if !domain.SettingsRange.Contains(row) {
		return fmt.Errorf("write setting %s: settings block is full", keys[0])
	}
	rng := domain.Range{
		Collection: domain.CollectionSettings,
		FromRow:    row,
		ToRow:      row,
		Columns:    2,
	}
	if err := s.store.WriteRange(ctx, rng, [][]any{{keys[0], value}}); err != nil {
		return fmt.Errorf("write setting %s: %w", keys[0], err)
	}
	return nil
}
