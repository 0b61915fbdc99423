package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
)

// SettingsService reads and updates the remote Settings collection.
type SettingsService interface {
	// Get returns the stored settings with defaults applied.
	Get(ctx context.Context) (*domain.Settings, error)

	// UpdateLastSync records the time of the last completed run.
	UpdateLastSync(ctx context.Context, at time.Time) error

	// SetAPIKey stores the AI model key.
	SetAPIKey(ctx context.Context, key string) error

	// SetLabels stores the search and processed labels.
	SetLabels(ctx context.Context, search, processed string) error
}
