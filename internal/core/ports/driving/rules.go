package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
)

// RuleService manages user-authored normalisation rules.
type RuleService interface {
	// List returns rules in authoritative order.
	List(ctx context.Context) ([]domain.Rule, error)

	// Add appends a rule.
	Add(ctx context.Context, rule domain.Rule) error

	// Import appends rules read from YAML and returns how many were added.
	Import(ctx context.Context, r io.Reader) (int, error)

	// Export writes every rule as YAML.
	Export(ctx context.Context, w io.Writer) error
}
