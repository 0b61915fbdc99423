package driving

import (
	"context"

	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
)

// NameResolver maps raw product names to short generic names.
type NameResolver interface {
	// Resolve applies rules, then the cache, then one bounded AI batch.
	// Names matched by a rule are left out of the result; callers apply the
	// rule themselves. Any AI failure aborts the call with no mapping.
	Resolve(ctx context.Context, names []string, rules []domain.Rule, cache map[string]string) (map[string]string, error)

	// Normalize loads rules and cache from the store and calls Resolve.
	Normalize(ctx context.Context, names []string) (map[string]string, error)
}
