package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driven"
	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driving"
	"github.com/custodia-labs/omniticket-cli/internal/logger"
)

// Ensure NameResolver implements the interface.
var _ driving.NameResolver = (*NameResolver)(nil)

// DefaultResolveBatchSize bounds how many names one call sends to the model.
const DefaultResolveBatchSize = 30

const normalizeSystem = `You normalise supermarket product names.
Answer with JSON only.`

const normalizePrompt = `Normalise these supermarket products to short generic names (at most 3 words).
Return one entry per product, keeping "original" exactly as given.

List:
%s`

// normalizeSchema describes the ordered pairs the model must return.
const normalizeSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "original": {"type": "string"},
      "simplificado": {"type": "string"}
    },
    "required": ["original", "simplificado"]
  }
}`

// NameResolver maps raw product names through rules, the learned cache and,
// as a last resort, the AI model.
type NameResolver struct {
	model     driven.Model
	store     driven.Store
	metrics   driven.Metrics
	batchSize int
}

// NewNameResolver creates a resolver. A batchSize below one uses
// DefaultResolveBatchSize. metrics may be nil.
func NewNameResolver(model driven.Model, store driven.Store, metrics driven.Metrics, batchSize int) *NameResolver {
	if batchSize < 1 {
		batchSize = DefaultResolveBatchSize
	}
	return &NameResolver{
		model:     model,
		store:     store,
		metrics:   metrics,
		batchSize: batchSize,
	}
}

// Normalize loads rules and the cache from the store and resolves names.
func (r *NameResolver) Normalize(ctx context.Context, names []string) (map[string]string, error) {
	if r.store == nil {
		return nil, domain.ErrStoreNotConfigured
	}

	rules, err := loadRules(ctx, r.store)
	if err != nil {
		return nil, err
	}
	mappings, err := loadMappings(ctx, r.store)
	if err != nil {
		return nil, err
	}

	return r.Resolve(ctx, names, rules, domain.MappingIndex(mappings))
}

// Resolve builds the original -> simplified mapping for names.
//
// Names matched by a rule are left out; callers substitute the rule's name
// and category at use time. Cache hits are copied in. Everything else is
// queued, and only the first batchSize queued names are sent to the model;
// the rest stay unresolved until a later call. Learned pairs are appended to
// the persisted cache before they are returned.
//
// A model or parse failure aborts the whole call and discards the rule and
// cache results.
func (r *NameResolver) Resolve(
	ctx context.Context,
	names []string,
	rules []domain.Rule,
	cache map[string]string,
) (map[string]string, error) {
	result := make(map[string]string)
	seen := make(map[string]struct{}, len(names))
	var pending []string

	for _, name := range names {
		n := strings.TrimSpace(name)
		if n == "" || domain.IsTotalMarker(n) {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}

		// 1. Rule tier
		if _, ok := domain.FirstMatch(rules, n); ok {
			continue
		}

		// 2. Cache tier
		if simplified, ok := cache[n]; ok {
			if !domain.IsTotalMarker(simplified) {
				result[n] = simplified
			}
			continue
		}

		// 3. AI tier
		pending = append(pending, n)
	}

	if len(pending) == 0 {
		return result, nil
	}

	batch := pending
	if len(batch) > r.batchSize {
		logger.Debug("Resolver: %d names pending, sending first %d", len(pending), r.batchSize)
		batch = batch[:r.batchSize]
	}

	learned, err := r.infer(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("resolve names: %w", err)
	}

	if err := r.remember(ctx, learned); err != nil {
		return nil, fmt.Errorf("resolve names: %w", err)
	}

	if r.metrics != nil {
		r.metrics.ResolveBatch(len(batch), len(learned))
	}

	for _, m := range learned {
		result[m.Original] = m.Simplified
	}
	return result, nil
}

// infer sends one batch to the model and parses its answer.
func (r *NameResolver) infer(ctx context.Context, batch []string) ([]domain.NameMapping, error) {
	if r.model == nil {
		return nil, domain.ErrModelUnavailable
	}

	raw, err := r.model.Infer(ctx, driven.InferRequest{
		System: normalizeSystem,
		Prompt: fmt.Sprintf(normalizePrompt, strings.Join(batch, "\n")),
		Schema: normalizeSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("infer: %w", err)
	}

	return parseMappings(raw)
}

// remember appends learned pairs to the persisted cache by rewriting the
// whole cache collection.
func (r *NameResolver) remember(ctx context.Context, learned []domain.NameMapping) error {
	if len(learned) == 0 {
		return nil
	}
	if r.store == nil {
		return domain.ErrStoreNotConfigured
	}

	existing, err := r.store.ReadRange(ctx, domain.MappingsRange)
	if err != nil {
		return fmt.Errorf("read mapping cache: %w", err)
	}

	rows := make([][]any, 0, len(existing)+len(learned))
	rows = append(rows, existing...)
	for _, m := range learned {
		rows = append(rows, m.Cells())
	}

	if err := r.store.WriteRange(ctx, domain.MappingsRange, rows); err != nil {
		return fmt.Errorf("write mapping cache: %w", err)
	}
	logger.Debug("Resolver: cached %d new mappings", len(learned))
	return nil
}

// parseMappings reads the model's ordered pairs. Both fields are coerced to
// text; pairs touching the total marker are dropped.
func parseMappings(raw string) ([]domain.NameMapping, error) {
	var entries []any
	if err := decodeJSON([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedModelOutput, err)
	}

	mappings := make([]domain.NameMapping, 0, len(entries))
	for i, entry := range entries {
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d is %s, not an object", domain.ErrMalformedModelOutput, i, jsonKind(entry))
		}
		simplified, _ := lookup(obj, []string{"simplificado", "simplified"})
		m := domain.NameMapping{
			Original:   strings.TrimSpace(domain.Stringify(obj["original"])),
			Simplified: strings.TrimSpace(domain.Stringify(simplified)),
		}
		if m.Original == "" || domain.IsTotalMarker(m.Original) || domain.IsTotalMarker(m.Simplified) {
			continue
		}
		mappings = append(mappings, m)
	}
	return mappings, nil
}

func loadRules(ctx context.Context, store driven.Store) ([]domain.Rule, error) {
	rows, err := store.ReadRange(ctx, domain.RulesDataRange)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	rules := make([]domain.Rule, 0, len(rows))
	for _, row := range rows {
		rule := domain.RuleFromCells(row)
		if rule.Pattern == "" && rule.Normalized == "" {
			continue
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func loadMappings(ctx context.Context, store driven.Store) ([]domain.NameMapping, error) {
	rows, err := store.ReadRange(ctx, domain.MappingsRange)
	if err != nil {
		return nil, fmt.Errorf("read mapping cache: %w", err)
	}
	mappings := make([]domain.NameMapping, 0, len(rows))
	for _, row := range rows {
		if m, ok := domain.MappingFromCells(row); ok {
			mappings = append(mappings, m)
		}
	}
	return mappings, nil
}
