package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driven"
	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driving"
)

// Ensure RuleService implements the interface.
var _ driving.RuleService = (*RuleService)(nil)

// RuleService manages user-authored normalisation rules.
type RuleService struct {
	store driven.Store
}

// NewRuleService creates a new rule service.
func NewRuleService(store driven.Store) *RuleService {
	return &RuleService{store: store}
}

// List returns the rules in authoritative order.
func (s *RuleService) List(ctx context.Context) ([]domain.Rule, error) {
	if s.store == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	return loadRules(ctx, s.store)
}

// Add appends a single rule.
func (s *RuleService) Add(ctx context.Context, rule domain.Rule) error {
	rule, err := cleanRule(rule)
	if err != nil {
		return err
	}
	return s.append(ctx, []domain.Rule{rule})
}

// Import appends every rule in a YAML list, in document order. Nothing is
// written when any rule is invalid.
func (s *RuleService) Import(ctx context.Context, r io.Reader) (int, error) {
	var rules []domain.Rule
	if err := yaml.NewDecoder(r).Decode(&rules); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: decode rules: %v", domain.ErrInvalidInput, err)
	}

	for i := range rules {
		clean, err := cleanRule(rules[i])
		if err != nil {
			return 0, fmt.Errorf("rule %d: %w", i+1, err)
		}
		rules[i] = clean
	}

	if len(rules) == 0 {
		return 0, nil
	}
	if err := s.append(ctx, rules); err != nil {
		return 0, err
	}
	return len(rules), nil
}

// Export writes the rules as a YAML list.
func (s *RuleService) Export(ctx context.Context, w io.Writer) error {
	rules, err := s.List(ctx)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rules); err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}
	return enc.Close()
}

func (s *RuleService) append(ctx context.Context, rules []domain.Rule) error {
	if s.store == nil {
		return domain.ErrStoreNotConfigured
	}
	rows := make([][]any, len(rules))
	for i, r := range rules {
		rows[i] = r.Cells()
	}
	if err := s.store.AppendRows(ctx, domain.RulesAppendRange, rows); err != nil {
		return fmt.Errorf("append rules: %w", err)
	}
	return nil
}

func cleanRule(rule domain.Rule) (domain.Rule, error) {
	rule.Pattern = strings.TrimSpace(rule.Pattern)
	rule.Normalized = strings.TrimSpace(rule.Normalized)
	rule.Category = strings.TrimSpace(rule.Category)

	if rule.Pattern == "" {
		return rule, fmt.Errorf("%w: pattern is required", domain.ErrInvalidInput)
	}
	if rule.Normalized == "" {
		return rule, fmt.Errorf("%w: normalized name is required", domain.ErrInvalidInput)
	}
	if rule.Category == "" {
		rule.Category = domain.DefaultCategory
	}
	return rule, nil
}
