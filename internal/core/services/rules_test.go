package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/omniticket-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
)

func newRulesStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.AppendRows(context.Background(), domain.RulesAppendRange, [][]any{domain.RulesHeader}))
	return store
}

func TestRuleService_AddAndList(t *testing.T) {
	ctx := context.Background()
	service := NewRuleService(newRulesStore(t))

	require.NoError(t, service.Add(ctx, domain.Rule{Pattern: " coca ", Normalized: "Coca-Cola", Category: "Bebidas"}))
	require.NoError(t, service.Add(ctx, domain.Rule{Pattern: "pan", Normalized: "Pan"}))

	rules, err := service.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Rule{
		{Pattern: "coca", Normalized: "Coca-Cola", Category: "Bebidas"},
		{Pattern: "pan", Normalized: "Pan", Category: domain.DefaultCategory},
	}, rules)
}

func TestRuleService_Add_Invalid(t *testing.T) {
	service := NewRuleService(newRulesStore(t))

	assert.ErrorIs(t, service.Add(context.Background(), domain.Rule{Normalized: "x"}), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.Add(context.Background(), domain.Rule{Pattern: "x"}), domain.ErrInvalidInput)
}

func TestRuleService_Import(t *testing.T) {
	ctx := context.Background()
	service := NewRuleService(newRulesStore(t))

	doc := `
- pattern: leche
  normalized: Leche
  category: Lácteos
- pattern: detergente
  normalized: Detergente
`
	n, err := service.Import(ctx, strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rules, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "leche", rules[0].Pattern)
	assert.Equal(t, domain.DefaultCategory, rules[1].Category)
}

func TestRuleService_Import_RejectsWholeFileOnInvalidRule(t *testing.T) {
	ctx := context.Background()
	service := NewRuleService(newRulesStore(t))

	doc := `
- pattern: leche
  normalized: Leche
- pattern: ""
  normalized: Nada
`
	n, err := service.Import(ctx, strings.NewReader(doc))
	require.Error(t, err)
	assert.Zero(t, n)

	rules, err := service.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestRuleService_Import_Empty(t *testing.T) {
	n, err := NewRuleService(newRulesStore(t)).Import(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRuleService_Import_NotYAMLList(t *testing.T) {
	_, err := NewRuleService(newRulesStore(t)).Import(context.Background(), strings.NewReader("pattern: x"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRuleService_ExportRoundTrip(t *testing.T) {
	ctx := context.Background()
	source := NewRuleService(newRulesStore(t))
	require.NoError(t, source.Add(ctx, domain.Rule{Pattern: "coca", Normalized: "Coca-Cola", Category: "Bebidas"}))

	var buf bytes.Buffer
	require.NoError(t, source.Export(ctx, &buf))
	assert.Contains(t, buf.String(), "pattern: coca")

	target := NewRuleService(newRulesStore(t))
	n, err := target.Import(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRuleService_NoStore(t *testing.T) {
	service := NewRuleService(nil)

	_, err := service.List(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreNotConfigured)
	assert.ErrorIs(t, service.Add(context.Background(), domain.Rule{Pattern: "a", Normalized: "b"}), domain.ErrStoreNotConfigured)
}
