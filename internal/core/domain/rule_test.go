package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRule_Matches(t *testing.T) {
	rule := Rule{Pattern: "coca", Normalized: "Coca-Cola", Category: "Bebidas"}

	assert.True(t, rule.Matches("COCA COLA ZERO 2L"))
	assert.True(t, rule.Matches("pack coca-cola"))
	assert.False(t, rule.Matches("PEPSI"))

	assert.True(t, Rule{Pattern: "LÁCTEO"}.Matches("yogur lácteo"))
	assert.False(t, Rule{Pattern: "  "}.Matches("anything"))
}

func TestFirstMatch(t *testing.T) {
	rules := []Rule{
		{Pattern: "leche sin", Normalized: "Leche sin lactosa", Category: "Lácteos"},
		{Pattern: "leche", Normalized: "Leche", Category: "Lácteos"},
	}

	got, ok := FirstMatch(rules, "LECHE SIN LACTOSA 1L")
	assert.True(t, ok)
	assert.Equal(t, "Leche sin lactosa", got.Normalized)

	got, ok = FirstMatch(rules, "LECHE ENTERA")
	assert.True(t, ok)
	assert.Equal(t, "Leche", got.Normalized)

	_, ok = FirstMatch(rules, "PAN")
	assert.False(t, ok)
}

func TestRuleCells(t *testing.T) {
	rule := Rule{Pattern: "coca", Normalized: "Coca-Cola", Category: "Bebidas"}
	assert.Equal(t, rule, RuleFromCells(rule.Cells()))
	assert.Equal(t, Rule{Pattern: "x"}, RuleFromCells([]any{" x "}))
}
