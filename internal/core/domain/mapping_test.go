package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMappingFromCells(t *testing.T) {
	m, ok := MappingFromCells([]any{"LCHE ENT", "Leche entera"})
	require.True(t, ok)
	assert.Equal(t, NameMapping{Original: "LCHE ENT", Simplified: "Leche entera"}, m)
	assert.Equal(t, []any{"LCHE ENT", "Leche entera"}, m.Cells())

	_, ok = MappingFromCells([]any{"only one"})
	assert.False(t, ok)
}

func TestMappingIndex_FirstWins(t *testing.T) {
	index := MappingIndex([]NameMapping{
		{Original: "PAN", Simplified: "Pan"},
		{Original: " PAN ", Simplified: "Barra de pan"},
		{Original: "", Simplified: "ignored"},
		{Original: "AGUA", Simplified: "Agua"},
	})

	assert.Equal(t, map[string]string{"PAN": "Pan", "AGUA": "Agua"}, index)
}
