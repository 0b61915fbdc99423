package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountOutcomes(t *testing.T) {
	results := []SyncResult{
		{SourceID: "a", Outcome: OutcomeSuccess},
		{SourceID: "b", Outcome: OutcomeError, Error: "boom"},
		{SourceID: "c", Outcome: OutcomeSuccess},
	}
	ok, failed := CountOutcomes(results)
	assert.Equal(t, 2, ok)
	assert.Equal(t, 1, failed)

	ok, failed = CountOutcomes(nil)
	assert.Zero(t, ok)
	assert.Zero(t, failed)
}

func TestSyncResult_JSON(t *testing.T) {
	data, err := json.Marshal(SyncResult{SourceID: "m1", Outcome: OutcomeSuccess})
	require.NoError(t, err)
	assert.JSONEq(t, `{"source_id":"m1","outcome":"success"}`, string(data))
}

func TestLens_IsValid(t *testing.T) {
	assert.True(t, LensProducts.IsValid())
	assert.True(t, LensCategories.IsValid())
	assert.True(t, LensStores.IsValid())
	assert.False(t, Lens("brands").IsValid())
	assert.False(t, Lens("").IsValid())
}
