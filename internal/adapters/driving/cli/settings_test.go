package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsCmd_Show(t *testing.T) {
	ts := setupTestServices(t)
	ts.settings.settings.AIAPIKey = "sk-ant-1234567890"

	out, err := execute(t, "", "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Search label:    OmniTicket")
	assert.Contains(t, out, "Processed label: OmniTicket/Procesado")
	assert.Contains(t, out, "API Key: sk-a...7890")
	assert.Contains(t, out, "Last sync: Nunca")
	assert.NotContains(t, out, "1234567890")
}

func TestSettingsCmd_ShowWithoutKey(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "", "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "API Key: (not set)")
}

func TestSettingsCmd_SetKeyArg(t *testing.T) {
	ts := setupTestServices(t)

	out, err := execute(t, "", "settings", "set-key", "  sk-new-key-000  ")

	require.NoError(t, err)
	assert.Equal(t, "sk-new-key-000", ts.settings.settings.AIAPIKey)
	assert.Contains(t, out, "API key saved: sk-n...-000")
}

func TestSettingsCmd_SetKeyStdin(t *testing.T) {
	ts := setupTestServices(t)

	_, err := execute(t, "sk-from-stdin\n", "settings", "set-key")

	require.NoError(t, err)
	assert.Equal(t, "sk-from-stdin", ts.settings.settings.AIAPIKey)
}

func TestSettingsCmd_SetKeyEmpty(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "\n", "settings", "set-key")
	assert.EqualError(t, err, "API key is empty")
}

func TestSettingsCmd_Labels(t *testing.T) {
	ts := setupTestServices(t)

	out, err := execute(t, "", "settings", "labels", "--search", "Tickets")

	require.NoError(t, err)
	assert.Equal(t, "Tickets", ts.settings.settings.SearchLabel)
	assert.Equal(t, "OmniTicket/Procesado", ts.settings.settings.ProcessedLabel)
	assert.Contains(t, out, `search "Tickets", processed "OmniTicket/Procesado"`)
}

func TestSettingsCmd_LabelsValidation(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "", "settings", "labels")
	assert.EqualError(t, err, "set --search, --processed or both")

	_, err = execute(t, "", "settings", "labels", "--processed", "OmniTicket")
	assert.EqualError(t, err, "search and processed labels must differ")
}

func TestSettingsCmd_GetFailure(t *testing.T) {
	ts := setupTestServices(t)
	ts.settings.err = errBoom

	_, err := execute(t, "", "settings")
	assert.ErrorIs(t, err, errBoom)
}

func TestSettingsCmd_NotConfigured(t *testing.T) {
	clearServices(t)

	_, err := execute(t, "", "settings")
	assert.EqualError(t, err, "settings service not configured")
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "abcd...mnop", maskAPIKey("abcdefghijklmnop"))
}
