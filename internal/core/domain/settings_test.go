package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, "OmniTicket", s.SearchLabel)
	assert.Equal(t, "OmniTicket/Procesado", s.ProcessedLabel)
	assert.Equal(t, "Nunca", s.LastSync)
	assert.Empty(t, s.AIAPIKey)
}

func TestSettingsFromRows(t *testing.T) {
	tests := []struct {
		name string
		rows [][]any
		want Settings
	}{
		{
			name: "empty uses defaults",
			rows: nil,
			want: DefaultSettings(),
		},
		{
			name: "overrides",
			rows: [][]any{
				{SettingSearchLabel, "Tickets"},
				{SettingProcessedLabel, "Tickets/Done"},
				{SettingAIAPIKey, "sk-1"},
				{SettingLastSync, "2025-01-01 10:00:00"},
			},
			want: Settings{SearchLabel: "Tickets", ProcessedLabel: "Tickets/Done", AIAPIKey: "sk-1", LastSync: "2025-01-01 10:00:00"},
		},
		{
			name: "blank values keep defaults",
			rows: [][]any{{SettingSearchLabel, "  "}, {SettingProcessedLabel}},
			want: DefaultSettings(),
		},
		{
			name: "legacy key is a fallback",
			rows: [][]any{{SettingLegacyAPIKey, "legacy"}, {SettingAIAPIKey, ""}},
			want: Settings{SearchLabel: DefaultSearchLabel, ProcessedLabel: DefaultProcessedLabel, AIAPIKey: "legacy", LastSync: NeverSynced},
		},
		{
			name: "current key wins over legacy",
			rows: [][]any{{SettingAIAPIKey, "current"}, {SettingLegacyAPIKey, "legacy"}},
			want: Settings{SearchLabel: DefaultSearchLabel, ProcessedLabel: DefaultProcessedLabel, AIAPIKey: "current", LastSync: NeverSynced},
		},
		{
			name: "unknown keys and empty rows ignored",
			rows: [][]any{{}, {"COLOR", "blue"}, {SettingSearchLabel, "Recibos"}},
			want: Settings{SearchLabel: "Recibos", ProcessedLabel: DefaultProcessedLabel, LastSync: NeverSynced},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SettingsFromRows(tt.rows))
		})
	}
}

func TestSettingRow(t *testing.T) {
	rows := [][]any{{SettingSearchLabel, "a"}, {}, {SettingLegacyAPIKey, "k"}}

	assert.Equal(t, 1, SettingRow(rows, SettingSearchLabel))
	assert.Equal(t, 3, SettingRow(rows, SettingAIAPIKey, SettingLegacyAPIKey))
	assert.Equal(t, 0, SettingRow(rows, SettingLastSync))
}

func TestSettings_RowsRoundTrip(t *testing.T) {
	s := Settings{SearchLabel: "A", ProcessedLabel: "B", AIAPIKey: "C", LastSync: "D"}
	assert.Equal(t, s, SettingsFromRows(s.Rows()))
	assert.Len(t, s.Rows(), 4)
}

func TestSettings_PendingQuery(t *testing.T) {
	assert.Equal(t, "label:OmniTicket -label:OmniTicket/Procesado", DefaultSettings().PendingQuery())

	s := Settings{SearchLabel: "My Tickets", ProcessedLabel: "Done"}
	assert.Equal(t, `label:"My Tickets" -label:Done`, s.PendingQuery())
}
