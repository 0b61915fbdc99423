package domain

import (
	"fmt"
	"strings"
)

// Setting keys stored in the Settings collection.
const (
	SettingSearchLabel    = "GMAIL_SEARCH_LABEL"
	SettingProcessedLabel = "GMAIL_PROCESSED_LABEL"
	SettingAIAPIKey       = "AI_API_KEY"
	SettingLastSync       = "LAST_SYNC"

	// SettingLegacyAPIKey is read as an alias of SettingAIAPIKey.
	SettingLegacyAPIKey = "GEMINI_API_KEY"
)

// Setting defaults applied when a key is absent.
const (
	DefaultSearchLabel    = "OmniTicket"
	DefaultProcessedLabel = "OmniTicket/Procesado"
	NeverSynced           = "Nunca"
)

// Settings is the remote configuration read at the start of every sync.
type Settings struct {
	SearchLabel    string
	ProcessedLabel string
	AIAPIKey       string
	LastSync       string
}

// DefaultSettings returns the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		SearchLabel:    DefaultSearchLabel,
		ProcessedLabel: DefaultProcessedLabel,
		LastSync:       NeverSynced,
	}
}

// SettingsFromRows reads key/value rows over the defaults.
// Unknown keys are ignored and blank values keep the default. A non-blank
// AI_API_KEY wins over the legacy key.
func SettingsFromRows(rows [][]any) Settings {
	s := DefaultSettings()
	var legacyKey string
	for _, row := range rows {
		val := CellText(row, 1)
		if val == "" {
			continue
		}
		switch CellText(row, 0) {
		case SettingSearchLabel:
			s.SearchLabel = val
		case SettingProcessedLabel:
			s.ProcessedLabel = val
		case SettingAIAPIKey:
			s.AIAPIKey = val
		case SettingLegacyAPIKey:
			legacyKey = val
		case SettingLastSync:
			s.LastSync = val
		}
	}
	if s.AIAPIKey == "" {
		s.AIAPIKey = legacyKey
	}
	return s
}

// SettingRow returns the 1-based row holding key within rows read from the
// top of the Settings collection, or 0 when the key is absent.
func SettingRow(rows [][]any, keys ...string) int {
	for _, key := range keys {
		for i, row := range rows {
			if CellText(row, 0) == key {
				return i + 1
			}
		}
	}
	return 0
}

// Rows renders the settings as key/value rows in canonical order.
func (s Settings) Rows() [][]any {
	return [][]any{
		{SettingSearchLabel, s.SearchLabel},
		{SettingProcessedLabel, s.ProcessedLabel},
		{SettingAIAPIKey, s.AIAPIKey},
		{SettingLastSync, s.LastSync},
	}
}

// PendingQuery is the mailbox query selecting unprocessed tickets.
func (s Settings) PendingQuery() string {
	return fmt.Sprintf("label:%s -label:%s", quoteLabel(s.SearchLabel), quoteLabel(s.ProcessedLabel))
}

func quoteLabel(label string) string {
	if strings.ContainsAny(label, " \t") {
		return `"` + label + `"`
	}
	return label
}
