package domain

import "time"

// HistoryEntry is one finished translation kept for the rolling history list.
type HistoryEntry struct {
	Result    TranslationResult `json:"result"`
	Scenario  Scenario          `json:"scenario"`
	CreatedAt time.Time         `json:"createdAt"`
}
