// Package models defines the data structures shared across the service.
package models

import "time"

// Word is a saved vocabulary entry with its translation and explanation.
// Words are created and deleted, never updated in place. The ID is
// assigned by the backing store and is stable for the record's lifetime.
type Word struct {
	ID          string `json:"id,omitempty"`
	Word        string `json:"word"`
	Translation string `json:"translation"`
	Explanation string `json:"explanation"`
	OwnerID     string `json:"ownerId,omitempty"`
}

// Recording is the persisted artifact of a finished practice session.
type Recording struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"ownerId"`
	Transcript string    `json:"transcript"`
	Reply      string    `json:"reply"`
	AudioPath  string    `json:"audioPath"`
	CreatedAt  time.Time `json:"createdAt"`
}

// FluencySummary is the heuristic feedback returned by the fluency report.
type FluencySummary struct {
	Positives    string   `json:"positives"`
	Improvements string   `json:"improvements"`
	Vocabulary   []string `json:"vocabulary"`
}
