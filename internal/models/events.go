package models

// TranscriptEvent is published when a session appends a final
// recognition result to its transcript.
type TranscriptEvent struct {
	EventType  string  `json:"eventType"`
	SessionID  string  `json:"sessionId"`
	OwnerID    string  `json:"ownerId,omitempty"`
	Timestamp  int64   `json:"timestamp"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

// ReplyEvent is published when the AI gateway returns a reply for a session.
type ReplyEvent struct {
	EventType string `json:"eventType"`
	SessionID string `json:"sessionId"`
	OwnerID   string `json:"ownerId,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Language  string `json:"language"`
	Text      string `json:"text"`
	HasAudio  bool   `json:"hasAudio"`
}
