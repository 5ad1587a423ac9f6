package domain

import "time"

type TranscriptID string

const DefaultTranscriptID TranscriptID = "default"

type Migration struct {
	From ModelID
	To   ModelID
	At   time.Time
}

// Transcript is the persisted copy of a conversation, saved after each
// answered message.
type Transcript struct {
	ID          TranscriptID
	ActiveModel ModelID
	History     History
	Migrations  []Migration
	UpdatedAt   time.Time
}
