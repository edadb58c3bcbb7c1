package model

import "time"

const EventRecordSaved = "record.saved"

// RecordEvent is published after a nomenclature has been appended.
type RecordEvent struct {
	Type         string    `json:"type"`
	RecordID     uint      `json:"record_id"`
	Nomenclature string    `json:"nomenclature"`
	Project      string    `json:"project"`
	User         string    `json:"user"`
	OccurredAt   time.Time `json:"occurred_at"`
}
