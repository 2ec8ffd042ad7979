package models

import "time"

// SystemActor identifies scheduler-driven timeline entries.
const SystemActor = "SYSTEM"

// TimelineEvent is one append-only entry in a complaint's audit trail.
// Entries are never mutated or deleted.
type TimelineEvent struct {
	ID             string    `db:"id" json:"id"`
	ComplaintID    string    `db:"complaint_id" json:"complaint_id"`
	Actor          string    `db:"actor" json:"actor"`
	Action         string    `db:"action" json:"action"`
	Comment        string    `db:"comment" json:"comment"`
	IsInternalNote bool      `db:"is_internal_note" json:"is_internal_note"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
