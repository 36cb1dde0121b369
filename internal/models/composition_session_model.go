package models

import "time"

// CompositionSessionRecord is the persisted form of a composition session:
// the serialized session payload plus bookkeeping for stale-session cleanup.
type CompositionSessionRecord struct {
	SessionID string    `db:"session_id" json:"session_id"`
	Payload   []byte    `db:"payload" json:"payload"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
