package models

import "time"

type PostingHistory struct {
	ID           int64     `db:"id" json:"id"`
	SessionID    string    `db:"session_id" json:"session_id"`
	AccountCount int       `db:"account_count" json:"account_count"`
	Scheduled    bool      `db:"scheduled" json:"scheduled"`
	ErrorMessage string    `db:"error_message" json:"error_message"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
