package model

import "time"

// Account is a connected mailbox. Rows are created by account setup; the
// pipeline only ever touches last_sync_at.
type Account struct {
	ID           int64
	UserID       int64
	Email        string
	IMAPHost     string
	IMAPPort     int
	IMAPUsername string
	IMAPPassword string
	IsActive     bool
	LastSyncAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
