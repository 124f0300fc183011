package model

import (
	"errors"
	"time"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrEmailNotFound   = errors.New("email not found")
)

// Email is a single ingested message. (account_id, message_id) is unique;
// re-ingesting the same source message updates the row in place.
// Only classification writes Category; only the UI writes IsRead.
type Email struct {
	ID          int64
	AccountID   int64
	UserID      int64
	MessageID   string
	FromAddress string
	ToAddress   string
	Subject     string
	Body        string
	Folder      string
	ReceivedAt  time.Time
	IsRead      bool
	Category    Category
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
