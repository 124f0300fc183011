package model

import "time"

const (
	NotificationStatusSent   = "sent"
	NotificationStatusFailed = "failed"
)

// WebhookNotification is an append-only audit entry for one delivery attempt
// to one sink. Never updated or deleted.
type WebhookNotification struct {
	ID         int64
	EmailID    int64
	WebhookURL string
	Status     string
	Response   string
	CreatedAt  time.Time
}
