package mq

import "time"

// EmailReceivedPayload is published once per upserted message during an
// ingestion run; the classification stage consumes it.
type EmailReceivedPayload struct {
	EmailID    int64     `json:"email_id"`
	AccountID  int64     `json:"account_id"`
	UserID     int64     `json:"user_id"`
	MessageID  string    `json:"message_id"`
	Subject    string    `json:"subject"`
	ReceivedAt time.Time `json:"received_at"`
	TraceID    string    `json:"trace_id,omitempty"`
}
