package mq

// EmailInterestedPayload is published when classification persists the
// "interested" label; the notification stage consumes it.
type EmailInterestedPayload struct {
	EmailID  int64  `json:"email_id"`
	Category string `json:"category"`
	TraceID  string `json:"trace_id,omitempty"`
}
