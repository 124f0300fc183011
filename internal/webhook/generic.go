package webhook

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"leadinbox/internal/model"
)

const eventEmailInterested = "email.interested"

// GenericSink posts the full message payload to a generic webhook endpoint.
// Each delivery carries a short-lived HS256 bearer token so the receiver can
// verify the origin.
type GenericSink struct {
	url           string
	signingSecret string
	httpClient    *http.Client
}

func NewGenericSink(url, signingSecret string) *GenericSink {
	return &GenericSink{
		url:           url,
		signingSecret: signingSecret,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *GenericSink) Name() string { return "generic" }
func (s *GenericSink) URL() string  { return s.url }

type genericPayload struct {
	Event     string       `json:"event"`
	Timestamp string       `json:"timestamp"`
	Email     genericEmail `json:"email"`
}

type genericEmail struct {
	ID         int64  `json:"id"`
	From       string `json:"from"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	Category   string `json:"category"`
	ReceivedAt string `json:"received_at"`
}

// Deliver posts the event payload and returns the raw response body.
func (s *GenericSink) Deliver(ctx context.Context, e *model.Email) (string, error) {
	payload := genericPayload{
		Event:     eventEmailInterested,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Email: genericEmail{
			ID:         e.ID,
			From:       e.FromAddress,
			Subject:    e.Subject,
			Body:       e.Body,
			Category:   e.Category.String(),
			ReceivedAt: e.ReceivedAt.UTC().Format(time.RFC3339),
		},
	}

	headers := map[string]string{}
	if s.signingSecret != "" {
		token, err := s.signToken(e.ID)
		if err != nil {
			return "", fmt.Errorf("failed to sign webhook token: %w", err)
		}
		headers["Authorization"] = "Bearer " + token
	}

	return post(ctx, s.httpClient, s.url, payload, headers)
}

func (s *GenericSink) signToken(emailID int64) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":   "leadinbox",
		"sub":   fmt.Sprintf("email:%d", emailID),
		"event": eventEmailInterested,
		"iat":   now.Unix(),
		"exp":   now.Add(5 * time.Minute).Unix(),
	})
	return token.SignedString([]byte(s.signingSecret))
}
