package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"leadinbox/pkg/circuitbreaker"
	"leadinbox/pkg/config"
	"leadinbox/pkg/metrics"
)

const systemPrompt = `You are an email categorization AI. Categorize emails into EXACTLY ONE of these categories:
- interested: Email shows interest or asks questions about the product/service
- meeting_booked: Email confirms a meeting or asks to schedule one
- not_interested: Email declines or shows no interest
- spam: Promotional, scam, or unsolicited emails
- out_of_office: Auto-reply messages indicating absence
- uncategorized: Doesn't fit other categories

Respond with ONLY the category name in lowercase.`

// Client calls an OpenAI-compatible chat-completions endpoint to label one
// email. The raw reply string is returned; taxonomy normalization is the
// classification stage's job.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
	logger     *zap.Logger
}

func NewClient(cfg config.ClassifierConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig()),
		logger:  logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Classify asks the model for a label for subject+body.
func (c *Client) Classify(ctx context.Context, subject, body string) (string, error) {
	var reply string

	start := time.Now()
	err := c.breaker.Execute(func() error {
		var callErr error
		reply, callErr = c.call(ctx, subject, body)
		return callErr
	})

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RecordClassifierCallLatency(status, time.Since(start))

	if err != nil {
		return "", err
	}
	return reply, nil
}

func (c *Client) call(ctx context.Context, subject, body string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Subject: %s\n\nBody: %s", subject, body)},
		},
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("classifier service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("classifier service 5xx: %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("classifier service error: %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode classifier response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("classifier returned no choices")
	}

	return out.Choices[0].Message.Content, nil
}
