package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"leadinbox/internal/model"
)

// ChatSink posts a short Block Kit summary to a Slack-style incoming webhook.
type ChatSink struct {
	url        string
	httpClient *http.Client
}

func NewChatSink(url string) *ChatSink {
	return &ChatSink{
		url: url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *ChatSink) Name() string { return "chat" }
func (s *ChatSink) URL() string  { return s.url }

type chatBlock struct {
	Type   string      `json:"type"`
	Text   interface{} `json:"text,omitempty"`
	Fields interface{} `json:"fields,omitempty"`
}

type chatText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Deliver posts the summary and returns the raw response body.
func (s *ChatSink) Deliver(ctx context.Context, e *model.Email) (string, error) {
	body := truncateBody(e.Body, 200)

	payload := map[string]interface{}{
		"text": "New Interested Email!",
		"blocks": []chatBlock{
			{
				Type: "header",
				Text: chatText{Type: "plain_text", Text: "New Interested Lead"},
			},
			{
				Type: "section",
				Fields: []chatText{
					{Type: "mrkdwn", Text: fmt.Sprintf("*From:*\n%s", e.FromAddress)},
					{Type: "mrkdwn", Text: fmt.Sprintf("*Subject:*\n%s", e.Subject)},
				},
			},
			{
				Type: "section",
				Text: chatText{Type: "mrkdwn", Text: fmt.Sprintf("*Message:*\n%s", body)},
			},
		},
	}

	return post(ctx, s.httpClient, s.url, payload, nil)
}

// truncateBody shortens body to at most max bytes without splitting a
// multi-byte rune, appending "..." when anything was cut.
func truncateBody(body string, max int) string {
	if len(body) <= max {
		return body
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut] + "..."
}

func post(ctx context.Context, client *http.Client, url string, payload interface{}, headers map[string]string) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return string(respBody), fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return string(respBody), nil
}
