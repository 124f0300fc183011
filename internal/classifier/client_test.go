package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"leadinbox/pkg/config"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.ClassifierConfig{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Model:   "test-model",
	}, zap.NewNop())
}

func chatReply(content string) string {
	return `{"choices":[{"message":{"content":"` + content + `"}}]}`
}

func TestClassify_ReturnsModelReply(t *testing.T) {
	var gotPath, gotAuth string
	var gotReq struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(chatReply("interested")))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	reply, err := c.Classify(context.Background(), "Let's talk", "I'm interested in your product")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if reply != "interested" {
		t.Errorf("reply = %q, want interested", reply)
	}
	if gotPath != "/v1/chat/completions" {
		t.Errorf("path = %q, want /v1/chat/completions", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth = %q, want Bearer test-key", gotAuth)
	}
	if gotReq.Model != "test-model" {
		t.Errorf("model = %q, want test-model", gotReq.Model)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Fatalf("messages = %+v, want system + user", gotReq.Messages)
	}
	if !strings.Contains(gotReq.Messages[1].Content, "Subject: Let's talk") {
		t.Errorf("user message missing subject: %q", gotReq.Messages[1].Content)
	}
}

func TestClassify_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Classify(context.Background(), "s", "b")
	if err == nil || !strings.Contains(err.Error(), "classifier service 5xx") {
		t.Fatalf("Classify() error = %v, want 5xx error", err)
	}
}

func TestClassify_ClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Classify(context.Background(), "s", "b")
	if err == nil || !strings.Contains(err.Error(), "classifier service error: 429") {
		t.Fatalf("Classify() error = %v, want 429 error", err)
	}
}

func TestClassify_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Classify(context.Background(), "s", "b")
	if err == nil || !strings.Contains(err.Error(), "no choices") {
		t.Fatalf("Classify() error = %v, want no choices error", err)
	}
}

func TestClassify_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	var lastErr error
	for i := 0; i < 10; i++ {
		_, lastErr = c.Classify(context.Background(), "s", "b")
	}
	if lastErr == nil {
		t.Fatal("expected error after repeated failures")
	}
	if !strings.Contains(lastErr.Error(), "circuit breaker is open") {
		t.Errorf("last error = %v, want circuit breaker open", lastErr)
	}
}
