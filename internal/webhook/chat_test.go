package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"leadinbox/internal/model"
)

func sampleEmail() *model.Email {
	return &model.Email{
		ID:          42,
		FromAddress: "lead@example.com",
		Subject:     "Let's talk",
		Body:        "I'm interested in your product",
		Category:    model.CategoryInterested,
		ReceivedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestChatSink_DeliverPostsBlockKit(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q, want application/json", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	sink := NewChatSink(srv.URL)
	resp, err := sink.Deliver(context.Background(), sampleEmail())
	if err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if resp != "ok" {
		t.Errorf("response = %q, want ok", resp)
	}

	blocks, ok := got["blocks"].([]any)
	if !ok || len(blocks) != 3 {
		t.Fatalf("blocks = %v, want 3 blocks", got["blocks"])
	}
	header := blocks[0].(map[string]any)
	if header["type"] != "header" {
		t.Errorf("first block type = %v, want header", header["type"])
	}
	headerText := header["text"].(map[string]any)
	if headerText["text"] != "New Interested Lead" {
		t.Errorf("header text = %v, want New Interested Lead", headerText["text"])
	}
}

func TestChatSink_TruncatesLongBody(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	e := sampleEmail()
	e.Body = strings.Repeat("x", 500)

	sink := NewChatSink(srv.URL)
	if _, err := sink.Deliver(context.Background(), e); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	blocks := got["blocks"].([]any)
	section := blocks[2].(map[string]any)
	text := section["text"].(map[string]any)["text"].(string)
	if !strings.HasSuffix(text, "...") {
		t.Errorf("body not truncated: %q", text)
	}
	if strings.Contains(text, strings.Repeat("x", 201)) {
		t.Error("body longer than 200 chars")
	}
}

func TestChatSink_TruncationKeepsRunesWhole(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	// Place a three-byte rune straddling the 200-byte cut.
	e := sampleEmail()
	e.Body = strings.Repeat("x", 199) + strings.Repeat("日", 50)

	sink := NewChatSink(srv.URL)
	if _, err := sink.Deliver(context.Background(), e); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	blocks := got["blocks"].([]any)
	text := blocks[2].(map[string]any)["text"].(map[string]any)["text"].(string)
	if !utf8.ValidString(text) {
		t.Errorf("truncated body is not valid UTF-8: %q", text)
	}
	if strings.ContainsRune(text, utf8.RuneError) {
		t.Errorf("truncated body contains replacement rune: %q", text)
	}
	if !strings.HasSuffix(text, "...") {
		t.Errorf("body not truncated: %q", text)
	}
}

func TestChatSink_Non2xxReturnsErrorAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("no such webhook"))
	}))
	defer srv.Close()

	sink := NewChatSink(srv.URL)
	resp, err := sink.Deliver(context.Background(), sampleEmail())
	if err == nil || !strings.Contains(err.Error(), "webhook returned status 404") {
		t.Fatalf("Deliver() error = %v, want status 404 error", err)
	}
	if resp != "no such webhook" {
		t.Errorf("response = %q, want receiver body", resp)
	}
}
