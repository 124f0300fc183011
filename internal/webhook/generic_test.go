package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenericSink_DeliverPostsEventPayload(t *testing.T) {
	var got genericPayload
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Write([]byte(`{"received":true}`))
	}))
	defer srv.Close()

	sink := NewGenericSink(srv.URL, "")
	resp, err := sink.Deliver(context.Background(), sampleEmail())
	if err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if resp != `{"received":true}` {
		t.Errorf("response = %q", resp)
	}

	if got.Event != "email.interested" {
		t.Errorf("event = %q, want email.interested", got.Event)
	}
	if got.Email.ID != 42 {
		t.Errorf("email id = %d, want 42", got.Email.ID)
	}
	if got.Email.From != "lead@example.com" {
		t.Errorf("from = %q", got.Email.From)
	}
	if got.Email.Category != "interested" {
		t.Errorf("category = %q, want interested", got.Email.Category)
	}
	if got.Email.ReceivedAt != "2026-01-02T03:04:05Z" {
		t.Errorf("received_at = %q", got.Email.ReceivedAt)
	}
	if gotAuth != "" {
		t.Errorf("auth = %q, want no header without signing secret", gotAuth)
	}
}

func TestGenericSink_SignsBearerTokenWhenSecretSet(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	secret := "test-secret"
	sink := NewGenericSink(srv.URL, secret)
	if _, err := sink.Deliver(context.Background(), sampleEmail()); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	if !strings.HasPrefix(gotAuth, "Bearer ") {
		t.Fatalf("auth = %q, want Bearer token", gotAuth)
	}

	token, err := jwt.Parse(strings.TrimPrefix(gotAuth, "Bearer "), func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		t.Fatalf("token parse error = %v", err)
	}

	claims := token.Claims.(jwt.MapClaims)
	if claims["iss"] != "leadinbox" {
		t.Errorf("iss = %v, want leadinbox", claims["iss"])
	}
	if claims["sub"] != "email:42" {
		t.Errorf("sub = %v, want email:42", claims["sub"])
	}
	if claims["event"] != "email.interested" {
		t.Errorf("event claim = %v", claims["event"])
	}
}

func TestGenericSink_Non2xxReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := NewGenericSink(srv.URL, "")
	_, err := sink.Deliver(context.Background(), sampleEmail())
	if err == nil || !strings.Contains(err.Error(), "webhook returned status 500") {
		t.Fatalf("Deliver() error = %v, want status 500 error", err)
	}
}
