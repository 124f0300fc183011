package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantRetryable bool
		wantType      string
	}{
		{"nil", nil, false, ""},
		{"json syntax", jsonSyntaxError(), false, "json_decode_error"},
		{"no rows", pgx.ErrNoRows, false, "record_not_found"},
		{"wrapped no rows", fmt.Errorf("load: %w", pgx.ErrNoRows), false, "record_not_found"},
		{"duplicate key", errors.New(`duplicate key value violates unique constraint "emails_account_id_message_id_key"`), false, "duplicate_key"},
		{"connection refused", errors.New("connection refused"), true, "db_connection_error"},
		{"timeout string", errors.New("i/o timeout"), true, "db_connection_error"},
		{"deadline exceeded", context.DeadlineExceeded, true, "timeout"},
		{"context canceled", context.Canceled, false, "context_canceled"},
		{"classifier 5xx", errors.New("classifier service 5xx: 503"), true, "classifier_service_error"},
		{"classifier unreachable", errors.New("classifier service unreachable: dial tcp"), true, "classifier_service_unavailable"},
		{"unknown", errors.New("something odd happened"), false, "unknown_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotRetryable, gotType := IsRetryableError(tt.err)
			if gotRetryable != tt.wantRetryable {
				t.Errorf("retryable = %v, want %v", gotRetryable, tt.wantRetryable)
			}
			if gotType != tt.wantType {
				t.Errorf("type = %q, want %q", gotType, tt.wantType)
			}
		})
	}
}

func jsonSyntaxError() error {
	var v map[string]any
	return json.Unmarshal([]byte(`{bad`), &v)
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name        string
		retryCount  int64
		maxRetries  int64
		isRetryable bool
		want        bool
	}{
		{"retryable under cap", 1, 5, true, true},
		{"retryable at cap", 5, 5, true, true},
		{"retryable over cap", 6, 5, true, false},
		{"non-retryable", 1, 5, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldRetry(tt.retryCount, tt.maxRetries, tt.isRetryable); got != tt.want {
				t.Errorf("ShouldRetry(%d, %d, %v) = %v, want %v",
					tt.retryCount, tt.maxRetries, tt.isRetryable, got, tt.want)
			}
		})
	}
}
