package trace

import (
	"context"
	"testing"
)

func TestWithContextRoundTrip(t *testing.T) {
	ctx := WithContext(context.Background(), "trace-123")
	if got := FromContext(ctx); got != "trace-123" {
		t.Errorf("FromContext = %q, want trace-123", got)
	}
}

func TestFromContextEmpty(t *testing.T) {
	if got := FromContext(context.Background()); got != "" {
		t.Errorf("FromContext = %q, want empty", got)
	}
}

func TestGenerateTraceIDUnique(t *testing.T) {
	a := GenerateTraceID()
	b := GenerateTraceID()
	if a == "" || a == b {
		t.Errorf("trace ids not unique: %q, %q", a, b)
	}
}
