package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"leadinbox/pkg/trace"
)

func newMiddlewareRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware())
	r.Use(TraceMiddleware())
	r.POST("/sync-emails", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func TestCORSMiddleware_PreflightShortCircuits(t *testing.T) {
	r := newMiddlewareRouter()

	req := httptest.NewRequest(http.MethodOptions, "/sync-emails", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got != "authorization, x-client-info, apikey, content-type" {
		t.Errorf("Allow-Headers = %q", got)
	}
}

func TestCORSMiddleware_HeadersOnNormalRequests(t *testing.T) {
	r := newMiddlewareRouter()

	req := httptest.NewRequest(http.MethodPost, "/sync-emails", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
}

func TestTraceMiddleware_PropagatesIncomingTraceID(t *testing.T) {
	r := newMiddlewareRouter()

	req := httptest.NewRequest(http.MethodPost, "/sync-emails", nil)
	req.Header.Set(trace.HeaderName(), "trace-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get(trace.HeaderName()); got != "trace-123" {
		t.Errorf("trace header = %q, want trace-123", got)
	}
}

func TestTraceMiddleware_MintsTraceIDWhenMissing(t *testing.T) {
	r := newMiddlewareRouter()

	req := httptest.NewRequest(http.MethodPost, "/sync-emails", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get(trace.HeaderName()); got == "" {
		t.Error("trace header missing, want minted id")
	}
}
