package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func setupRecoveryRouter(log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(log))
	r.GET("/api/v1/tickets", func(c *gin.Context) {
		c.String(http.StatusOK, "[]")
	})
	r.GET("/api/v1/tickets/broken", func(c *gin.Context) {
		panic("ticket handler blew up")
	})
	return r
}

func TestRecovery_NoPanic_PassesThrough(t *testing.T) {
	var logBuf bytes.Buffer
	r := setupRecoveryRouter(newTestLogger(&logBuf))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "[]" {
		t.Errorf("expected body '[]', got %q", w.Body.String())
	}
	if logBuf.Len() != 0 {
		t.Errorf("expected no log output without a panic, got:\n%s", logBuf.String())
	}
}

func TestRecovery_Panic_JSONEnvelope(t *testing.T) {
	var logBuf bytes.Buffer
	r := setupRecoveryRouter(newTestLogger(&logBuf))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets/broken", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse JSON response: %v", err)
	}
	if code, ok := body["code"].(float64); !ok || int(code) != 500 {
		t.Errorf("expected code 500, got %v", body["code"])
	}
	if msg, ok := body["message"].(string); !ok || msg != "internal server error" {
		t.Errorf("expected message 'internal server error', got %v", body["message"])
	}
	if val, exists := body["data"]; !exists {
		t.Error("expected 'data' field in response")
	} else if val != nil {
		t.Errorf("expected 'data' to be null, got %v", val)
	}
}

func TestRecovery_Panic_LogsDetails(t *testing.T) {
	var logBuf bytes.Buffer
	r := setupRecoveryRouter(newTestLogger(&logBuf))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets/broken", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	logOutput := logBuf.String()
	if !strings.Contains(logOutput, "panic recovered") {
		t.Errorf("expected log to contain 'panic recovered', got:\n%s", logOutput)
	}
	if !strings.Contains(logOutput, "ticket handler blew up") {
		t.Errorf("expected log to contain the panic value, got:\n%s", logOutput)
	}
	if !strings.Contains(logOutput, "path=/api/v1/tickets/broken") {
		t.Errorf("expected log to contain the request path, got:\n%s", logOutput)
	}
}

func TestRecovery_Panic_AbortsFurtherHandlers(t *testing.T) {
	var logBuf bytes.Buffer

	handlerCalled := false
	r := gin.New()
	r.Use(Recovery(newTestLogger(&logBuf)))
	r.GET("/api/v1/tickets/broken", func(c *gin.Context) {
		panic("abort test")
	}, func(c *gin.Context) {
		handlerCalled = true
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets/broken", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
	if handlerCalled {
		t.Error("expected chained handler NOT to run after panic recovery")
	}
}

func TestRecovery_NilLoggerFallsBackToDefault(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(nil))
	r.GET("/api/v1/tickets/broken", func(c *gin.Context) {
		panic("no logger configured")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets/broken", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
}
