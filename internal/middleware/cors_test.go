package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

const dashboardOrigin = "https://dashboard.example.com"

func setupCORSRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw)
	r.GET("/api/v1/tickets", func(c *gin.Context) {
		c.String(http.StatusOK, "[]")
	})
	r.POST("/api/v1/tickets", func(c *gin.Context) {
		c.String(http.StatusCreated, "created")
	})
	return r
}

func TestCORS_DefaultConfig_SetsHeaders(t *testing.T) {
	r := setupCORSRouter(CORS())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets", nil)
	req.Header.Set("Origin", dashboardOrigin)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected Allow-Origin *, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Error("expected Allow-Methods header to be set")
	}
	// Chatbot integrations authenticate with X-Api-Key, so the widget must be
	// able to send it cross-origin.
	if got := w.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "X-Api-Key") {
		t.Errorf("expected Allow-Headers to include X-Api-Key, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Max-Age"); got != "86400" {
		t.Errorf("expected Max-Age 86400, got %q", got)
	}
	if got := w.Header().Get("Vary"); got != "Origin" {
		t.Errorf("expected Vary Origin, got %q", got)
	}
}

func TestCORS_PreflightOptions_Returns204(t *testing.T) {
	r := setupCORSRouter(CORS())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/tickets", nil)
	req.Header.Set("Origin", dashboardOrigin)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected Allow-Origin *, got %q", got)
	}
}

func TestCORS_NoOriginHeader_SkipsCORSHeaders(t *testing.T) {
	r := setupCORSRouter(CORS())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no Allow-Origin header, got %q", got)
	}
}

func TestCORS_WithConfig_SpecificOrigins(t *testing.T) {
	cfg := CORSConfig{
		AllowOrigins: []string{dashboardOrigin, "http://localhost:3000"},
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:       "3600",
	}

	t.Run("allowed origin echoed", func(t *testing.T) {
		r := setupCORSRouter(CORSWithConfig(cfg))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets", nil)
		req.Header.Set("Origin", dashboardOrigin)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != dashboardOrigin {
			t.Errorf("expected Allow-Origin %q, got %q", dashboardOrigin, got)
		}
		if got := w.Header().Get("Access-Control-Max-Age"); got != "3600" {
			t.Errorf("expected Max-Age 3600, got %q", got)
		}
	})

	t.Run("unknown origin denied", func(t *testing.T) {
		r := setupCORSRouter(CORSWithConfig(cfg))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("expected no Allow-Origin header for denied origin, got %q", got)
		}
		if got := w.Header().Get("Vary"); got != "Origin" {
			t.Errorf("expected Vary Origin even for denied origin, got %q", got)
		}
	})

	t.Run("empty allowlist denies", func(t *testing.T) {
		empty := cfg
		empty.AllowOrigins = nil
		r := setupCORSRouter(CORSWithConfig(empty))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets", nil)
		req.Header.Set("Origin", dashboardOrigin)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("expected no Allow-Origin header for empty allowlist, got %q", got)
		}
	})
}

func TestCORS_WithCredentials_EchosOrigin(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowCredentials = true

	r := setupCORSRouter(CORSWithConfig(cfg))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets", nil)
	req.Header.Set("Origin", dashboardOrigin)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != dashboardOrigin {
		t.Errorf("expected origin echo %q, got %q", dashboardOrigin, got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("expected Allow-Credentials true, got %q", got)
	}
}

func TestOriginAllowed(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"wildcard allows any", []string{"*"}, "http://any.com", true},
		{"exact match", []string{dashboardOrigin}, dashboardOrigin, true},
		{"no match", []string{dashboardOrigin}, "http://b.com", false},
		{"multiple with match", []string{"http://a.com", "http://b.com"}, "http://b.com", true},
		{"empty list", nil, dashboardOrigin, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := originAllowed(tt.allowed, tt.origin); got != tt.want {
				t.Errorf("originAllowed() = %v, want %v", got, tt.want)
			}
		})
	}
}
