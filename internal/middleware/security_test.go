package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(r http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewRateLimiter(rate.Limit(1), 1)
	r := gin.New()
	r.Use(RateLimitMiddleware(limiter))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	rec1 := performRequest(r, http.MethodGet, "/")
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec1.Code)
	}

	rec2 := performRequest(r, http.MethodGet, "/")
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on rapid second request, got %d", rec2.Code)
	}
}

func TestScrapeProtectionMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(ScrapeProtectionMiddleware(30 * time.Minute))
	r.POST("/refresh", func(c *gin.Context) { c.String(http.StatusOK, "refreshed") })

	rec1 := performRequest(r, http.MethodPost, "/refresh")
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first refresh to succeed, got %d", rec1.Code)
	}

	rec2 := performRequest(r, http.MethodPost, "/refresh")
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second refresh to be rate limited, got %d", rec2.Code)
	}
}

func TestScrapeProtectionAllowsAfterInterval(t *testing.T) {
	r := gin.New()
	r.Use(ScrapeProtectionMiddleware(10 * time.Millisecond))
	r.POST("/refresh", func(c *gin.Context) { c.String(http.StatusOK, "refreshed") })

	performRequest(r, http.MethodPost, "/refresh")
	time.Sleep(20 * time.Millisecond)

	rec := performRequest(r, http.MethodPost, "/refresh")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected refresh after interval to succeed, got %d", rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "headers") })

	rec := performRequest(r, http.MethodGet, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	required := []string{"X-Frame-Options", "X-Content-Type-Options", "Referrer-Policy", "Content-Security-Policy"}
	for _, header := range required {
		if rec.Header().Get(header) == "" {
			t.Fatalf("expected header %s to be set", header)
		}
	}
}
