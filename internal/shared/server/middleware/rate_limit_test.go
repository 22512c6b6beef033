package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"upfolio-backend/internal/ratelimit"
)

func newLoginLimiter(t *testing.T) *ratelimit.Limiter {
	t.Helper()
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := ratelimit.New(ratelimit.NewMemoryStore(), func() time.Time { return now })
	if err := limiter.Configure("LOGIN", 3, 15*time.Minute); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	return limiter
}

func TestRateLimitBlocksAfterPolicyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := newLoginLimiter(t)

	r := gin.New()
	r.POST("/api/v1/auth/login", RateLimit(limiter, "LOGIN"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 3; i++ {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, resp.Code)
		}
	}

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.Code)
	}
	if resp.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After header")
	}
	var body struct {
		Error        string `json:"error"`
		RetryAfterMs int    `json:"retryAfterMs"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error != "rate_limited" {
		t.Fatalf("error = %q, want rate_limited", body.Error)
	}
	if body.RetryAfterMs <= 0 {
		t.Fatalf("retryAfterMs = %d, want positive", body.RetryAfterMs)
	}
}

func TestRateLimitPrefersUserIdentifierOverIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := newLoginLimiter(t)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if user := c.GetHeader("X-Test-User"); user != "" {
			c.Set(userIDKey, user)
		}
		c.Next()
	})
	r.POST("/api/v1/auth/login", RateLimit(limiter, "LOGIN"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	send := func(user string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		if user != "" {
			req.Header.Set("X-Test-User", user)
		}
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		return resp.Code
	}

	// Exhaust the window for user-a; user-b on the same IP is unaffected.
	for i := 0; i < 3; i++ {
		if code := send("user-a"); code != http.StatusOK {
			t.Fatalf("user-a request %d: status = %d", i+1, code)
		}
	}
	if code := send("user-a"); code != http.StatusTooManyRequests {
		t.Fatalf("user-a over limit: status = %d, want 429", code)
	}
	if code := send("user-b"); code != http.StatusOK {
		t.Fatalf("user-b: status = %d, want 200", code)
	}
	if code := send(""); code != http.StatusOK {
		t.Fatalf("anonymous: status = %d, want 200", code)
	}
}

func TestRateLimitUnknownPolicyFailsOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := ratelimit.New(ratelimit.NewMemoryStore(), nil)

	r := gin.New()
	r.POST("/x", RateLimit(limiter, "NOT_CONFIGURED"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 10; i++ {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/x", nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, resp.Code)
		}
	}
}
