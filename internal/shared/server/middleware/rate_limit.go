package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"upfolio-backend/internal/ratelimit"
	"upfolio-backend/internal/shared/metrics"
)

// RateLimit applies the named policy to the route. The identifier prefers the
// authenticated user over the client IP so a shared NAT cannot exhaust a
// policy for everyone behind it.
func RateLimit(limiter *ratelimit.Limiter, policy string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identifier := "ip:" + strings.TrimSpace(c.ClientIP())
		if userID := strings.TrimSpace(UserIDFromContext(c)); userID != "" {
			identifier = "user:" + userID
		}

		result, err := limiter.Check(c.Request.Context(), policy, identifier)
		if err != nil {
			// Fail open: a broken limiter store must not take auth down.
			c.Next()
			return
		}
		if result.Allowed {
			c.Next()
			return
		}

		metrics.IncRateLimited()
		retryAfterMs := int(time.Until(result.ResetAt) / time.Millisecond)
		if retryAfterMs <= 0 {
			retryAfterMs = 1000
		}
		retryAfterSeconds := int(math.Ceil(float64(retryAfterMs) / 1000.0))
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":        "rate_limited",
			"retryAfterMs": retryAfterMs,
		})
		c.Abort()
	}
}
