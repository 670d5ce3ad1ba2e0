package middleware

import (
	"net/http"
	"strconv"
	"time"

	"kaban/logger"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// RateLimitConfig configures rate limiting
type RateLimitConfig struct {
	RequestsPerMinute int
	KeyFunc           func(c *gin.Context) string
}

// DefaultRateLimitConfig returns default rate limit config
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 20,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}
}

// RateLimit creates per-key rate limiting middleware backed by an in-memory
// counter with a one-minute window.
func RateLimit(config RateLimitConfig) gin.HandlerFunc {
	counters := cache.New(time.Minute, 5*time.Minute)
	return func(c *gin.Context) {
		key := config.KeyFunc(c) + ":" + c.Request.URL.Path

		count := 0
		if v, ok := counters.Get(key); ok {
			count = v.(int)
		}
		if count >= config.RequestsPerMinute {
			logger.Warningf("Rate limit exceeded for %s (count: %d)", key, count)
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Please try again later."})
			c.Abort()
			return
		}

		if count == 0 {
			counters.Set(key, 1, time.Minute)
		} else if _, err := counters.IncrementInt(key, 1); err != nil {
			counters.Set(key, 1, time.Minute)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerMinute))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(config.RequestsPerMinute-count-1))

		c.Next()
	}
}
