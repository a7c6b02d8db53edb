package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/portal/backend/internal/infrastructure/ratelimit"
)

// RateLimitMessage is the body of every 429 response
const RateLimitMessage = "Too many requests, please try again later."

// RateLimitRecorder counts rejections per policy
type RateLimitRecorder interface {
	RateLimited(policy string)
}

// RateLimit counts every request per client IP under policy and answers
// 429 once the window is exhausted. recorder may be nil.
func RateLimit(limiter ratelimit.Limiter, policy string, recorder RateLimitRecorder) gin.HandlerFunc {
	return RateLimitByKey(limiter, policy, recorder, func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// RateLimitByKey is RateLimit with a custom key extractor
func RateLimitByKey(limiter ratelimit.Limiter, policy string, recorder RateLimitRecorder, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := limiter.Allow(c.Request.Context(), policy+":"+keyFunc(c))

		c.Header("RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Header("RateLimit-Reset", strconv.Itoa(secondsUntil(d.ResetAt)))

		if !d.Allowed {
			if recorder != nil {
				recorder.RateLimited(policy)
			}
			c.Header("Retry-After", strconv.Itoa(secondsUntil(d.ResetAt)))
			c.Abort()
			c.String(http.StatusTooManyRequests, RateLimitMessage)
			return
		}

		c.Next()
	}
}

func secondsUntil(t time.Time) int {
	s := int(time.Until(t).Round(time.Second).Seconds())
	if s < 0 {
		return 0
	}
	return s
}

// Unless runs mw for every request except the listed paths
func Unless(paths []string, mw gin.HandlerFunc) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		skip[p] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		mw(c)
	}
}
