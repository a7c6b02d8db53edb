package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPRecorder receives request observations
type HTTPRecorder interface {
	RequestStarted()
	RequestFinished(method, route string, status int, elapsed time.Duration)
}

// Metrics records one observation per request labelled by the matched
// route pattern.
func Metrics(recorder HTTPRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		recorder.RequestStarted()

		c.Next()

		recorder.RequestFinished(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
