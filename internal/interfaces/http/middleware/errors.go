package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/portal/backend/internal/infrastructure/logger"
	"github.com/portal/backend/internal/infrastructure/view"
	"github.com/portal/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// ErrorHandler is the terminal error handler. Handlers report failures
// with c.Error; if nothing has been written yet the last error is rendered
// as the error page with its mapped status. Internal details are logged,
// never shown.
func ErrorHandler(renderer *view.Renderer, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		v := dto.NewErrorView(err)

		l := logger.Enrich(c.Request.Context(), log)
		if v.Status >= 500 {
			l.Error("Request failed", zap.Error(err), zap.Int("status", v.Status))
		} else {
			l.Debug("Request rejected", zap.Error(err), zap.Int("status", v.Status))
		}

		if c.Writer.Written() {
			return
		}
		renderer.HTML(c, v.Status, view.PageError, gin.H{
			"title":     v.Title,
			"message":   v.Message,
			"requestID": GetRequestID(c),
		})
	}
}
