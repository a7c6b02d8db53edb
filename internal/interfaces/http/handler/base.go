package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/portal/backend/internal/infrastructure/view"
	"github.com/portal/backend/internal/interfaces/http/dto"
	"github.com/portal/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct {
	renderer *view.Renderer
	logger   *zap.Logger
}

// NewBaseHandler creates the shared handler base
func NewBaseHandler(renderer *view.Renderer, logger *zap.Logger) BaseHandler {
	return BaseHandler{renderer: renderer, logger: logger}
}

// Render writes the named template
func (h *BaseHandler) Render(c *gin.Context, status int, name string, data gin.H) {
	h.renderer.HTML(c, status, name, data)
}

// HandleError hands err to the terminal error handler, which renders the
// error page with the mapped status.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// RenderWithError re-renders a form page with err's message and status.
// Errors that are not domain errors go to HandleError instead.
func (h *BaseHandler) RenderWithError(c *gin.Context, name string, err error, data gin.H) {
	v := dto.NewErrorView(err)
	if v.Code == dto.CodeInternal {
		h.HandleError(c, err)
		return
	}
	if data == nil {
		data = gin.H{}
	}
	data["error"] = v.Message
	h.Render(c, v.Status, name, data)
}

// NotFound renders the not-found page for unmatched routes
func (h *BaseHandler) NotFound(c *gin.Context) {
	h.Render(c, http.StatusNotFound, view.PageNotFound, nil)
}

// session returns the request's session
func session(c *gin.Context) middleware.Session {
	return middleware.GetSession(c)
}
