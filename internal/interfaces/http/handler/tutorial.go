package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/portal/backend/internal/infrastructure/view"
)

// TutorialHandler renders the learning resources
type TutorialHandler struct {
	BaseHandler
}

// NewTutorialHandler creates a new TutorialHandler
func NewTutorialHandler(base BaseHandler) *TutorialHandler {
	return &TutorialHandler{BaseHandler: base}
}

// DisplayIndex renders the first tutorial page
func (h *TutorialHandler) DisplayIndex(c *gin.Context) {
	h.renderPage(c, view.DefaultTutorialPage)
}

// DisplayPage renders /tutorial/:page for known pages only
func (h *TutorialHandler) DisplayPage(c *gin.Context) {
	h.renderPage(c, c.Param("page"))
}

func (h *TutorialHandler) renderPage(c *gin.Context, page string) {
	name, err := view.ResolvePage(page)
	if err != nil {
		c.String(http.StatusForbidden, "Forbidden")
		return
	}
	h.Render(c, http.StatusOK, name, nil)
}
