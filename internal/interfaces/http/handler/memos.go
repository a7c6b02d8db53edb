package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	retirementapp "github.com/portal/backend/internal/application/retirement"
	"github.com/portal/backend/internal/infrastructure/view"
	"github.com/portal/backend/internal/interfaces/http/dto"
	"github.com/portal/backend/internal/interfaces/http/middleware"
)

// MemosHandler serves the memo board
type MemosHandler struct {
	BaseHandler
	memos *retirementapp.MemoService
}

// NewMemosHandler creates a new MemosHandler
func NewMemosHandler(base BaseHandler, memos *retirementapp.MemoService) *MemosHandler {
	return &MemosHandler{BaseHandler: base, memos: memos}
}

// DisplayMemos renders all memos newest first
func (h *MemosHandler) DisplayMemos(c *gin.Context) {
	memos, err := h.memos.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Render(c, http.StatusOK, view.PageMemos, gin.H{"memos": memos})
}

// AddMemos stores a memo and redirects back to the board
func (h *MemosHandler) AddMemos(c *gin.Context) {
	var form dto.MemoForm
	err := c.ShouldBind(&form)
	if err != nil {
		err = middleware.BindingError(err)
	} else {
		_, err = h.memos.Add(c.Request.Context(), form.Memo)
	}
	if err == nil {
		c.Redirect(http.StatusFound, "/memos")
		return
	}

	memos, listErr := h.memos.List(c.Request.Context())
	if listErr != nil {
		h.HandleError(c, listErr)
		return
	}
	h.RenderWithError(c, view.PageMemos, err, gin.H{"memos": memos})
}
