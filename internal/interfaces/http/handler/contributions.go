package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	retirementapp "github.com/portal/backend/internal/application/retirement"
	"github.com/portal/backend/internal/infrastructure/view"
	"github.com/portal/backend/internal/interfaces/http/dto"
	"github.com/portal/backend/internal/interfaces/http/middleware"
)

// ContributionsHandler serves 401k contribution percentages
type ContributionsHandler struct {
	BaseHandler
	contributions *retirementapp.ContributionsService
}

// NewContributionsHandler creates a new ContributionsHandler
func NewContributionsHandler(base BaseHandler, contributions *retirementapp.ContributionsService) *ContributionsHandler {
	return &ContributionsHandler{BaseHandler: base, contributions: contributions}
}

// Display renders the current percentages
func (h *ContributionsHandler) Display(c *gin.Context) {
	current, err := h.contributions.Get(c.Request.Context(), session(c).UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Render(c, http.StatusOK, view.PageContributions, gin.H{"contributions": current})
}

// HandleUpdate saves new percentages or redisplays the stored ones with
// the validation error.
func (h *ContributionsHandler) HandleUpdate(c *gin.Context) {
	ctx := c.Request.Context()
	userID := session(c).UserID

	var form dto.ContributionsForm
	if err := c.ShouldBind(&form); err != nil {
		h.redisplay(c, middleware.BindingError(err))
		return
	}

	updated, err := h.contributions.Update(ctx, userID, form.PreTax, form.AfterTax, form.Roth)
	if err != nil {
		h.redisplay(c, err)
		return
	}
	h.Render(c, http.StatusOK, view.PageContributions, gin.H{
		"contributions": updated,
		"updateSuccess": "Contribution election updated successfully.",
	})
}

func (h *ContributionsHandler) redisplay(c *gin.Context, err error) {
	current, getErr := h.contributions.Get(c.Request.Context(), session(c).UserID)
	if getErr != nil {
		h.HandleError(c, getErr)
		return
	}
	h.RenderWithError(c, view.PageContributions, err, gin.H{"contributions": current})
}
