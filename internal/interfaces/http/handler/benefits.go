package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	identityapp "github.com/portal/backend/internal/application/identity"
	"github.com/portal/backend/internal/infrastructure/view"
	"github.com/portal/backend/internal/interfaces/http/dto"
	"github.com/portal/backend/internal/interfaces/http/middleware"
)

// BenefitsHandler lists benefit start dates and lets admins change them
type BenefitsHandler struct {
	BaseHandler
	benefits *identityapp.BenefitsService
}

// NewBenefitsHandler creates a new BenefitsHandler
func NewBenefitsHandler(base BaseHandler, benefits *identityapp.BenefitsService) *BenefitsHandler {
	return &BenefitsHandler{BaseHandler: base, benefits: benefits}
}

// DisplayBenefits renders every regular user with their start date
func (h *BenefitsHandler) DisplayBenefits(c *gin.Context) {
	users, err := h.benefits.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Render(c, http.StatusOK, view.PageBenefits, gin.H{"users": users})
}

// UpdateBenefits sets one user's start date and redisplays the list
func (h *BenefitsHandler) UpdateBenefits(c *gin.Context) {
	ctx := c.Request.Context()

	var form dto.BenefitsForm
	err := c.ShouldBind(&form)
	if err != nil {
		err = middleware.BindingError(err)
	} else {
		err = h.benefits.UpdateStartDate(ctx, identityapp.BenefitUpdateInput{
			UserID:    form.UserID,
			StartDate: form.BenefitStartDate,
		})
	}

	users, listErr := h.benefits.List(ctx)
	if listErr != nil {
		h.HandleError(c, listErr)
		return
	}
	if err != nil {
		h.RenderWithError(c, view.PageBenefits, err, gin.H{"users": users})
		return
	}
	h.Render(c, http.StatusOK, view.PageBenefits, gin.H{
		"users":         users,
		"updateSuccess": "Benefit start date updated",
	})
}
