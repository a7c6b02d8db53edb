package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	identityapp "github.com/portal/backend/internal/application/identity"
	"github.com/portal/backend/internal/infrastructure/view"
	"github.com/portal/backend/internal/interfaces/http/dto"
	"github.com/portal/backend/internal/interfaces/http/middleware"
)

// ProfileHandler serves the signed-in user's profile
type ProfileHandler struct {
	BaseHandler
	profiles *identityapp.ProfileService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(base BaseHandler, profiles *identityapp.ProfileService) *ProfileHandler {
	return &ProfileHandler{BaseHandler: base, profiles: profiles}
}

// DisplayProfile renders the profile form
func (h *ProfileHandler) DisplayProfile(c *gin.Context) {
	user, err := h.profiles.Get(c.Request.Context(), session(c).UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Render(c, http.StatusOK, view.PageProfile, gin.H{"user": user})
}

// HandleProfileUpdate validates and saves the profile
func (h *ProfileHandler) HandleProfileUpdate(c *gin.Context) {
	var form dto.ProfileForm
	if err := c.ShouldBind(&form); err != nil {
		user, getErr := h.profiles.Get(c.Request.Context(), session(c).UserID)
		if getErr != nil {
			h.HandleError(c, getErr)
			return
		}
		h.RenderWithError(c, view.PageProfile, middleware.BindingError(err), gin.H{"user": user})
		return
	}

	user, err := h.profiles.Update(c.Request.Context(), session(c).UserID, identityapp.ProfileInput{
		FirstName:   form.FirstName,
		LastName:    form.LastName,
		SSN:         form.SSN,
		DOB:         form.DOB,
		Address:     form.Address,
		BankAcc:     form.BankAcc,
		BankRouting: form.BankRouting,
		Website:     form.Website,
	})
	if err != nil {
		if user == nil {
			h.HandleError(c, err)
			return
		}
		h.RenderWithError(c, view.PageProfile, err, gin.H{"user": user})
		return
	}

	h.Render(c, http.StatusOK, view.PageProfile, gin.H{
		"user":          user,
		"updateSuccess": "Profile updated successfully",
	})
}
