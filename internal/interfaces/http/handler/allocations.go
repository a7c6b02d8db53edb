package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	retirementapp "github.com/portal/backend/internal/application/retirement"
	"github.com/portal/backend/internal/infrastructure/view"
)

// AllocationsHandler shows asset allocations
type AllocationsHandler struct {
	BaseHandler
	allocations *retirementapp.AllocationsService
}

// NewAllocationsHandler creates a new AllocationsHandler
func NewAllocationsHandler(base BaseHandler, allocations *retirementapp.AllocationsService) *AllocationsHandler {
	return &AllocationsHandler{BaseHandler: base, allocations: allocations}
}

// DisplayAllocations renders /allocations/:userId?threshold=N
func (h *AllocationsHandler) DisplayAllocations(c *gin.Context) {
	s := session(c)
	threshold := c.Query("threshold")

	rows, err := h.allocations.ForUser(c.Request.Context(),
		retirementapp.Viewer{UserID: s.UserID, IsAdmin: s.IsAdmin},
		c.Param("userId"),
		threshold,
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Render(c, http.StatusOK, view.PageAllocations, gin.H{
		"allocations": rows,
		"threshold":   threshold,
	})
}
