package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studyhive/studyhub-service/internal/models"
	"github.com/studyhive/studyhub-service/internal/repositories"
	"github.com/studyhive/studyhub-service/internal/services"
	"github.com/studyhive/studyhub-service/internal/utils"
)

// ActivityHandler exposes the caller's activity history. Entries are written
// by the other services; this surface is read-only.
type ActivityHandler struct {
	BaseHandler
	service services.ActivityService
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(service services.ActivityService, logger utils.Logger) *ActivityHandler {
	return &ActivityHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// List handles GET /activities
func (h *ActivityHandler) List(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	limit, offset := h.parsePagination(c)
	from, to := h.parseDateRange(c)

	filters := repositories.ActivityFilters{
		Limit:    limit,
		Offset:   offset,
		DateFrom: from,
		DateTo:   to,
	}

	if raw := c.Query("type"); raw != "" {
		activityType := models.ActivityType(raw)
		filters.Type = &activityType
	}

	list, err := h.service.ListByOwner(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}
