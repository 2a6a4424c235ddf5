package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studyhive/studyhub-service/internal/models"
	"github.com/studyhive/studyhub-service/internal/repositories"
	"github.com/studyhive/studyhub-service/internal/services"
	"github.com/studyhive/studyhub-service/internal/utils"
)

// MaterialHandler handles study material endpoints
type MaterialHandler struct {
	BaseHandler
	service services.MaterialService
}

// NewMaterialHandler creates a new material handler
func NewMaterialHandler(service services.MaterialService, logger utils.Logger) *MaterialHandler {
	return &MaterialHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Create handles POST /materials
func (h *MaterialHandler) Create(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	var req services.CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	material, err := h.service.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, material)
}

// GetByID handles GET /materials/:id
func (h *MaterialHandler) GetByID(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	material, err := h.service.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, material)
}

// Update handles PUT /materials/:id
func (h *MaterialHandler) Update(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	material, err := h.service.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, material)
}

// Delete handles DELETE /materials/:id
func (h *MaterialHandler) Delete(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Material deleted successfully"})
}

// List handles GET /materials (the caller's own materials)
func (h *MaterialHandler) List(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	filters := h.parseMaterialFilters(c)

	list, err := h.service.ListByOwner(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// ListPublic handles GET /materials/public
func (h *MaterialHandler) ListPublic(c *gin.Context) {
	filters := h.parseMaterialFilters(c)

	list, err := h.service.ListPublic(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// Search handles GET /materials/search
func (h *MaterialHandler) Search(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Query parameter 'q' is required"})
		return
	}

	filters := h.parseMaterialFilters(c)

	list, err := h.service.Search(c.Request.Context(), query, filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetStats handles GET /materials/stats
func (h *MaterialHandler) GetStats(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	stats, err := h.service.GetStats(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *MaterialHandler) parseMaterialFilters(c *gin.Context) repositories.MaterialFilters {
	limit, offset := h.parsePagination(c)
	from, to := h.parseDateRange(c)

	filters := repositories.MaterialFilters{
		Limit:     limit,
		Offset:    offset,
		DateFrom:  from,
		DateTo:    to,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if raw := c.Query("type"); raw != "" {
		materialType := models.MaterialType(raw)
		filters.Type = &materialType
	}
	if subject := c.Query("subject"); subject != "" {
		filters.Subject = &subject
	}

	return filters
}
