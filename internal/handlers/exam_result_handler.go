package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/studyhive/studyhub-service/internal/repositories"
	"github.com/studyhive/studyhub-service/internal/services"
	"github.com/studyhive/studyhub-service/internal/utils"
)

// ExamResultHandler handles exam result endpoints
type ExamResultHandler struct {
	BaseHandler
	service services.ExamResultService
}

// NewExamResultHandler creates a new exam result handler
func NewExamResultHandler(service services.ExamResultService, logger utils.Logger) *ExamResultHandler {
	return &ExamResultHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Record handles POST /exam-results
func (h *ExamResultHandler) Record(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	var req services.CreateExamResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	result, err := h.service.Record(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetByID handles GET /exam-results/:id
func (h *ExamResultHandler) GetByID(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.service.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Delete handles DELETE /exam-results/:id
func (h *ExamResultHandler) Delete(c *gin.Context) {
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

	c.JSON(http.StatusOK, gin.H{"message": "Exam result deleted successfully"})
}

// List handles GET /exam-results
func (h *ExamResultHandler) List(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	limit, offset := h.parsePagination(c)
	from, to := h.parseDateRange(c)

	filters := repositories.ExamResultFilters{
		Limit:     limit,
		Offset:    offset,
		DateFrom:  from,
		DateTo:    to,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if subject := c.Query("subject"); subject != "" {
		filters.Subject = &subject
	}
	if raw := c.Query("material_id"); raw != "" {
		if materialID, err := strconv.ParseUint(raw, 10, 32); err == nil {
			id := uint(materialID)
			filters.MaterialID = &id
		}
	}

	list, err := h.service.ListByOwner(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetStats handles GET /exam-results/stats
func (h *ExamResultHandler) GetStats(c *gin.Context) {
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
