package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studyhive/studyhub-service/internal/services"
	"github.com/studyhive/studyhub-service/internal/utils"
	"github.com/studyhive/studyhub-service/internal/validator"
)

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// BaseHandler carries the dependencies shared by all resource handlers.
type BaseHandler struct {
	logger utils.Logger
}

// NewBaseHandler creates a base handler
func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// getUserID extracts the authenticated user id set by the auth middleware.
func (h *BaseHandler) getUserID(c *gin.Context) (string, bool) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
		return "", false
	}
	return userID, true
}

// optionalUserID returns the user id on optional-auth routes, or the empty
// string for anonymous requests.
func (h *BaseHandler) optionalUserID(c *gin.Context) string {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		return ""
	}
	return userID
}

// parseIDParam parses a numeric path parameter.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid " + name + " parameter"})
		return 0, false
	}
	return uint(id), true
}

// parsePagination reads limit/offset query parameters with sane bounds.
func (h *BaseHandler) parsePagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// parseDateRange reads optional RFC 3339 date_from/date_to query parameters.
func (h *BaseHandler) parseDateRange(c *gin.Context) (from, to *time.Time) {
	if raw := c.Query("date_from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			from = &t
		}
	}
	if raw := c.Query("date_to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			to = &t
		}
	}
	return from, to
}

// handleServiceError maps service-layer errors to HTTP responses.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	logger := utils.FromContext(c, h.logger)

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrs,
		})
		return
	}

	switch {
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error()})
	case services.IsPermissionError(err):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: err.Error()})
	case services.IsPersistenceError(err):
		logger.Error("Persistence error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	default:
		logger.Error("Unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}
