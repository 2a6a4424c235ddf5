package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studyhive/studyhub-service/internal/services"
	"github.com/studyhive/studyhub-service/internal/utils"
)

// ProfileHandler handles profile endpoints
type ProfileHandler struct {
	BaseHandler
	service services.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(service services.ProfileService, logger utils.Logger) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// GetMe handles GET /profiles/me
func (h *ProfileHandler) GetMe(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	profile, err := h.service.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetByID handles GET /profiles/:id
func (h *ProfileHandler) GetByID(c *gin.Context) {
	if _, ok := h.getUserID(c); !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid id parameter"})
		return
	}

	profile, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Update handles PUT /profiles/me
func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	profile, err := h.service.Update(c.Request.Context(), userID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UploadAvatar handles POST /profiles/me/avatar. The image arrives as
// multipart form data under the "avatar" field.
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Multipart field 'avatar' is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	profile, err := h.service.UploadAvatar(c.Request.Context(), userID, fileHeader.Filename, file, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// DeleteMe handles DELETE /profiles/me
func (h *ProfileHandler) DeleteMe(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteAccount(c.Request.Context(), userID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}

// Search handles GET /profiles/search
func (h *ProfileHandler) Search(c *gin.Context) {
	if _, ok := h.getUserID(c); !ok {
		return
	}

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Query parameter 'q' is required"})
		return
	}

	limit, offset := h.parsePagination(c)

	profiles, total, err := h.service.Search(c.Request.Context(), query, limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profiles": profiles,
		"total":    total,
	})
}
