package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/studyhive/studyhub-service/internal/repositories"
	"github.com/studyhive/studyhub-service/internal/services"
	"github.com/studyhive/studyhub-service/internal/utils"
)

// CommunityHandler handles community feed, post, like and comment endpoints
type CommunityHandler struct {
	BaseHandler
	service services.CommunityService
}

// NewCommunityHandler creates a new community handler
func NewCommunityHandler(service services.CommunityService, logger utils.Logger) *CommunityHandler {
	return &CommunityHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// CreatePost handles POST /community/posts
func (h *CommunityHandler) CreatePost(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	var req services.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	post, err := h.service.CreatePost(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// GetPost handles GET /community/posts/:id. Works anonymously; a token
// personalizes the like state.
func (h *CommunityHandler) GetPost(c *gin.Context) {
	userID := h.optionalUserID(c)

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	post, err := h.service.GetPost(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// UpdatePost handles PUT /community/posts/:id
func (h *CommunityHandler) UpdatePost(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	post, err := h.service.UpdatePost(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// DeletePost handles DELETE /community/posts/:id
func (h *CommunityHandler) DeletePost(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeletePost(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// GetFeed handles GET /community/posts. Works anonymously; a token
// personalizes the like state on each post.
func (h *CommunityHandler) GetFeed(c *gin.Context) {
	userID := h.optionalUserID(c)

	limit, offset := h.parsePagination(c)
	from, to := h.parseDateRange(c)

	filters := repositories.PostFilters{
		Limit:     limit,
		Offset:    offset,
		DateFrom:  from,
		DateTo:    to,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if ownerID := c.Query("owner_id"); ownerID != "" {
		filters.OwnerID = &ownerID
	}
	if raw := c.Query("material_id"); raw != "" {
		if materialID, err := strconv.ParseUint(raw, 10, 32); err == nil {
			id := uint(materialID)
			filters.MaterialID = &id
		}
	}

	feed, err := h.service.GetFeed(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, feed)
}

// LikePost handles POST /community/posts/:id/like
func (h *CommunityHandler) LikePost(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.LikePost(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post liked"})
}

// UnlikePost handles DELETE /community/posts/:id/like
func (h *CommunityHandler) UnlikePost(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.UnlikePost(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post unliked"})
}

// AddComment handles POST /community/posts/:id/comments
func (h *CommunityHandler) AddComment(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	postID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	comment, err := h.service.AddComment(c.Request.Context(), postID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// GetComments handles GET /community/posts/:id/comments. Works anonymously.
func (h *CommunityHandler) GetComments(c *gin.Context) {
	userID := h.optionalUserID(c)

	postID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	limit, offset := h.parsePagination(c)

	comments, err := h.service.GetComments(c.Request.Context(), postID, limit, offset, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}

// DeleteComment handles DELETE /community/comments/:id
func (h *CommunityHandler) DeleteComment(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteComment(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
