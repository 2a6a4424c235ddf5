package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studyhive/studyhub-service/internal/repositories"
	"github.com/studyhive/studyhub-service/internal/services"
	"github.com/studyhive/studyhub-service/internal/utils"
)

// DocumentHandler handles document upload and retrieval endpoints
type DocumentHandler struct {
	BaseHandler
	service services.DocumentService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(service services.DocumentService, logger utils.Logger) *DocumentHandler {
	return &DocumentHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Upload handles POST /documents. The file arrives as multipart form data
// under the "file" field.
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Multipart field 'file' is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	req := services.UploadDocumentRequest{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		File:        file,
	}

	document, err := h.service.Upload(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, document)
}

// GetByID handles GET /documents/:id
func (h *DocumentHandler) GetByID(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	document, err := h.service.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, document)
}

// Download handles GET /documents/:id/download and streams the blob.
func (h *DocumentHandler) Download(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	reader, document, err := h.service.Download(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", document.FileName))
	c.Header("Content-Type", document.ContentType)
	if document.Size > 0 {
		c.Header("Content-Length", fmt.Sprintf("%d", document.Size))
	}

	if _, err := io.Copy(c.Writer, reader); err != nil {
		utils.FromContext(c, h.logger).Warn("Document stream interrupted", "document_id", id, "error", err)
	}
}

// Delete handles DELETE /documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
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

	c.JSON(http.StatusOK, gin.H{"message": "Document deleted successfully"})
}

// List handles GET /documents
func (h *DocumentHandler) List(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	limit, offset := h.parsePagination(c)
	from, to := h.parseDateRange(c)

	filters := repositories.DocumentFilters{
		Limit:     limit,
		Offset:    offset,
		DateFrom:  from,
		DateTo:    to,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	list, err := h.service.ListByOwner(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}
