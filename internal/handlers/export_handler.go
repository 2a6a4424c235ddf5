package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studyhive/studyhub-service/internal/services"
	"github.com/studyhive/studyhub-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves spreadsheet exports of the caller's data
type ExportHandler struct {
	BaseHandler
	service services.ExportService
}

// NewExportHandler creates a new export handler
func NewExportHandler(service services.ExportService, logger utils.Logger) *ExportHandler {
	return &ExportHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ExportExamResults handles GET /exports/exam-results
func (h *ExportHandler) ExportExamResults(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	data, fileName, err := h.service.ExportExamResults(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ExportMaterials handles GET /exports/materials
func (h *ExportHandler) ExportMaterials(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	data, fileName, err := h.service.ExportMaterials(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, xlsxContentType, data)
}
