package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sgsgita/moderation-backend/internal/common"
	"github.com/sgsgita/moderation-backend/internal/service"
)

// ExportHandler handles queue snapshot exports
type ExportHandler struct {
	exportService *service.ExportService
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(exportService *service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// Export handles GET /api/v1/queue/export
// @Summary Export queue items
// @Description Renders the filtered queue as a CSV or JSON download. With archive=true the snapshot is uploaded to object storage instead and a presigned URL is returned.
// @Tags queue
// @Produce json
// @Param format query string false "csv (default) or json"
// @Param archive query bool false "Upload to object storage and return a URL"
// @Param state query string false "Comma-separated states"
// @Param posting_type query string false "Posting type filter"
// @Param from query string false "Created-at lower bound (YYYY-MM-DD)"
// @Param to query string false "Created-at upper bound (YYYY-MM-DD, inclusive)"
// @Success 200 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Security BearerAuth
// @Router /queue/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	filter, verr := parseQueueFilter(c)
	if verr != nil {
		respondModerationError(c, verr)
		return
	}

	format := c.DefaultQuery("format", service.ExportFormatCSV)
	archive := c.Query("archive") == "true"

	result, err := h.exportService.Export(c.Request.Context(), filter, format, archive)
	if errors.Is(err, service.ErrArchiveUnavailable) {
		common.ErrorResponse(c, http.StatusServiceUnavailable, "Archive storage not configured", nil)
		return
	}
	if err != nil {
		respondModerationError(c, err)
		return
	}

	if archive {
		common.SuccessResponse(c, result, nil)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
