package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/supply-desk-api/internal/models"
	"github.com/noah-isme/supply-desk-api/internal/service"
	appErrors "github.com/noah-isme/supply-desk-api/pkg/errors"
	"github.com/noah-isme/supply-desk-api/pkg/response"
)

type exportService interface {
	ExportRequests(ctx context.Context, filter models.RequestFilter, format string) (*service.ExportResult, error)
}

// ExportHandler renders the request ledger as downloadable files.
type ExportHandler struct {
	exports exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(exports exportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Requests godoc
// @Summary Export the request ledger
// @Tags Exports
// @Produce text/csv
// @Param format query string false "csv or pdf"
// @Param status query string false "Comma separated statuses"
// @Param handler_id query string false "Handler participant id"
// @Success 200 {file} binary
// @Router /exports/requests [get]
func (h *ExportHandler) Requests(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export service not configured"))
		return
	}

	filter := models.RequestFilter{
		AuthorID:  strings.TrimSpace(c.Query("author_id")),
		HandlerID: strings.TrimSpace(c.Query("handler_id")),
		Tag:       strings.TrimSpace(c.Query("tag")),
	}
	if rawStatus := c.Query("status"); rawStatus != "" {
		for _, part := range strings.Split(rawStatus, ",") {
			status := models.RequestStatus(strings.ToUpper(strings.TrimSpace(part)))
			if status == "" {
				continue
			}
			if !status.Valid() {
				response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown status filter"))
				return
			}
			filter.Status = append(filter.Status, status)
		}
	}

	result, err := h.exports.ExportRequests(c.Request.Context(), filter, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
