package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	apierrors "github.com/voicelane/voicelane/pkg/api/errors"
	"github.com/voicelane/voicelane/pkg/export"
	"github.com/voicelane/voicelane/pkg/metrics"
)

// ExportHandler exposes the call export endpoints
type ExportHandler struct {
	export  *export.Service
	metrics *metrics.Metrics
}

// NewExportHandler creates a new export handler. m may be nil.
func NewExportHandler(exportService *export.Service, m *metrics.Metrics) *ExportHandler {
	return &ExportHandler{export: exportService, metrics: m}
}

// Create generates an export file for a user's calls
// POST /api/v1/exports
func (h *ExportHandler) Create(c echo.Context) error {
	var req struct {
		UserID string `json:"user_id"`
		Format string `json:"format"`
	}
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequest(c, "invalid request body")
	}

	result, err := h.export.ExportCalls(c.Request().Context(), req.UserID, req.Format)
	if err != nil {
		return apierrors.Respond(c, err)
	}

	if h.metrics != nil {
		h.metrics.ExportsCreated.Inc()
	}

	return c.JSON(http.StatusCreated, result)
}

// Download streams a previously generated export file
// GET /api/v1/exports/:filename
func (h *ExportHandler) Download(c echo.Context) error {
	path, err := h.export.ResolveFile(c.Param("filename"))
	if err != nil {
		return apierrors.Respond(c, err)
	}
	return c.Attachment(path, c.Param("filename"))
}
