package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	apierrors "github.com/voicelane/voicelane/pkg/api/errors"
	"github.com/voicelane/voicelane/pkg/calls"
	"github.com/voicelane/voicelane/pkg/metrics"
	"github.com/voicelane/voicelane/pkg/models"
)

// CallHandler exposes the call lifecycle endpoints
type CallHandler struct {
	calls    *calls.Service
	metrics  *metrics.Metrics // optional
	validate *validator.Validate
}

// NewCallHandler creates a new call handler. m may be nil.
func NewCallHandler(callService *calls.Service, m *metrics.Metrics) *CallHandler {
	return &CallHandler{
		calls:    callService,
		metrics:  m,
		validate: validator.New(),
	}
}

// Initiate starts an outbound call through a voice provider
// POST /api/v1/calls
func (h *CallHandler) Initiate(c echo.Context) error {
	var req models.InitiateCallRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequest(c, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return apierrors.BadRequest(c, err.Error())
	}

	call, err := h.calls.InitiateCall(c.Request().Context(), req)
	if err != nil {
		return apierrors.Respond(c, err)
	}
	if h.metrics != nil {
		h.metrics.RecordCallInitiated()
	}

	return c.JSON(http.StatusCreated, call)
}

// Webhook ingests a provider status callback
// POST /api/v1/calls/webhook/:provider
func (h *CallHandler) Webhook(c echo.Context) error {
	if h.metrics != nil {
		h.metrics.RecordWebhookReceived()
	}

	var event models.CallWebhookEvent
	if err := c.Bind(&event); err != nil {
		return apierrors.BadRequest(c, "invalid webhook body")
	}
	event.Provider = c.Param("provider")
	if err := h.validate.Struct(event); err != nil {
		return apierrors.BadRequest(c, err.Error())
	}

	call, err := h.calls.HandleWebhook(c.Request().Context(), event)
	if err != nil {
		return apierrors.Respond(c, err)
	}

	return c.JSON(http.StatusOK, call)
}

// Get fetches a single call record
// GET /api/v1/calls/:id
func (h *CallHandler) Get(c echo.Context) error {
	call, err := h.calls.GetCall(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apierrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, call)
}

// List returns a user's call records, newest first
// GET /api/v1/calls?user_id=...&limit=50
func (h *CallHandler) List(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return apierrors.BadRequest(c, "user_id is required")
	}

	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			return apierrors.BadRequest(c, "limit must be between 1 and 500")
		}
		limit = parsed
	}

	records, err := h.calls.ListCalls(c.Request().Context(), userID, limit)
	if err != nil {
		return apierrors.Respond(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"calls": records,
		"count": len(records),
	})
}

// ListByLead returns the calls associated with a lead
// GET /api/v1/leads/:id/calls
func (h *CallHandler) ListByLead(c echo.Context) error {
	records, err := h.calls.ListLeadCalls(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apierrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"calls": records,
		"count": len(records),
	})
}

// Stats returns aggregate call statistics for a user
// GET /api/v1/calls/stats?user_id=...
func (h *CallHandler) Stats(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return apierrors.BadRequest(c, "user_id is required")
	}

	stats, err := h.calls.GetStats(c.Request().Context(), userID)
	if err != nil {
		return apierrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
