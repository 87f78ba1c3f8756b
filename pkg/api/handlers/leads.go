package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	apierrors "github.com/voicelane/voicelane/pkg/api/errors"
	"github.com/voicelane/voicelane/pkg/leads"
	"github.com/voicelane/voicelane/pkg/models"
)

// LeadHandler exposes the lead CRUD endpoints
type LeadHandler struct {
	leads    *leads.Service
	validate *validator.Validate
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leadService *leads.Service) *LeadHandler {
	return &LeadHandler{
		leads:    leadService,
		validate: validator.New(),
	}
}

// leadView decorates a lead with its dashboard color bucket
type leadView struct {
	*models.Lead
	ScoreColor string `json:"score_color,omitempty"`
}

func toLeadView(lead *models.Lead) leadView {
	view := leadView{Lead: lead}
	if lead.LeadScore != nil {
		view.ScoreColor = leads.ScoreColorBucket(*lead.LeadScore)
	}
	return view
}

// Create creates a new lead
// POST /api/v1/leads
func (h *LeadHandler) Create(c echo.Context) error {
	var req models.CreateLeadRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequest(c, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return apierrors.BadRequest(c, err.Error())
	}

	lead, err := h.leads.Create(c.Request().Context(), req)
	if err != nil {
		return apierrors.Respond(c, err)
	}

	return c.JSON(http.StatusCreated, toLeadView(lead))
}

// Get fetches a lead by id
// GET /api/v1/leads/:id
func (h *LeadHandler) Get(c echo.Context) error {
	lead, err := h.leads.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apierrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, toLeadView(lead))
}

// List returns a user's leads, newest first
// GET /api/v1/leads?user_id=...&limit=50
func (h *LeadHandler) List(c echo.Context) error {
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

	records, err := h.leads.List(c.Request().Context(), userID, limit)
	if err != nil {
		return apierrors.Respond(c, err)
	}

	views := make([]leadView, len(records))
	for i, lead := range records {
		views[i] = toLeadView(lead)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"leads": views,
		"count": len(views),
	})
}

// UpdateStatus moves a lead through the pipeline
// PATCH /api/v1/leads/:id/status
func (h *LeadHandler) UpdateStatus(c echo.Context) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequest(c, "invalid request body")
	}

	if err := h.leads.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status); err != nil {
		return apierrors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": req.Status})
}
