package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/voicelane/voicelane/pkg/analysis"
	apierrors "github.com/voicelane/voicelane/pkg/api/errors"
)

// AnalyzeHandler exposes the transcript analysis pipeline
type AnalyzeHandler struct {
	analysis *analysis.Service
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(analysisService *analysis.Service) *AnalyzeHandler {
	return &AnalyzeHandler{analysis: analysisService}
}

// AnalyzeRequest is the inbound trigger body
type AnalyzeRequest struct {
	Transcript string `json:"transcript"`
	CallID     string `json:"callId"`
}

// AnalyzeResponse is returned when an analysis was produced, even when the
// OpenAI path failed and the fallback supplied the result.
type AnalyzeResponse struct {
	Success             bool                     `json:"success"`
	Analysis            *analysis.Result         `json:"analysis"`
	LeadScore           int                      `json:"leadScore"`
	QualificationStatus string                   `json:"qualificationStatus"`
	AnalyzerUsed        string                   `json:"analyzerUsed"`
	OpenAIError         *analysis.PrimaryFailure `json:"openAIError,omitempty"`
	Persisted           bool                     `json:"persisted"`
}

// Analyze runs the transcript analysis for a call
// POST /api/v1/calls/analyze
func (h *AnalyzeHandler) Analyze(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 120*time.Second)
	defer cancel()

	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequest(c, "invalid request body")
	}

	outcome, err := h.analysis.AnalyzeCall(ctx, req.Transcript, req.CallID)
	if err != nil {
		return apierrors.Respond(c, err)
	}

	return c.JSON(http.StatusOK, toAnalyzeResponse(outcome))
}

// Reanalyze re-runs the analysis using the call's stored transcript
// POST /api/v1/calls/:id/reanalyze
func (h *AnalyzeHandler) Reanalyze(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 120*time.Second)
	defer cancel()

	outcome, err := h.analysis.AnalyzeStored(ctx, c.Param("id"))
	if err != nil {
		return apierrors.Respond(c, err)
	}

	return c.JSON(http.StatusOK, toAnalyzeResponse(outcome))
}

func toAnalyzeResponse(outcome *analysis.Outcome) AnalyzeResponse {
	return AnalyzeResponse{
		Success:             true,
		Analysis:            outcome.Result,
		LeadScore:           outcome.Result.LeadScore,
		QualificationStatus: string(outcome.Result.QualificationStatus),
		AnalyzerUsed:        outcome.Result.AnalyzerUsed,
		OpenAIError:         outcome.Result.OpenAIError,
		Persisted:           outcome.Persisted,
	}
}
