package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/voicelane/voicelane/pkg/ai/llm"
	"github.com/voicelane/voicelane/pkg/domain"
	"github.com/voicelane/voicelane/pkg/logger"
	"github.com/voicelane/voicelane/pkg/models"
	"github.com/voicelane/voicelane/pkg/store"
)

// CallStore is the slice of call persistence the analyzer needs
type CallStore interface {
	GetByID(ctx context.Context, id string) (*models.CallRecord, error)
	SetTranscript(ctx context.Context, id, transcript string) error
	UpdateAnalysis(ctx context.Context, id, analysisJSON string, leadScore int, qualification, analyzerUsed string) error
}

// LeadScoreWriter propagates a call's score onto its associated lead
type LeadScoreWriter interface {
	UpdateScore(ctx context.Context, id string, score int, qualification string) error
}

// CredentialSource resolves per-user OpenAI API keys
type CredentialSource interface {
	OpenAIKey(ctx context.Context, userID string) (string, error)
}

// MetricsRecorder records analysis outcomes. Nil-safe via the service.
type MetricsRecorder interface {
	RecordAnalysis(analyzer string, duration time.Duration)
}

// Outcome is the full result of one analysis run. Persisted reports whether
// the write-back to the call record succeeded; a persistence failure never
// discards the computed analysis.
type Outcome struct {
	Result     *Result
	Persisted  bool
	PersistErr error
}

// Service runs the transcript analysis pipeline: OpenAI first, keyword
// fallback when the primary path fails for any reason.
type Service struct {
	calls   CallStore
	leads   LeadScoreWriter // optional
	creds   CredentialSource
	llm     llm.Client
	metrics MetricsRecorder // optional
	logger  logger.Logger
}

// NewService creates a new analysis service. leads and metrics may be nil.
func NewService(calls CallStore, leads LeadScoreWriter, creds CredentialSource, llmClient llm.Client, metrics MetricsRecorder, log logger.Logger) *Service {
	if log == nil {
		log = logger.Default()
	}
	return &Service{
		calls:   calls,
		leads:   leads,
		creds:   creds,
		llm:     llmClient,
		metrics: metrics,
		logger:  log,
	}
}

// AnalyzeCall analyzes the given transcript for the given call and persists
// the result onto the call record. The returned error is non-nil only for
// hard failures (validation, unknown call, lookup failure, or both analysis
// paths failing); a primary-path failure alone degrades to the fallback and
// is reported inside the outcome.
func (s *Service) AnalyzeCall(ctx context.Context, transcript, callID string) (*Outcome, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, domain.NewValidationError("transcript is required")
	}
	if strings.TrimSpace(callID) == "" {
		return nil, domain.NewValidationError("callId is required")
	}

	call, err := s.calls.GetByID(ctx, callID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.NewNotFoundError("call")
		}
		return nil, domain.NewDatabaseError(err)
	}

	start := time.Now()
	result, primaryErr := s.runPrimary(ctx, call.UserID, transcript)
	if primaryErr != nil {
		s.logger.Warn("primary analysis failed, using fallback",
			"call_id", callID, "error", primaryErr)

		failure := &PrimaryFailure{
			Kind:    domain.GetErrorCode(primaryErr),
			Message: primaryErr.Error(),
		}

		result, err = s.runFallback(transcript)
		if err != nil {
			return nil, domain.NewAnalysisError(primaryErr, err)
		}
		result.AnalyzerUsed = AnalyzerFallback
		result.OpenAIError = failure
	} else {
		result.AnalyzerUsed = AnalyzerOpenAI
	}

	if s.metrics != nil {
		s.metrics.RecordAnalysis(result.AnalyzerUsed, time.Since(start))
	}

	outcome := &Outcome{Result: result}
	if err := s.persist(ctx, call, transcript, result); err != nil {
		s.logger.Error("failed to persist analysis", "call_id", callID, "error", err)
		outcome.PersistErr = err
	} else {
		outcome.Persisted = true
	}

	s.logger.Info("call analyzed",
		"call_id", callID,
		"analyzer", result.AnalyzerUsed,
		"lead_score", result.LeadScore,
		"qualification", string(result.QualificationStatus),
		"persisted", outcome.Persisted)

	return outcome, nil
}

// AnalyzeStored re-runs the analysis for a call using its stored transcript.
// Used by the Reanalyze action and the pending-analysis sweep.
func (s *Service) AnalyzeStored(ctx context.Context, callID string) (*Outcome, error) {
	if strings.TrimSpace(callID) == "" {
		return nil, domain.NewValidationError("callId is required")
	}

	call, err := s.calls.GetByID(ctx, callID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.NewNotFoundError("call")
		}
		return nil, domain.NewDatabaseError(err)
	}
	if !call.HasTranscript() {
		return nil, domain.NewValidationError("call has no transcript to analyze")
	}

	return s.AnalyzeCall(ctx, *call.Transcript, callID)
}

// runPrimary executes the OpenAI analysis path. Every failure mode returns
// an error for the caller to catch; this path never degrades on its own.
func (s *Service) runPrimary(ctx context.Context, userID, transcript string) (*Result, error) {
	apiKey, err := s.creds.OpenAIKey(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp, err := s.llm.Chat(ctx, apiKey, llm.ChatRequest{
		Messages: []llm.ChatMessage{
			{Role: "system", Content: llm.LeadQualificationSystemPrompt},
			{Role: "user", Content: transcript},
		},
	})
	if err != nil {
		return nil, err
	}

	return ParseResult(resp.Message)
}

// runFallback runs the keyword heuristic. It is pure arithmetic over a
// string and should not fail; a panic here is converted to an error so the
// caller can report the double failure.
func (s *Service) runFallback(transcript string) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("fallback analyzer panicked: %v", r)
		}
	}()
	return AnalyzeFallback(transcript), nil
}

// persist writes the analysis back to the call record, keeping the
// denormalized lead_score and qualification_status columns in sync with the
// attached result, and propagates the score to the associated lead. A call
// analyzed from a caller-supplied transcript gets that transcript stored
// too, so no record ever holds an analysis without one.
func (s *Service) persist(ctx context.Context, call *models.CallRecord, transcript string, result *Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return domain.NewInternalError(err)
	}

	if !call.HasTranscript() {
		if err := s.calls.SetTranscript(ctx, call.ID, transcript); err != nil {
			return domain.NewDatabaseError(err)
		}
	}

	err = s.calls.UpdateAnalysis(ctx, call.ID, string(payload),
		result.LeadScore, string(result.QualificationStatus), result.AnalyzerUsed)
	if err != nil {
		return domain.NewDatabaseError(err)
	}

	if s.leads != nil && call.LeadID != nil {
		if err := s.leads.UpdateScore(ctx, *call.LeadID, result.LeadScore, string(result.QualificationStatus)); err != nil {
			// The call record is the source of truth; a lead update failure
			// is logged but does not fail the persist step.
			s.logger.Warn("failed to propagate score to lead",
				"lead_id", *call.LeadID, "error", err)
		}
	}

	return nil
}
