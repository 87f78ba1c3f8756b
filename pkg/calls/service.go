package calls

import (
	"context"
	"errors"
	"fmt"

	"github.com/voicelane/voicelane/pkg/analysis"
	"github.com/voicelane/voicelane/pkg/domain"
	"github.com/voicelane/voicelane/pkg/logger"
	"github.com/voicelane/voicelane/pkg/models"
	"github.com/voicelane/voicelane/pkg/phone"
	"github.com/voicelane/voicelane/pkg/store"
	"github.com/voicelane/voicelane/pkg/voice"
)

// AnalysisTrigger starts an analysis run for a call using its stored
// transcript. Wired to the analysis service; nil disables auto-analysis.
type AnalysisTrigger interface {
	AnalyzeStored(ctx context.Context, callID string) (*analysis.Outcome, error)
}

// Service handles the call lifecycle: initiating calls through a voice
// provider, ingesting provider callbacks, and handing completed transcripts
// to the analyzer.
type Service struct {
	store     *store.CallStore
	providers map[string]voice.Provider
	analyzer  AnalysisTrigger // optional
	logger    logger.Logger
}

// NewService creates a new call service
func NewService(callStore *store.CallStore, providers map[string]voice.Provider, analyzer AnalysisTrigger, log logger.Logger) *Service {
	if log == nil {
		log = logger.Default()
	}
	return &Service{
		store:     callStore,
		providers: providers,
		analyzer:  analyzer,
		logger:    log,
	}
}

// InitiateCall starts an outbound call with the requested provider and
// records it.
func (s *Service) InitiateCall(ctx context.Context, req models.InitiateCallRequest) (*models.CallRecord, error) {
	provider, ok := s.providers[req.Provider]
	if !ok {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown voice provider: %s", req.Provider))
	}

	toNumber, err := phone.NormalizeE164(req.PhoneNumber, "US")
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid phone number: %v", err))
	}

	result, err := provider.InitiateCall(ctx, req.FromNumber, toNumber)
	if err != nil {
		return nil, err
	}

	call := &models.CallRecord{
		UserID:         req.UserID,
		LeadID:         req.LeadID,
		Provider:       provider.Name(),
		ProviderCallID: result.ProviderCallID,
		PhoneNumber:    toNumber,
		Direction:      models.DirectionOutbound,
		Status:         result.Status,
		StartedAt:      &result.StartedAt,
	}
	if err := s.store.Create(ctx, call); err != nil {
		return nil, domain.NewDatabaseError(err)
	}

	s.logger.Info("call initiated",
		"call_id", call.ID, "provider", call.Provider, "to", toNumber)

	return call, nil
}

// HandleWebhook ingests a provider status callback. When the transcript
// arrives, it is stored and the analyzer is triggered automatically.
func (s *Service) HandleWebhook(ctx context.Context, event models.CallWebhookEvent) (*models.CallRecord, error) {
	call, err := s.store.GetByProviderCallID(ctx, event.Provider, event.ProviderCallID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.NewNotFoundError("call")
		}
		return nil, domain.NewDatabaseError(err)
	}

	if event.Status != "" {
		if err := s.store.UpdateStatus(ctx, call.ID, event.Status, event.Duration, nil); err != nil {
			return nil, domain.NewDatabaseError(err)
		}
	}

	if event.Transcript != "" {
		if err := s.store.SetTranscript(ctx, call.ID, event.Transcript); err != nil {
			return nil, domain.NewDatabaseError(err)
		}
		s.triggerAnalysis(ctx, call.ID)
	}

	updated, err := s.store.GetByID(ctx, call.ID)
	if err != nil {
		return nil, domain.NewDatabaseError(err)
	}
	return updated, nil
}

// SyncCall polls the provider for a call's current state and updates the
// record. Used by the periodic sync job.
func (s *Service) SyncCall(ctx context.Context, callID string) error {
	call, err := s.store.GetByID(ctx, callID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.NewNotFoundError("call")
		}
		return domain.NewDatabaseError(err)
	}

	provider, ok := s.providers[call.Provider]
	if !ok || call.ProviderCallID == "" {
		return nil
	}

	status, err := provider.GetCall(ctx, call.ProviderCallID)
	if err != nil {
		return err
	}

	if err := s.store.UpdateStatus(ctx, call.ID, status.Status, status.Duration, status.EndedAt); err != nil {
		return domain.NewDatabaseError(err)
	}

	if status.Transcript != "" && !call.HasTranscript() {
		if err := s.store.SetTranscript(ctx, call.ID, status.Transcript); err != nil {
			return domain.NewDatabaseError(err)
		}
		s.triggerAnalysis(ctx, call.ID)
	}

	return nil
}

// triggerAnalysis runs the analyzer for a freshly arrived transcript. A
// failed analysis never fails the ingest; the cron sweep retries pending
// calls later.
func (s *Service) triggerAnalysis(ctx context.Context, callID string) {
	if s.analyzer == nil {
		return
	}
	if _, err := s.analyzer.AnalyzeStored(ctx, callID); err != nil {
		s.logger.Error("automatic analysis failed", "call_id", callID, "error", err)
	}
}

// GetCall fetches a call record by id
func (s *Service) GetCall(ctx context.Context, callID string) (*models.CallRecord, error) {
	call, err := s.store.GetByID(ctx, callID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.NewNotFoundError("call")
		}
		return nil, domain.NewDatabaseError(err)
	}
	return call, nil
}

// ListCalls returns a user's call records, newest first
func (s *Service) ListCalls(ctx context.Context, userID string, limit int) ([]*models.CallRecord, error) {
	calls, err := s.store.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, domain.NewDatabaseError(err)
	}
	return calls, nil
}

// ListLeadCalls returns the calls associated with a lead
func (s *Service) ListLeadCalls(ctx context.Context, leadID string) ([]*models.CallRecord, error) {
	calls, err := s.store.ListByLead(ctx, leadID)
	if err != nil {
		return nil, domain.NewDatabaseError(err)
	}
	return calls, nil
}

// GetStats returns aggregate call statistics for a user
func (s *Service) GetStats(ctx context.Context, userID string) (*models.CallStats, error) {
	stats, err := s.store.StatsByUser(ctx, userID)
	if err != nil {
		return nil, domain.NewDatabaseError(err)
	}
	return stats, nil
}
