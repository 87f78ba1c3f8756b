package leads

import (
	"context"
	"errors"
	"fmt"

	"github.com/voicelane/voicelane/pkg/domain"
	"github.com/voicelane/voicelane/pkg/models"
	"github.com/voicelane/voicelane/pkg/phone"
	"github.com/voicelane/voicelane/pkg/store"
)

// Dashboard color-coding thresholds for lead scores. These intentionally do
// NOT match the fallback analyzer's tier thresholds (80/60/40); the two sets
// predate each other in the product and are kept separate until product
// reconciles them. See DESIGN.md.
const (
	UIHotThreshold  = 71
	UIWarmThreshold = 51
	UIColdThreshold = 31
)

// ScoreColorBucket maps a lead score to the dashboard's color bucket
func ScoreColorBucket(score int) string {
	switch {
	case score >= UIHotThreshold:
		return "hot"
	case score >= UIWarmThreshold:
		return "warm"
	case score >= UIColdThreshold:
		return "cold"
	default:
		return "unqualified"
	}
}

// Service handles lead operations
type Service struct {
	store *store.LeadStore
}

// NewService creates a new lead service
func NewService(leadStore *store.LeadStore) *Service {
	return &Service{store: leadStore}
}

// Create validates and creates a lead. The phone number, when present, is
// normalized to E.164.
func (s *Service) Create(ctx context.Context, req models.CreateLeadRequest) (*models.Lead, error) {
	if req.Name == "" {
		return nil, domain.NewValidationError("lead name is required")
	}

	normalized := req.Phone
	if req.Phone != "" {
		e164, err := phone.NormalizeE164(req.Phone, "US")
		if err != nil {
			return nil, domain.NewValidationError(fmt.Sprintf("invalid phone number: %v", err))
		}
		normalized = e164
	}

	lead := &models.Lead{
		UserID:  req.UserID,
		Name:    req.Name,
		Company: req.Company,
		Phone:   normalized,
		Email:   req.Email,
		Status:  models.LeadStatusNew,
	}
	if err := s.store.Create(ctx, lead); err != nil {
		return nil, domain.NewDatabaseError(err)
	}
	return lead, nil
}

// Get fetches a lead by id
func (s *Service) Get(ctx context.Context, id string) (*models.Lead, error) {
	lead, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.NewNotFoundError("lead")
		}
		return nil, domain.NewDatabaseError(err)
	}
	return lead, nil
}

// List returns a user's leads, newest first
func (s *Service) List(ctx context.Context, userID string, limit int) ([]*models.Lead, error) {
	leads, err := s.store.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, domain.NewDatabaseError(err)
	}
	return leads, nil
}

// UpdateStatus moves a lead through the pipeline
func (s *Service) UpdateStatus(ctx context.Context, id, status string) error {
	switch status {
	case models.LeadStatusNew, models.LeadStatusContacted, models.LeadStatusQualified, models.LeadStatusClosed:
	default:
		return domain.NewValidationError(fmt.Sprintf("invalid lead status: %s", status))
	}

	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.NewNotFoundError("lead")
		}
		return domain.NewDatabaseError(err)
	}
	return nil
}
