package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/voicelane/voicelane/pkg/models"
)

// LeadStore persists leads
type LeadStore struct {
	db *sql.DB
}

// NewLeadStore creates a new lead store
func NewLeadStore(db *sql.DB) *LeadStore {
	return &LeadStore{db: db}
}

const leadColumns = `id, user_id, name, company, phone, email, status,
	lead_score, qualification_status, created_at, updated_at`

// Create inserts a new lead. A missing ID is generated.
func (s *LeadStore) Create(ctx context.Context, lead *models.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.Status == "" {
		lead.Status = models.LeadStatusNew
	}
	now := time.Now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leads (`+leadColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		lead.ID, lead.UserID, lead.Name, lead.Company, lead.Phone, lead.Email,
		lead.Status, lead.LeadScore, lead.Qualification, lead.CreatedAt, lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

// GetByID fetches a lead by its identifier
func (s *LeadStore) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	return scanLead(row)
}

// ListByUser returns a user's leads, newest first
func (s *LeadStore) ListByUser(ctx context.Context, userID string, limit int) ([]*models.Lead, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+leadColumns+` FROM leads
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leads: %w", err)
	}
	return leads, nil
}

// UpdateScore writes the lead's score and qualification tier from its most
// recent analyzed call.
func (s *LeadStore) UpdateScore(ctx context.Context, id string, score int, qualification string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE leads
		SET lead_score = $1, qualification_status = $2, updated_at = $3
		WHERE id = $4`,
		score, qualification, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update lead score: %w", err)
	}
	return requireRow(res)
}

// UpdateStatus updates the lead's pipeline status
func (s *LeadStore) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE leads SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update lead status: %w", err)
	}
	return requireRow(res)
}

func scanLead(row rowScanner) (*models.Lead, error) {
	var l models.Lead
	var leadScore sql.NullInt64
	var qualification sql.NullString

	err := row.Scan(
		&l.ID, &l.UserID, &l.Name, &l.Company, &l.Phone, &l.Email, &l.Status,
		&leadScore, &qualification, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan lead: %w", err)
	}

	if leadScore.Valid {
		v := int(leadScore.Int64)
		l.LeadScore = &v
	}
	l.Qualification = nullStringPtr(qualification)

	return &l, nil
}
