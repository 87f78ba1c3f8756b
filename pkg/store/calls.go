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

// ErrNotFound is returned when a record doesn't exist
var ErrNotFound = errors.New("record not found")

// CallStore persists call records
type CallStore struct {
	db *sql.DB
}

// NewCallStore creates a new call store
func NewCallStore(db *sql.DB) *CallStore {
	return &CallStore{db: db}
}

const callColumns = `id, user_id, lead_id, provider, provider_call_id, phone_number,
	direction, status, duration, transcript, ai_analysis, lead_score,
	qualification_status, analyzer_used, started_at, ended_at, created_at, updated_at`

// Create inserts a new call record. A missing ID is generated.
func (s *CallStore) Create(ctx context.Context, call *models.CallRecord) error {
	if call.ID == "" {
		call.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	call.CreatedAt = now
	call.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO call_records (`+callColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		call.ID, call.UserID, call.LeadID, call.Provider, call.ProviderCallID,
		call.PhoneNumber, call.Direction, call.Status, call.Duration,
		call.Transcript, call.AIAnalysis, call.LeadScore, call.Qualification,
		call.AnalyzerUsed, call.StartedAt, call.EndedAt, call.CreatedAt, call.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create call record: %w", err)
	}
	return nil
}

// GetByID fetches a call record by its identifier
func (s *CallStore) GetByID(ctx context.Context, id string) (*models.CallRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+callColumns+` FROM call_records WHERE id = $1`, id)
	return scanCall(row)
}

// GetByProviderCallID fetches a call record by the vendor's call identifier
func (s *CallStore) GetByProviderCallID(ctx context.Context, provider, providerCallID string) (*models.CallRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+callColumns+` FROM call_records WHERE provider = $1 AND provider_call_id = $2`,
		provider, providerCallID)
	return scanCall(row)
}

// UpdateStatus updates call progress fields reported by the provider
func (s *CallStore) UpdateStatus(ctx context.Context, id, status string, duration int, endedAt *time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE call_records
		SET status = $1, duration = $2, ended_at = $3, updated_at = $4
		WHERE id = $5`,
		status, duration, endedAt, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update call status: %w", err)
	}
	return requireRow(res)
}

// SetTranscript stores the completed call's transcript
func (s *CallStore) SetTranscript(ctx context.Context, id, transcript string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE call_records SET transcript = $1, updated_at = $2 WHERE id = $3`,
		transcript, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set transcript: %w", err)
	}
	return requireRow(res)
}

// UpdateAnalysis writes the full analysis JSON together with the denormalized
// lead_score and qualification_status columns in a single statement, keeping
// the call record and its attached result in sync.
func (s *CallStore) UpdateAnalysis(ctx context.Context, id, analysisJSON string, leadScore int, qualification, analyzerUsed string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE call_records
		SET ai_analysis = $1, lead_score = $2, qualification_status = $3,
			analyzer_used = $4, updated_at = $5
		WHERE id = $6`,
		analysisJSON, leadScore, qualification, analyzerUsed, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update analysis: %w", err)
	}
	return requireRow(res)
}

// ListByUser returns a user's call records, newest first
func (s *CallStore) ListByUser(ctx context.Context, userID string, limit int) ([]*models.CallRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+callColumns+` FROM call_records
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list calls: %w", err)
	}
	defer rows.Close()
	return scanCalls(rows)
}

// ListByLead returns the call records associated with a lead, newest first
func (s *CallStore) ListByLead(ctx context.Context, leadID string) ([]*models.CallRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+callColumns+` FROM call_records
		WHERE lead_id = $1 ORDER BY created_at DESC`,
		leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lead calls: %w", err)
	}
	defer rows.Close()
	return scanCalls(rows)
}

// ListPendingAnalysis returns calls that have a transcript but no analysis
// yet. The cron sweep and the webhook handler use this to pick up work.
func (s *CallStore) ListPendingAnalysis(ctx context.Context, limit int) ([]*models.CallRecord, error) {
	if limit <= 0 {
		limit = 25
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+callColumns+` FROM call_records
		WHERE transcript IS NOT NULL AND transcript != '' AND ai_analysis IS NULL
		ORDER BY created_at ASC LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending calls: %w", err)
	}
	defer rows.Close()
	return scanCalls(rows)
}

// ListInFlight returns calls that are still in a non-terminal status
func (s *CallStore) ListInFlight(ctx context.Context, limit int) ([]*models.CallRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+callColumns+` FROM call_records
		WHERE status IN ($1, $2, $3)
		ORDER BY created_at ASC LIMIT $4`,
		models.CallStatusInitiated, models.CallStatusRinging, models.CallStatusInProgress, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list in-flight calls: %w", err)
	}
	defer rows.Close()
	return scanCalls(rows)
}

// StatsByUser aggregates call statistics for a user
func (s *CallStore) StatsByUser(ctx context.Context, userID string) (*models.CallStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT status, direction, duration, lead_score, analyzer_used
		FROM call_records WHERE user_id = $1`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query call stats: %w", err)
	}
	defer rows.Close()

	stats := &models.CallStats{}
	var totalDuration, totalScore, scored int

	for rows.Next() {
		var status, direction string
		var duration int
		var leadScore sql.NullInt64
		var analyzerUsed sql.NullString
		if err := rows.Scan(&status, &direction, &duration, &leadScore, &analyzerUsed); err != nil {
			return nil, fmt.Errorf("failed to scan call stats: %w", err)
		}

		stats.TotalCalls++
		switch status {
		case models.CallStatusCompleted:
			stats.CompletedCalls++
		case models.CallStatusFailed, models.CallStatusNoAnswer:
			stats.FailedCalls++
		}
		if direction == models.DirectionInbound {
			stats.InboundCalls++
		} else {
			stats.OutboundCalls++
		}
		if analyzerUsed.Valid {
			stats.AnalyzedCalls++
		}
		if leadScore.Valid {
			totalScore += int(leadScore.Int64)
			scored++
		}
		totalDuration += duration
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate call stats: %w", err)
	}

	stats.TotalDuration = totalDuration
	if stats.TotalCalls > 0 {
		stats.AverageDuration = float64(totalDuration) / float64(stats.TotalCalls)
		stats.SuccessRate = float64(stats.CompletedCalls) / float64(stats.TotalCalls) * 100
	}
	if scored > 0 {
		stats.AverageScore = float64(totalScore) / float64(scored)
	}

	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCall(row rowScanner) (*models.CallRecord, error) {
	var c models.CallRecord
	var leadID, transcript, aiAnalysis, qualification, analyzerUsed sql.NullString
	var leadScore sql.NullInt64
	var startedAt, endedAt sql.NullTime

	err := row.Scan(
		&c.ID, &c.UserID, &leadID, &c.Provider, &c.ProviderCallID, &c.PhoneNumber,
		&c.Direction, &c.Status, &c.Duration, &transcript, &aiAnalysis, &leadScore,
		&qualification, &analyzerUsed, &startedAt, &endedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan call record: %w", err)
	}

	c.LeadID = nullStringPtr(leadID)
	c.Transcript = nullStringPtr(transcript)
	c.AIAnalysis = nullStringPtr(aiAnalysis)
	c.Qualification = nullStringPtr(qualification)
	c.AnalyzerUsed = nullStringPtr(analyzerUsed)
	if leadScore.Valid {
		v := int(leadScore.Int64)
		c.LeadScore = &v
	}
	if startedAt.Valid {
		t := startedAt.Time
		c.StartedAt = &t
	}
	if endedAt.Valid {
		t := endedAt.Time
		c.EndedAt = &t
	}

	return &c, nil
}

func scanCalls(rows *sql.Rows) ([]*models.CallRecord, error) {
	var calls []*models.CallRecord
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		calls = append(calls, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate call records: %w", err)
	}
	return calls, nil
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
