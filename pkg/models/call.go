package models

import "time"

// Call direction values
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Call status values (provider statuses are normalized to these)
const (
	CallStatusInitiated  = "initiated"
	CallStatusRinging    = "ringing"
	CallStatusInProgress = "in_progress"
	CallStatusCompleted  = "completed"
	CallStatusFailed     = "failed"
	CallStatusNoAnswer   = "no_answer"
)

// CallRecord represents one phone call made or received through a voice
// provider. Transcript is nil until the call completes; the analysis columns
// are nil until the analyzer runs.
type CallRecord struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	LeadID         *string    `json:"lead_id,omitempty"`
	Provider       string     `json:"provider"`
	ProviderCallID string     `json:"provider_call_id,omitempty"`
	PhoneNumber    string     `json:"phone_number"`
	Direction      string     `json:"direction"`
	Status         string     `json:"status"`
	Duration       int        `json:"duration"`
	Transcript     *string    `json:"transcript,omitempty"`
	AIAnalysis     *string    `json:"ai_analysis,omitempty"`
	LeadScore      *int       `json:"lead_score,omitempty"`
	Qualification  *string    `json:"qualification_status,omitempty"`
	AnalyzerUsed   *string    `json:"analyzer_used,omitempty"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// HasTranscript reports whether the call has a non-empty transcript.
func (c *CallRecord) HasTranscript() bool {
	return c.Transcript != nil && *c.Transcript != ""
}

// CallStats holds aggregate statistics for a user's calls
type CallStats struct {
	TotalCalls      int     `json:"total_calls"`
	CompletedCalls  int     `json:"completed_calls"`
	FailedCalls     int     `json:"failed_calls"`
	AnalyzedCalls   int     `json:"analyzed_calls"`
	InboundCalls    int     `json:"inbound_calls"`
	OutboundCalls   int     `json:"outbound_calls"`
	TotalDuration   int     `json:"total_duration"`
	AverageDuration float64 `json:"average_duration"`
	AverageScore    float64 `json:"average_lead_score"`
	SuccessRate     float64 `json:"success_rate"`
}

// InitiateCallRequest is the request body for starting an outbound call
type InitiateCallRequest struct {
	UserID      string  `json:"user_id" validate:"required"`
	LeadID      *string `json:"lead_id,omitempty"`
	Provider    string  `json:"provider" validate:"required,oneof=vapi retell"`
	FromNumber  string  `json:"from_number"`
	PhoneNumber string  `json:"phone_number" validate:"required"`
}

// CallWebhookEvent is the normalized shape of provider status callbacks
type CallWebhookEvent struct {
	Provider       string `json:"provider" validate:"required,oneof=vapi retell"`
	ProviderCallID string `json:"provider_call_id" validate:"required"`
	Status         string `json:"status"`
	Duration       int    `json:"duration"`
	Transcript     string `json:"transcript"`
}
