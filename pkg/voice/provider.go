package voice

import (
	"context"
	"time"

	"github.com/voicelane/voicelane/pkg/models"
)

// Provider is the interface for voice-AI call vendors. The vendors' own API
// contracts stay behind these two calls; everything else in the app works
// with normalized statuses.
type Provider interface {
	Name() string
	InitiateCall(ctx context.Context, from, to string) (*CallResult, error)
	GetCall(ctx context.Context, providerCallID string) (*CallStatus, error)
}

// CallResult holds the result of initiating a call
type CallResult struct {
	ProviderCallID string
	Status         string
	StartedAt      time.Time
}

// CallStatus holds the current state of a call as reported by the vendor
type CallStatus struct {
	ProviderCallID string
	Status         string
	Duration       int
	Transcript     string
	EndedAt        *time.Time
}

// Provider names
const (
	ProviderVapi   = "vapi"
	ProviderRetell = "retell"
)

// normalizeStatus maps vendor status strings onto the app's call statuses
func normalizeStatus(vendor string) string {
	switch vendor {
	case "queued", "registered", "initiated":
		return models.CallStatusInitiated
	case "ringing":
		return models.CallStatusRinging
	case "in-progress", "ongoing", "in_progress":
		return models.CallStatusInProgress
	case "ended", "completed":
		return models.CallStatusCompleted
	case "no-answer", "no_answer", "busy":
		return models.CallStatusNoAnswer
	case "error", "failed":
		return models.CallStatusFailed
	default:
		return models.CallStatusInProgress
	}
}
