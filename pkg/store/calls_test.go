package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voicelane/voicelane/pkg/models"
)

func newTestCall(userID string) *models.CallRecord {
	return &models.CallRecord{
		UserID:         userID,
		Provider:       "vapi",
		ProviderCallID: "vapi-abc123",
		PhoneNumber:    "+14155550100",
		Direction:      models.DirectionOutbound,
		Status:         models.CallStatusInitiated,
	}
}

func TestCallStore_CreateAndGet(t *testing.T) {
	db := setupDB(t)
	store := NewCallStore(db.DB)
	ctx := context.Background()

	call := newTestCall("user-1")
	require.NoError(t, store.Create(ctx, call))
	assert.NotEmpty(t, call.ID, "create should generate an id")

	got, err := store.GetByID(ctx, call.ID)
	require.NoError(t, err)
	assert.Equal(t, call.ID, got.ID)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "vapi", got.Provider)
	assert.Nil(t, got.Transcript)
	assert.Nil(t, got.LeadScore)
}

func TestCallStore_GetByID_NotFound(t *testing.T) {
	db := setupDB(t)
	store := NewCallStore(db.DB)

	_, err := store.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCallStore_GetByProviderCallID(t *testing.T) {
	db := setupDB(t)
	store := NewCallStore(db.DB)
	ctx := context.Background()

	call := newTestCall("user-1")
	require.NoError(t, store.Create(ctx, call))

	got, err := store.GetByProviderCallID(ctx, "vapi", "vapi-abc123")
	require.NoError(t, err)
	assert.Equal(t, call.ID, got.ID)

	_, err = store.GetByProviderCallID(ctx, "retell", "vapi-abc123")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCallStore_UpdateStatus(t *testing.T) {
	db := setupDB(t)
	store := NewCallStore(db.DB)
	ctx := context.Background()

	call := newTestCall("user-1")
	require.NoError(t, store.Create(ctx, call))

	ended := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.UpdateStatus(ctx, call.ID, models.CallStatusCompleted, 245, &ended))

	got, err := store.GetByID(ctx, call.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CallStatusCompleted, got.Status)
	assert.Equal(t, 245, got.Duration)
	require.NotNil(t, got.EndedAt)

	assert.ErrorIs(t, store.UpdateStatus(ctx, "missing", models.CallStatusCompleted, 0, nil), ErrNotFound)
}

func TestCallStore_UpdateAnalysisKeepsColumnsInSync(t *testing.T) {
	db := setupDB(t)
	store := NewCallStore(db.DB)
	ctx := context.Background()

	call := newTestCall("user-1")
	require.NoError(t, store.Create(ctx, call))
	require.NoError(t, store.SetTranscript(ctx, call.ID, "yes great"))

	analysisJSON := `{"leadScore":90,"qualificationStatus":"Hot"}`
	require.NoError(t, store.UpdateAnalysis(ctx, call.ID, analysisJSON, 90, "Hot", "openai"))

	got, err := store.GetByID(ctx, call.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AIAnalysis)
	assert.Equal(t, analysisJSON, *got.AIAnalysis)
	require.NotNil(t, got.LeadScore)
	assert.Equal(t, 90, *got.LeadScore)
	require.NotNil(t, got.Qualification)
	assert.Equal(t, "Hot", *got.Qualification)
	require.NotNil(t, got.AnalyzerUsed)
	assert.Equal(t, "openai", *got.AnalyzerUsed)
}

func TestCallStore_ListByUser(t *testing.T) {
	db := setupDB(t)
	store := NewCallStore(db.DB)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Create(ctx, newTestCall("user-1")))
	}
	require.NoError(t, store.Create(ctx, newTestCall("user-2")))

	calls, err := store.ListByUser(ctx, "user-1", 10)
	require.NoError(t, err)
	assert.Len(t, calls, 3)

	limited, err := store.ListByUser(ctx, "user-1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestCallStore_ListByLead(t *testing.T) {
	db := setupDB(t)
	store := NewCallStore(db.DB)
	ctx := context.Background()

	leadID := "lead-1"
	withLead := newTestCall("user-1")
	withLead.LeadID = &leadID
	require.NoError(t, store.Create(ctx, withLead))
	require.NoError(t, store.Create(ctx, newTestCall("user-1")))

	calls, err := store.ListByLead(ctx, leadID)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, withLead.ID, calls[0].ID)
}

func TestCallStore_ListPendingAnalysis(t *testing.T) {
	db := setupDB(t)
	store := NewCallStore(db.DB)
	ctx := context.Background()

	pending := newTestCall("user-1")
	require.NoError(t, store.Create(ctx, pending))
	require.NoError(t, store.SetTranscript(ctx, pending.ID, "yes great"))

	analyzed := newTestCall("user-1")
	require.NoError(t, store.Create(ctx, analyzed))
	require.NoError(t, store.SetTranscript(ctx, analyzed.ID, "no thanks"))
	require.NoError(t, store.UpdateAnalysis(ctx, analyzed.ID, `{}`, 10, "Unqualified", "fallback"))

	noTranscript := newTestCall("user-1")
	require.NoError(t, store.Create(ctx, noTranscript))

	calls, err := store.ListPendingAnalysis(ctx, 10)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, pending.ID, calls[0].ID)
}

func TestCallStore_ListInFlight(t *testing.T) {
	db := setupDB(t)
	store := NewCallStore(db.DB)
	ctx := context.Background()

	inFlight := newTestCall("user-1")
	require.NoError(t, store.Create(ctx, inFlight))

	done := newTestCall("user-1")
	done.Status = models.CallStatusCompleted
	require.NoError(t, store.Create(ctx, done))

	calls, err := store.ListInFlight(ctx, 10)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, inFlight.ID, calls[0].ID)
}

func TestCallStore_StatsByUser(t *testing.T) {
	db := setupDB(t)
	store := NewCallStore(db.DB)
	ctx := context.Background()

	completed := newTestCall("user-1")
	completed.Status = models.CallStatusCompleted
	completed.Duration = 100
	require.NoError(t, store.Create(ctx, completed))
	require.NoError(t, store.UpdateAnalysis(ctx, completed.ID, `{}`, 80, "Hot", "openai"))

	failed := newTestCall("user-1")
	failed.Status = models.CallStatusFailed
	require.NoError(t, store.Create(ctx, failed))

	inbound := newTestCall("user-1")
	inbound.Direction = models.DirectionInbound
	inbound.Status = models.CallStatusCompleted
	inbound.Duration = 100
	require.NoError(t, store.Create(ctx, inbound))
	require.NoError(t, store.UpdateAnalysis(ctx, inbound.ID, `{}`, 40, "Cold", "fallback"))

	stats, err := store.StatsByUser(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalCalls)
	assert.Equal(t, 2, stats.CompletedCalls)
	assert.Equal(t, 1, stats.FailedCalls)
	assert.Equal(t, 2, stats.AnalyzedCalls)
	assert.Equal(t, 1, stats.InboundCalls)
	assert.Equal(t, 2, stats.OutboundCalls)
	assert.Equal(t, 200, stats.TotalDuration)
	assert.InDelta(t, 66.67, stats.AverageDuration, 0.01)
	assert.InDelta(t, 60.0, stats.AverageScore, 0.01)
	assert.InDelta(t, 66.67, stats.SuccessRate, 0.01)
}

func TestCallStore_StatsByUser_Empty(t *testing.T) {
	db := setupDB(t)
	store := NewCallStore(db.DB)

	stats, err := store.StatsByUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalCalls)
	assert.Zero(t, stats.AverageDuration)
	assert.Zero(t, stats.SuccessRate)
}

func TestCallStore_UpdateStatusDuration(t *testing.T) {
	db := setupDB(t)
	store := NewCallStore(db.DB)
	ctx := context.Background()

	call := newTestCall("user-1")
	require.NoError(t, store.Create(ctx, call))
	require.NoError(t, store.UpdateStatus(ctx, call.ID, models.CallStatusInProgress, 0, nil))

	got, err := store.GetByID(ctx, call.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CallStatusInProgress, got.Status)
	assert.Nil(t, got.EndedAt)
}
