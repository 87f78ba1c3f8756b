package voice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voicelane/voicelane/pkg/domain"
	"github.com/voicelane/voicelane/pkg/models"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		vendor string
		want   string
	}{
		{"queued", models.CallStatusInitiated},
		{"registered", models.CallStatusInitiated},
		{"ringing", models.CallStatusRinging},
		{"in-progress", models.CallStatusInProgress},
		{"ongoing", models.CallStatusInProgress},
		{"ended", models.CallStatusCompleted},
		{"completed", models.CallStatusCompleted},
		{"no-answer", models.CallStatusNoAnswer},
		{"busy", models.CallStatusNoAnswer},
		{"error", models.CallStatusFailed},
		{"something-new", models.CallStatusInProgress},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeStatus(tt.vendor), "vendor status %q", tt.vendor)
	}
}

func TestVapiProvider_InitiateCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/call", r.URL.Path)
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))

		var body map[string]map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "+14155550111", body["customer"]["number"])

		json.NewEncoder(w).Encode(map[string]string{"id": "vapi-1", "status": "queued"})
	}))
	defer srv.Close()

	p := NewVapiProvider(srv.URL, "key-123")
	result, err := p.InitiateCall(context.Background(), "+14155550100", "+14155550111")
	require.NoError(t, err)

	assert.Equal(t, "vapi-1", result.ProviderCallID)
	assert.Equal(t, models.CallStatusInitiated, result.Status)
}

func TestVapiProvider_GetCall(t *testing.T) {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ended := started.Add(150 * time.Second)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/call/vapi-1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{
			"id":         "vapi-1",
			"status":     "ended",
			"transcript": "Agent: Hello\nProspect: Yes interested",
			"startedAt":  started.Format(time.RFC3339),
			"endedAt":    ended.Format(time.RFC3339),
		})
	}))
	defer srv.Close()

	p := NewVapiProvider(srv.URL, "key-123")
	status, err := p.GetCall(context.Background(), "vapi-1")
	require.NoError(t, err)

	assert.Equal(t, models.CallStatusCompleted, status.Status)
	assert.Equal(t, 150, status.Duration)
	assert.NotEmpty(t, status.Transcript)
	require.NotNil(t, status.EndedAt)
	assert.True(t, status.EndedAt.Equal(ended))
}

func TestVapiProvider_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid api key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewVapiProvider(srv.URL, "bad-key")
	_, err := p.InitiateCall(context.Background(), "+14155550100", "+14155550111")
	require.Error(t, err)
	assert.True(t, domain.IsUpstream(err))
	assert.Contains(t, err.Error(), "401")
}

func TestRetellProvider_InitiateCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/create-phone-call", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "+14155550100", body["from_number"])
		assert.Equal(t, "+14155550111", body["to_number"])

		json.NewEncoder(w).Encode(map[string]string{"call_id": "retell-1", "call_status": "registered"})
	}))
	defer srv.Close()

	p := NewRetellProvider(srv.URL, "key-123")
	result, err := p.InitiateCall(context.Background(), "+14155550100", "+14155550111")
	require.NoError(t, err)

	assert.Equal(t, "retell-1", result.ProviderCallID)
	assert.Equal(t, models.CallStatusInitiated, result.Status)
}

func TestRetellProvider_GetCall(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(95 * time.Second)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/get-call/retell-1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"call_id":         "retell-1",
			"call_status":     "ended",
			"transcript":      "Prospect: no thanks",
			"start_timestamp": start.UnixMilli(),
			"end_timestamp":   end.UnixMilli(),
		})
	}))
	defer srv.Close()

	p := NewRetellProvider(srv.URL, "key-123")
	status, err := p.GetCall(context.Background(), "retell-1")
	require.NoError(t, err)

	assert.Equal(t, models.CallStatusCompleted, status.Status)
	assert.Equal(t, 95, status.Duration)
	require.NotNil(t, status.EndedAt)
}

func TestRetellProvider_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway timeout</html>"))
	}))
	defer srv.Close()

	p := NewRetellProvider(srv.URL, "key-123")
	_, err := p.GetCall(context.Background(), "retell-1")
	require.Error(t, err)
	assert.True(t, domain.IsParsing(err))
}
