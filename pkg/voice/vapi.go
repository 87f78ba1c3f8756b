package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/voicelane/voicelane/pkg/domain"
)

// VapiProvider is a thin HTTP client for the Vapi call API
type VapiProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewVapiProvider creates a new Vapi provider
func NewVapiProvider(baseURL, apiKey string) *VapiProvider {
	if baseURL == "" {
		baseURL = "https://api.vapi.ai"
	}
	return &VapiProvider{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Name returns the provider identifier
func (p *VapiProvider) Name() string { return ProviderVapi }

type vapiCall struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	Transcript string `json:"transcript"`
	StartedAt  string `json:"startedAt"`
	EndedAt    string `json:"endedAt"`
}

// InitiateCall starts an outbound call through Vapi
func (p *VapiProvider) InitiateCall(ctx context.Context, from, to string) (*CallResult, error) {
	body := map[string]any{
		"phoneNumber": map[string]string{"number": from},
		"customer":    map[string]string{"number": to},
	}

	var call vapiCall
	if err := p.do(ctx, http.MethodPost, "/call", body, &call); err != nil {
		return nil, err
	}

	return &CallResult{
		ProviderCallID: call.ID,
		Status:         normalizeStatus(call.Status),
		StartedAt:      time.Now().UTC(),
	}, nil
}

// GetCall fetches the current state of a call from Vapi
func (p *VapiProvider) GetCall(ctx context.Context, providerCallID string) (*CallStatus, error) {
	var call vapiCall
	if err := p.do(ctx, http.MethodGet, "/call/"+providerCallID, nil, &call); err != nil {
		return nil, err
	}

	status := &CallStatus{
		ProviderCallID: call.ID,
		Status:         normalizeStatus(call.Status),
		Transcript:     call.Transcript,
	}

	started, startedOK := parseVapiTime(call.StartedAt)
	if ended, ok := parseVapiTime(call.EndedAt); ok {
		status.EndedAt = &ended
		if startedOK {
			status.Duration = int(ended.Sub(started).Seconds())
		}
	}

	return status, nil
}

func (p *VapiProvider) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal vapi request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build vapi request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return domain.NewUpstreamError(fmt.Sprintf("vapi request failed: %v", err), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.NewUpstreamError("failed to read vapi response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.NewUpstreamError(
			fmt.Sprintf("vapi returned status %d: %s", resp.StatusCode, string(data)), nil)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return domain.NewParsingError("vapi response is not valid JSON", err)
	}
	return nil
}

func parseVapiTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
