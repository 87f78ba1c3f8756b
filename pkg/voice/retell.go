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

// RetellProvider is a thin HTTP client for the Retell call API
type RetellProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewRetellProvider creates a new Retell provider
func NewRetellProvider(baseURL, apiKey string) *RetellProvider {
	if baseURL == "" {
		baseURL = "https://api.retellai.com"
	}
	return &RetellProvider{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Name returns the provider identifier
func (p *RetellProvider) Name() string { return ProviderRetell }

type retellCall struct {
	CallID         string `json:"call_id"`
	CallStatus     string `json:"call_status"`
	Transcript     string `json:"transcript"`
	StartTimestamp int64  `json:"start_timestamp"`
	EndTimestamp   int64  `json:"end_timestamp"`
}

// InitiateCall starts an outbound call through Retell
func (p *RetellProvider) InitiateCall(ctx context.Context, from, to string) (*CallResult, error) {
	body := map[string]string{
		"from_number": from,
		"to_number":   to,
	}

	var call retellCall
	if err := p.do(ctx, http.MethodPost, "/v2/create-phone-call", body, &call); err != nil {
		return nil, err
	}

	return &CallResult{
		ProviderCallID: call.CallID,
		Status:         normalizeStatus(call.CallStatus),
		StartedAt:      time.Now().UTC(),
	}, nil
}

// GetCall fetches the current state of a call from Retell
func (p *RetellProvider) GetCall(ctx context.Context, providerCallID string) (*CallStatus, error) {
	var call retellCall
	if err := p.do(ctx, http.MethodGet, "/v2/get-call/"+providerCallID, nil, &call); err != nil {
		return nil, err
	}

	status := &CallStatus{
		ProviderCallID: call.CallID,
		Status:         normalizeStatus(call.CallStatus),
		Transcript:     call.Transcript,
	}

	if call.EndTimestamp > 0 {
		ended := time.UnixMilli(call.EndTimestamp).UTC()
		status.EndedAt = &ended
		if call.StartTimestamp > 0 {
			status.Duration = int((call.EndTimestamp - call.StartTimestamp) / 1000)
		}
	}

	return status, nil
}

func (p *RetellProvider) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal retell request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build retell request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return domain.NewUpstreamError(fmt.Sprintf("retell request failed: %v", err), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.NewUpstreamError("failed to read retell response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.NewUpstreamError(
			fmt.Sprintf("retell returned status %d: %s", resp.StatusCode, string(data)), nil)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return domain.NewParsingError("retell response is not valid JSON", err)
	}
	return nil
}
