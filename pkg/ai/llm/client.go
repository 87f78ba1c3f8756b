package llm

import "context"

// Client is the interface for chat-completion backends. The API key is
// passed per call because keys are stored per user, not per process.
type Client interface {
	Chat(ctx context.Context, apiKey string, req ChatRequest) (*ChatResponse, error)
}

// Ensure implementations satisfy the interface
var _ Client = (*OpenAIClient)(nil)
