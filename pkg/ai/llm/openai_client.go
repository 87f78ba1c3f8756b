package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/voicelane/voicelane/pkg/domain"
	"github.com/voicelane/voicelane/pkg/logger"
)

// OpenAIClient sends chat-completion requests to the OpenAI API
type OpenAIClient struct {
	baseURL     string
	model       string
	temperature float32
	maxTokens   int
	httpClient  *http.Client
	logger      logger.Logger
}

// Config for the OpenAI client
type Config struct {
	BaseURL        string        // default: https://api.openai.com/v1
	Model          string        // default: gpt-4o-mini
	Temperature    float32       // default: 0.3 (kept low for deterministic analysis)
	MaxTokens      int           // default: 2000
	RequestTimeout time.Duration // default: 60s
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(cfg Config, log logger.Logger) *OpenAIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.3
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2000
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if log == nil {
		log = logger.Default()
	}

	return &OpenAIClient{
		baseURL:     cfg.BaseURL,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient:  &http.Client{Timeout: cfg.RequestTimeout},
		logger:      log,
	}
}

// ChatMessage represents a chat message
type ChatMessage struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// ChatRequest represents a chat completion request
type ChatRequest struct {
	Messages    []ChatMessage `json:"messages"`
	Temperature float32       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// ChatResponse represents a chat completion response
type ChatResponse struct {
	Message      string `json:"message"`
	TokensUsed   int    `json:"tokens_used"`
	FinishReason string `json:"finish_reason"`
}

// Chat sends a chat completion request to OpenAI using the given API key
func (c *OpenAIClient) Chat(ctx context.Context, apiKey string, req ChatRequest) (*ChatResponse, error) {
	clientCfg := openai.DefaultConfig(apiKey)
	clientCfg.BaseURL = c.baseURL
	clientCfg.HTTPClient = c.httpClient
	client := openai.NewClientWithConfig(clientCfg)

	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, msg := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, chatReq)
	duration := time.Since(start)

	if err != nil {
		c.logger.Warn("openai chat failed", "error", err, "duration", duration.String())
		return nil, domain.NewUpstreamError(vendorMessage(err), err)
	}

	if len(resp.Choices) == 0 {
		return nil, domain.NewUpstreamError("no response choices from openai", nil)
	}

	c.logger.Debug("openai chat completed",
		"model", c.model,
		"tokens", resp.Usage.TotalTokens,
		"duration", duration.String())

	return &ChatResponse{
		Message:      resp.Choices[0].Message.Content,
		TokensUsed:   resp.Usage.TotalTokens,
		FinishReason: string(resp.Choices[0].FinishReason),
	}, nil
}

// vendorMessage extracts the vendor's own error message when present
func vendorMessage(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("openai api error (status %d): %s", apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Sprintf("openai request error (status %d): %v", reqErr.HTTPStatusCode, reqErr.Err)
	}
	return fmt.Sprintf("openai request failed: %v", err)
}
