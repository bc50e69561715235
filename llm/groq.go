package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const (
	defaultGroqBaseURL = "https://api.groq.com/openai/v1"
	defaultGroqModel   = "llama-3.3-70b-versatile"

	// groqCallTimeout bounds every outbound completion call. The
	// pipeline converts a timeout into the degraded-output policy of
	// the stage that made the call.
	groqCallTimeout = 40 * time.Second
)

// GroqClient talks to the Groq chat-completions API. Groq exposes an
// OpenAI-compatible surface, so the go-openai client is pointed at the
// Groq base URL.
type GroqClient struct {
	client *openai.Client
	model  string
}

// NewGroqClient builds a client from the given credentials. The API key
// is mandatory; baseURL and model fall back to Groq defaults.
func NewGroqClient(apiKey, baseURL, model string) (*GroqClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("groq API key is required")
	}
	if baseURL == "" {
		baseURL = defaultGroqBaseURL
	}
	if model == "" {
		model = defaultGroqModel
		slog.Warn("GROQ_MODEL not set, using default", "model", model)
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	slog.Info("Initializing Groq client", "model", model, "base_url", cfg.BaseURL)
	return &GroqClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// Chat implements the Client interface.
func (g *GroqClient) Chat(ctx context.Context, messages []Message, params GenerationParams) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, groqCallTimeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:    g.model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	if params.Temperature != nil {
		req.Temperature = *params.Temperature
	}
	if params.TopP != nil {
		req.TopP = *params.TopP
	}
	if params.MaxTokens != nil {
		req.MaxTokens = *params.MaxTokens
	}
	if len(params.Stop) > 0 {
		req.Stop = params.Stop
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		slog.Error("Groq API call failed", "error", err)
		return "", fmt.Errorf("groq API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		slog.Warn("Groq returned no choices")
		return "", fmt.Errorf("groq returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
