package llm

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jsamuelsen11/mealplan-assistant/internal/domain"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/config"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/httpclient"
	"github.com/jsamuelsen11/mealplan-assistant/internal/ports"
)

// Compile-time interface checks.
var (
	_ ports.Transport     = (*OllamaTransport)(nil)
	_ ports.HealthChecker = (*OllamaTransport)(nil)
)

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

// OllamaTransport calls a local Ollama server's non-streaming /api/chat.
type OllamaTransport struct {
	req         *Requester
	client      *httpclient.Client
	model       string
	temperature float64
	maxTokens   int
}

// NewOllamaTransport creates an OllamaTransport over client.
func NewOllamaTransport(cfg *config.LLMConfig, client *httpclient.Client, logger *slog.Logger) *OllamaTransport {
	return &OllamaTransport{
		req:         NewRequester(client, logger),
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Generate implements ports.Transport.
func (o *OllamaTransport) Generate(ctx context.Context, prompt string, opts ports.GenerateOptions) (string, error) {
	body := ollamaRequest{
		Model:   o.model,
		Options: ollamaOptions{Temperature: o.temperature, NumPredict: o.maxTokens},
	}
	if opts.SystemPrompt != "" {
		body.Messages = append(body.Messages, ollamaMessage{Role: "system", Content: opts.SystemPrompt})
	}
	body.Messages = append(body.Messages, ollamaMessage{Role: "user", Content: prompt})
	if opts.Temperature > 0 {
		body.Options.Temperature = opts.Temperature
	}
	if opts.MaxTokens > 0 {
		body.Options.NumPredict = opts.MaxTokens
	}

	var resp ollamaResponse
	if err := o.req.Post(ctx, "/api/chat", nil, body, &resp); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Message.Content) == "" {
		return "", domain.NewError(domain.KindEmptyResponse, "ollama: empty response")
	}
	return resp.Message.Content, nil
}

// Name implements ports.HealthChecker.
func (o *OllamaTransport) Name() string {
	return o.client.Name()
}

// HealthCheck reports the server's availability from the circuit breaker
// state.
func (o *OllamaTransport) HealthCheck(ctx context.Context) error {
	return o.client.HealthCheck(ctx)
}
