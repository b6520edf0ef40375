package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/jsamuelsen11/mealplan-assistant/internal/domain"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/config"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/httpclient"
	"github.com/jsamuelsen11/mealplan-assistant/internal/ports"
)

// Compile-time interface checks.
var (
	_ ports.Transport     = (*GeminiTransport)(nil)
	_ ports.HealthChecker = (*GeminiTransport)(nil)
)

// ProviderGemini and ProviderOllama are the accepted llm.provider values.
const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// apiKeyHeader carries the Gemini key. It is sent as a header rather than a
// query parameter so it never appears in span URLs.
const apiKeyHeader = "x-goog-api-key"

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// GeminiTransport calls POST /v1beta/models/{model}:generateContent.
type GeminiTransport struct {
	req         *Requester
	client      *httpclient.Client
	model       string
	apiKey      string
	temperature float64
	maxTokens   int
}

// NewGeminiTransport creates a GeminiTransport over client, whose base URL
// points at the API root.
func NewGeminiTransport(cfg *config.LLMConfig, client *httpclient.Client, logger *slog.Logger) *GeminiTransport {
	return &GeminiTransport{
		req:         NewRequester(client, logger),
		client:      client,
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Generate implements ports.Transport.
func (g *GeminiTransport) Generate(ctx context.Context, prompt string, opts ports.GenerateOptions) (string, error) {
	body := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     g.temperature,
			MaxOutputTokens: g.maxTokens,
		},
	}
	if opts.SystemPrompt != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: opts.SystemPrompt}}}
	}
	if opts.Temperature > 0 {
		body.GenerationConfig.Temperature = opts.Temperature
	}
	if opts.MaxTokens > 0 {
		body.GenerationConfig.MaxOutputTokens = opts.MaxTokens
	}

	header := http.Header{}
	header.Set(apiKeyHeader, g.apiKey)

	path := fmt.Sprintf("/v1beta/models/%s:generateContent", url.PathEscape(g.model))

	var resp geminiResponse
	if err := g.req.Post(ctx, path, header, body, &resp); err != nil {
		return "", err
	}
	return geminiText(&resp)
}

// geminiText pulls the first candidate's text out of resp.
func geminiText(resp *geminiResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", domain.NewError(domain.KindContentFiltered,
			"gemini: prompt blocked").WithDetails("block_reason", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", domain.NewError(domain.KindEmptyResponse, "gemini: no candidates")
	}

	c := resp.Candidates[0]
	var b strings.Builder
	for _, p := range c.Content.Parts {
		b.WriteString(p.Text)
	}
	text := b.String()

	if strings.TrimSpace(text) == "" {
		if c.FinishReason == "SAFETY" || c.FinishReason == "PROHIBITED_CONTENT" {
			return "", domain.NewError(domain.KindContentFiltered,
				"gemini: response blocked").WithDetails("finish_reason", c.FinishReason)
		}
		return "", domain.NewError(domain.KindEmptyResponse, "gemini: empty response")
	}
	return text, nil
}

// Name implements ports.HealthChecker.
func (g *GeminiTransport) Name() string {
	return g.client.Name()
}

// HealthCheck reports the provider's availability from the circuit breaker
// state; no network call is made.
func (g *GeminiTransport) HealthCheck(ctx context.Context) error {
	return g.client.HealthCheck(ctx)
}
