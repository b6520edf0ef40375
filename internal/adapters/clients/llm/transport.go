package llm

import (
	"fmt"
	"log/slog"

	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/config"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/httpclient"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/telemetry"
	"github.com/jsamuelsen11/mealplan-assistant/internal/ports"
)

// Transport is a model transport that also reports its health.
type Transport interface {
	ports.Transport
	ports.HealthChecker
}

// New builds the transport selected by cfg.Provider, with its own
// instrumented HTTP client named after the provider.
func New(cfg *config.LLMConfig, metrics *telemetry.Metrics, logger *slog.Logger) (Transport, error) {
	switch cfg.Provider {
	case ProviderGemini:
		return NewGeminiTransport(cfg, httpclient.New(cfg, ProviderGemini, metrics, logger), logger), nil
	case ProviderOllama:
		return NewOllamaTransport(cfg, httpclient.New(cfg, ProviderOllama, metrics, logger), logger), nil
	default:
		return nil, fmt.Errorf("llm: unsupported provider %q", cfg.Provider)
	}
}
