// Package main is the entry point for the meal-planning assistant API. It
// wires all dependencies using samber/do v2, starts the HTTP server, and
// handles graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do/v2"

	"github.com/jsamuelsen11/mealplan-assistant/internal/adapters/clients/llm"
	adapthttp "github.com/jsamuelsen11/mealplan-assistant/internal/adapters/http"
	"github.com/jsamuelsen11/mealplan-assistant/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/mealplan-assistant/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/mealplan-assistant/internal/adapters/store/sqlite"
	"github.com/jsamuelsen11/mealplan-assistant/internal/app/assistant"
	"github.com/jsamuelsen11/mealplan-assistant/internal/app/schema"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/config"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/health"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/logging"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/retry"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/telemetry"
	"github.com/jsamuelsen11/mealplan-assistant/internal/ports"
)

const (
	serverShutdownTimeout = 15 * time.Second
	otelShutdownTimeout   = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	profile := os.Getenv("APP_PROFILE")
	if profile == "" {
		return errors.New("APP_PROFILE environment variable is required (e.g. local, prod)")
	}

	// Bootstrap: config, logger, telemetry.
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otel, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	// DI container.
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, otel.Metrics)

	registerDependencies(ctx, injector, cfg, logger)

	// Resolve the server (eagerly wires the full graph).
	server, err := do.Invoke[*adapthttp.Server](injector)
	if err != nil {
		return fmt.Errorf("resolving server: %w", err)
	}

	// Register health checkers after the graph is wired.
	registry := do.MustInvoke[ports.HealthRegistry](injector)
	registry.Register(do.MustInvoke[llm.Transport](injector))
	store := do.MustInvoke[*sqlite.Store](injector)
	registry.Register(store)

	// Serve until a shutdown signal arrives, then drain HTTP requests.
	runErr := server.Run(ctx, serverShutdownTimeout)
	if runErr != nil {
		logger.Error("server stopped with error", slog.Any("error", runErr))
	} else {
		logger.Info("received shutdown signal")
	}

	if err := store.Close(); err != nil {
		logger.Error("store close error", slog.Any("error", err))
	}

	// Flush telemetry.
	otelCtx, otelCancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
	defer otelCancel()

	if err := otel.Shutdown(otelCtx); err != nil {
		logger.Error("telemetry shutdown error", slog.Any("error", err))
	}

	if runErr != nil {
		return fmt.Errorf("server failed: %w", runErr)
	}
	logger.Info("shutdown complete")
	return nil
}

func registerDependencies(ctx context.Context, injector *do.RootScope, cfg *config.Config, logger *slog.Logger) {
	do.Provide(injector, func(i do.Injector) (llm.Transport, error) {
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		return llm.New(&cfg.LLM, metrics, logger)
	})

	do.Provide(injector, func(_ do.Injector) (*sqlite.Store, error) {
		return sqlite.Open(ctx, &cfg.Store, logger)
	})

	do.Provide(injector, func(_ do.Injector) (*schema.Validator, error) {
		registry, err := schema.NewRegistry(&cfg.Schema)
		if err != nil {
			return nil, fmt.Errorf("building schema registry: %w", err)
		}
		return schema.NewValidator(registry), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.AssistantService, error) {
		transport := do.MustInvoke[llm.Transport](i)
		store := do.MustInvoke[*sqlite.Store](i)
		validator := do.MustInvoke[*schema.Validator](i)
		metrics := do.MustInvoke[*telemetry.Metrics](i)

		return assistant.NewService(transport, store, validator, retry.NewPolicy(&cfg.Retry), logger,
			assistant.WithMetrics(metrics),
			assistant.WithLanguage(cfg.Assistant.Language),
			assistant.WithGenerateOptions(ports.GenerateOptions{
				SystemPrompt: assistant.SystemPrompt,
				Temperature:  cfg.LLM.Temperature,
				MaxTokens:    cfg.LLM.MaxTokens,
			}),
		), nil
	})

	do.Provide(injector, func(_ do.Injector) (ports.HealthRegistry, error) {
		return health.New(), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.AssistantHandler, error) {
		svc := do.MustInvoke[ports.AssistantService](i)
		return handlers.NewAssistantHandler(svc, cfg.Assistant), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.HealthHandler, error) {
		registry := do.MustInvoke[ports.HealthRegistry](i)
		transport := do.MustInvoke[llm.Transport](i)
		return handlers.NewHealthHandler(registry, transport.Name()), nil
	})

	do.Provide(injector, func(i do.Injector) (nethttp.Handler, error) {
		assistantH := do.MustInvoke[*handlers.AssistantHandler](i)
		healthH := do.MustInvoke[*handlers.HealthHandler](i)
		metrics := do.MustInvoke[*telemetry.Metrics](i)

		inbound := middleware.Inbound(middleware.InboundConfig{
			Logger:      logger,
			Metrics:     metrics,
			ActorHeader: cfg.Assistant.ActorHeader,
			Timeout:     cfg.Server.WriteTimeout,
		})
		return adapthttp.NewRouter(assistantH, healthH, inbound), nil
	})

	do.Provide(injector, func(i do.Injector) (*adapthttp.Server, error) {
		handler := do.MustInvoke[nethttp.Handler](i)
		return adapthttp.NewServer(cfg.Server, handler, logger), nil
	})
}
