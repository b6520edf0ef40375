package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jsamuelsen11/mealplan-assistant/internal/domain"
)

// Validate checks all configuration values and returns aggregated errors.
func (c *Config) Validate() error {
	return errors.Join(
		c.Server.validate(),
		c.Log.validate(),
		c.LLM.validate(),
		c.Retry.validate(),
		c.Store.validate(),
		c.Schema.validate(),
		c.Assistant.validate(),
		c.Telemetry.validate(),
	)
}

func (s *ServerConfig) validate() error {
	var errs []error

	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", s.Port))
	}
	if s.ReadTimeout <= 0 {
		errs = append(errs, errors.New("server.read_timeout must be positive"))
	}
	if s.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.write_timeout must be positive"))
	}

	return errors.Join(errs...)
}

func (l *LogConfig) validate() error {
	var errs []error

	switch l.Level {
	case "debug", "info", "warn", "error":
		// Valid levels.
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", l.Level))
	}

	switch l.Format {
	case "json", "text":
		// Valid formats.
	default:
		errs = append(errs, fmt.Errorf("log.format must be one of: json, text; got %q", l.Format))
	}

	return errors.Join(errs...)
}

func (l *LLMConfig) validate() error {
	var errs []error

	switch l.Provider {
	case "gemini", "ollama":
		// Valid providers.
	default:
		errs = append(errs, fmt.Errorf("llm.provider must be one of: gemini, ollama; got %q", l.Provider))
	}
	if l.BaseURL == "" {
		errs = append(errs, errors.New("llm.base_url must not be empty"))
	}
	if l.Model == "" {
		errs = append(errs, errors.New("llm.model must not be empty"))
	}
	if l.Timeout <= 0 {
		errs = append(errs, errors.New("llm.timeout must be positive"))
	}
	if l.Temperature < 0 || l.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm.temperature must be between 0 and 2, got %g", l.Temperature))
	}
	if l.CircuitBreaker.MaxFailures < 1 {
		errs = append(errs, fmt.Errorf("llm.circuit_breaker.max_failures must be >= 1, got %d",
			l.CircuitBreaker.MaxFailures))
	}
	if l.RateLimit.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("llm.rate_limit.requests_per_second must not be negative"))
	}
	if l.RateLimit.RequestsPerSecond > 0 && l.RateLimit.BurstSize < 1 {
		errs = append(errs, fmt.Errorf("llm.rate_limit.burst_size must be >= 1 when rate limiting, got %d",
			l.RateLimit.BurstSize))
	}

	return errors.Join(errs...)
}

func (r *RetryConfig) validate() error {
	var errs []error

	if r.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("retry.max_retries must be >= 0, got %d", r.MaxRetries))
	}
	if r.InitialDelay < 0 {
		errs = append(errs, errors.New("retry.initial_delay must not be negative"))
	}
	if r.BackoffFactor < 1 {
		errs = append(errs, fmt.Errorf("retry.backoff_factor must be >= 1, got %g", r.BackoffFactor))
	}
	if r.MaxDelay < 0 {
		errs = append(errs, errors.New("retry.max_delay must not be negative"))
	}
	for _, name := range r.RetryableKinds {
		if _, err := domain.ParseErrorKind(name); err != nil {
			errs = append(errs, fmt.Errorf("retry.retryable_kinds: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (s *StoreConfig) validate() error {
	if strings.TrimSpace(s.Path) == "" {
		return errors.New("store.path must not be empty")
	}
	return nil
}

func (s *SchemaConfig) validate() error {
	var errs []error

	sets := []struct {
		key    string
		values []string
		def    string
	}{
		{"schema.units", s.Units, s.Defaults.Unit},
		{"schema.meal_types", s.MealTypes, s.Defaults.MealType},
		{"schema.cuisines", s.Cuisines, s.Defaults.Cuisine},
		{"schema.goals", s.Goals, s.Defaults.Goal},
	}
	for _, set := range sets {
		if len(set.values) == 0 {
			errs = append(errs, fmt.Errorf("%s must not be empty", set.key))
			continue
		}
		if !slices.Contains(set.values, set.def) {
			errs = append(errs, fmt.Errorf("%s must contain the default value %q", set.key, set.def))
		}
	}

	if s.MinMealIngredients < 1 {
		errs = append(errs, fmt.Errorf("schema.min_meal_ingredients must be >= 1, got %d", s.MinMealIngredients))
	}
	if s.MinPlanMeals < 1 {
		errs = append(errs, fmt.Errorf("schema.min_plan_meals must be >= 1, got %d", s.MinPlanMeals))
	}
	if s.Defaults.IngredientQuantity <= 0 {
		errs = append(errs, errors.New("schema.defaults.ingredient_quantity must be positive"))
	}
	if s.Defaults.MealQuantity <= 0 {
		errs = append(errs, errors.New("schema.defaults.meal_quantity must be positive"))
	}

	return errors.Join(errs...)
}

func (a *AssistantConfig) validate() error {
	var errs []error

	if a.ActorHeader == "" {
		errs = append(errs, errors.New("assistant.actor_header must not be empty"))
	}
	if a.MaxMessageBytes < 1 {
		errs = append(errs, fmt.Errorf("assistant.max_message_bytes must be >= 1, got %d", a.MaxMessageBytes))
	}

	return errors.Join(errs...)
}

func (t *TelemetryConfig) validate() error {
	if !t.Enabled {
		return nil
	}

	var errs []error

	switch t.Exporter {
	case "stdout", "otlp":
		// Valid exporters.
	default:
		errs = append(errs, fmt.Errorf("telemetry.exporter must be one of: stdout, otlp; got %q", t.Exporter))
	}

	if t.Exporter == "otlp" && t.Endpoint == "" {
		errs = append(errs, errors.New("telemetry.endpoint must not be empty when exporter is otlp"))
	}

	return errors.Join(errs...)
}
