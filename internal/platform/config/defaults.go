package config

import (
	"errors"

	"github.com/knadh/koanf/maps"

	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/nutrition"
)

const (
	defaultServerPort = 8080

	defaultRetryMaxRetries    = 3
	defaultRetryBackoffFactor = 1.5

	defaultCircuitBreakerMaxFailures = 5
	defaultCircuitBreakerHalfOpen    = 1

	defaultMaxTokens       = 2048
	defaultMaxMessageBytes = 8192

	defaultIngredientQuantity = 100
)

// defaults returns the default configuration values.
// These are loaded first and can be overridden by base.yaml, profile YAML, and env vars.
func defaults() map[string]any {
	vocab := nutrition.DefaultVocabulary()

	return map[string]any{
		"server.host":          "0.0.0.0",
		"server.port":          defaultServerPort,
		"server.read_timeout":  "5s",
		"server.write_timeout": "60s",
		"server.idle_timeout":  "120s",

		"log.level":  "info",
		"log.format": "json",

		"llm.provider":                        "gemini",
		"llm.base_url":                        "https://generativelanguage.googleapis.com",
		"llm.model":                           "gemini-2.0-flash",
		"llm.api_key":                         "",
		"llm.timeout":                         "30s",
		"llm.temperature":                     0.7,
		"llm.max_tokens":                      defaultMaxTokens,
		"llm.circuit_breaker.max_failures":    defaultCircuitBreakerMaxFailures,
		"llm.circuit_breaker.timeout":         "30s",
		"llm.circuit_breaker.half_open_limit": defaultCircuitBreakerHalfOpen,
		"llm.rate_limit.requests_per_second":  0,
		"llm.rate_limit.burst_size":           1,

		"retry.max_retries":     defaultRetryMaxRetries,
		"retry.initial_delay":   "1s",
		"retry.backoff_factor":  defaultRetryBackoffFactor,
		"retry.max_delay":       "30s",
		"retry.retryable_kinds": []string{"TIMEOUT", "RATE_LIMIT", "CONNECTION", "API_ERROR"},

		"store.path": "mealplan.db",

		"schema.units":                        vocab[nutrition.FieldUnit],
		"schema.meal_types":                   vocab[nutrition.FieldMealType],
		"schema.cuisines":                     vocab[nutrition.FieldCuisine],
		"schema.goals":                        vocab[nutrition.FieldGoal],
		"schema.min_meal_ingredients":         1,
		"schema.min_plan_meals":               1,
		"schema.defaults.unit":                string(nutrition.UnitGrams),
		"schema.defaults.cuisine":             string(nutrition.CuisineGeneral),
		"schema.defaults.meal_type":           string(nutrition.MealBreakfast),
		"schema.defaults.goal":                string(nutrition.GoalMaintain),
		"schema.defaults.ingredient_quantity": defaultIngredientQuantity,
		"schema.defaults.meal_quantity":       1,

		"assistant.actor_header":      "X-Actor-ID",
		"assistant.default_actor":     "anonymous",
		"assistant.max_message_bytes": defaultMaxMessageBytes,
		"assistant.language":          "en",

		"telemetry.enabled":      false,
		"telemetry.exporter":     "stdout",
		"telemetry.endpoint":     "",
		"telemetry.service_name": "mealplan-assistant",
	}
}

// defaultsProvider feeds defaults() to koanf as the lowest layer.
type defaultsProvider struct{}

// ReadBytes is not supported; koanf calls Read when no parser is given.
func (defaultsProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("defaults provider does not support ReadBytes")
}

// Read returns the nested defaults map.
func (defaultsProvider) Read() (map[string]any, error) {
	return maps.Unflatten(defaults(), "."), nil
}
