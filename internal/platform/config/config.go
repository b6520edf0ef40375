// Package config provides configuration loading and validation for the service.
// Configuration is loaded from YAML files with environment variable overrides
// using a layered system: defaults -> base.yaml -> {profile}.yaml -> env vars.
package config

import "time"

// Config holds all configuration for the service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	LLM       LLMConfig       `koanf:"llm"`
	Retry     RetryConfig     `koanf:"retry"`
	Store     StoreConfig     `koanf:"store"`
	Schema    SchemaConfig    `koanf:"schema"`
	Assistant AssistantConfig `koanf:"assistant"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// LLMConfig holds the generative model provider settings.
type LLMConfig struct {
	// Provider selects the transport: "gemini" or "ollama".
	Provider       string               `koanf:"provider"`
	BaseURL        string               `koanf:"base_url"`
	Model          string               `koanf:"model"`
	APIKey         string               `koanf:"api_key"`
	Timeout        time.Duration        `koanf:"timeout"`
	Temperature    float64              `koanf:"temperature"`
	MaxTokens      int                  `koanf:"max_tokens"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
	RateLimit      RateLimitConfig      `koanf:"rate_limit"`
}

// RetryConfig holds the pipeline retry policy with exponential backoff.
type RetryConfig struct {
	MaxRetries     int           `koanf:"max_retries"`
	InitialDelay   time.Duration `koanf:"initial_delay"`
	BackoffFactor  float64       `koanf:"backoff_factor"`
	MaxDelay       time.Duration `koanf:"max_delay"`
	RetryableKinds []string      `koanf:"retryable_kinds"`
}

// CircuitBreakerConfig holds circuit breaker settings.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"`
	Timeout       time.Duration `koanf:"timeout"`
	HalfOpenLimit int           `koanf:"half_open_limit"`
}

// RateLimitConfig holds outbound request rate limiting. A zero rate disables
// the limiter.
type RateLimitConfig struct {
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	BurstSize         int     `koanf:"burst_size"`
}

// StoreConfig holds the action store settings.
type StoreConfig struct {
	// Path is the SQLite database file. ":memory:" keeps everything in process.
	Path string `koanf:"path"`
}

// SchemaConfig holds the closed vocabularies and structural minimums used by
// the schema registry.
type SchemaConfig struct {
	Units              []string       `koanf:"units"`
	MealTypes          []string       `koanf:"meal_types"`
	Cuisines           []string       `koanf:"cuisines"`
	Goals              []string       `koanf:"goals"`
	MinMealIngredients int            `koanf:"min_meal_ingredients"`
	MinPlanMeals       int            `koanf:"min_plan_meals"`
	Defaults           SchemaDefaults `koanf:"defaults"`
}

// SchemaDefaults holds the values substituted for absent optional fields and
// by the recovery engine.
type SchemaDefaults struct {
	Unit               string  `koanf:"unit"`
	Cuisine            string  `koanf:"cuisine"`
	MealType           string  `koanf:"meal_type"`
	Goal               string  `koanf:"goal"`
	IngredientQuantity float64 `koanf:"ingredient_quantity"`
	MealQuantity       float64 `koanf:"meal_quantity"`
}

// AssistantConfig holds orchestrator settings.
type AssistantConfig struct {
	ActorHeader     string `koanf:"actor_header"`
	DefaultActor    string `koanf:"default_actor"`
	MaxMessageBytes int    `koanf:"max_message_bytes"`
	Language        string `koanf:"language"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Exporter    string `koanf:"exporter"`
	Endpoint    string `koanf:"endpoint"`
	ServiceName string `koanf:"service_name"`
}
