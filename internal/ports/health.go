package ports

import "context"

// HealthChecker probes one dependency for the readiness endpoint. The model
// transport and the sqlite store implement it.
type HealthChecker interface {
	// Name identifies the dependency in readiness output, e.g. "ollama" or
	// "sqlite".
	Name() string

	// HealthCheck returns nil when the dependency is usable. It must return
	// promptly once ctx is done.
	HealthCheck(ctx context.Context) error
}

// HealthRegistry collects HealthCheckers and runs them together.
type HealthRegistry interface {
	Register(checker HealthChecker)

	// CheckAll runs every registered check and returns the results by name;
	// a nil error means healthy.
	CheckAll(ctx context.Context) map[string]error
}
