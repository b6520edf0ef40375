// Package ports declares the boundaries of the assistant. AssistantService is
// what the HTTP handlers and the CLI drive; Transport and ActionStore are what
// the pipeline needs from a model provider and from persistence. HealthChecker
// is implemented by every adapter that can probe its dependency.
package ports
