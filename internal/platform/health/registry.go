// Package health provides a thread-safe health check registry for tracking
// the health of downstream dependencies. The registry is used by the readiness
// endpoint to determine whether the service can accept traffic.
package health

import (
	"context"
	"sync"

	"github.com/jsamuelsen11/mealplan-assistant/internal/app/fanout"
	"github.com/jsamuelsen11/mealplan-assistant/internal/ports"
)

// Compile-time interface check.
var _ ports.HealthRegistry = (*Registry)(nil)

// Registry is a thread-safe implementation of [ports.HealthRegistry].
// Components that implement [ports.HealthChecker] are registered at startup
// and checked on each readiness probe.
type Registry struct {
	mu       sync.RWMutex
	checkers []ports.HealthChecker
}

// maxConcurrentChecks bounds how many probes run at once.
const maxConcurrentChecks = 4

// New creates an empty health check registry.
func New() *Registry {
	return &Registry{}
}

// Register adds a health checker to the registry. Safe for concurrent use.
func (r *Registry) Register(checker ports.HealthChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers = append(r.checkers, checker)
}

// CheckAll executes all registered health checks concurrently and returns
// results keyed by checker name. Nil values indicate healthy components. When
// two checkers share a name the one registered last wins.
func (r *Registry) CheckAll(ctx context.Context) map[string]error {
	r.mu.RLock()
	checkers := make([]ports.HealthChecker, len(r.checkers))
	copy(checkers, r.checkers)
	r.mu.RUnlock()

	outcomes := fanout.Run(ctx, maxConcurrentChecks, checkers,
		func(ctx context.Context, c ports.HealthChecker) (string, error) {
			return c.Name(), c.HealthCheck(ctx)
		})

	results := make(map[string]error, len(checkers))
	for i, o := range outcomes {
		name := o.Value
		if name == "" {
			// Skipped because ctx was done before the probe started.
			name = checkers[i].Name()
		}
		results[name] = o.Err
	}
	return results
}
