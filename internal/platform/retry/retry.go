// Package retry runs fallible operations under an exponential backoff policy
// with ±15% jitter. Failures are classified into *domain.Error values and only
// retried when they are recoverable or their kind is listed as retryable.
//
// Usage:
//
//	text, retries, err := retry.Run(ctx, policy, func(ctx context.Context) (string, error) {
//	    return transport.Generate(ctx, prompt, opts)
//	}, retry.WithHook(onRetry))
package retry

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"math"
	"time"

	"github.com/jsamuelsen11/mealplan-assistant/internal/domain"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/config"
)

// jitterFraction is the maximum jitter as a fraction of the delay (±15%).
const jitterFraction = 0.15

// Default policy values.
const (
	DefaultMaxRetries    = 3
	DefaultInitialDelay  = time.Second
	DefaultBackoffFactor = 1.5
	DefaultMaxDelay      = 30 * time.Second
)

// Policy configures a retry sequence. It is read-only while Run executes and
// safe to share between concurrent calls.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt. Zero means
	// a single attempt.
	MaxRetries    int
	InitialDelay  time.Duration
	BackoffFactor float64
	// MaxDelay caps the un-jittered delay. Zero leaves the delay uncapped.
	MaxDelay       time.Duration
	RetryableKinds map[domain.ErrorKind]bool
}

// DefaultPolicy returns the policy used when nothing is configured: three
// retries starting at one second, growing by 1.5x up to 30 seconds, for
// transport failures.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:    DefaultMaxRetries,
		InitialDelay:  DefaultInitialDelay,
		BackoffFactor: DefaultBackoffFactor,
		MaxDelay:      DefaultMaxDelay,
		RetryableKinds: map[domain.ErrorKind]bool{
			domain.KindTimeout:    true,
			domain.KindRateLimit:  true,
			domain.KindConnection: true,
			domain.KindAPI:        true,
		},
	}
}

// NewPolicy builds a Policy from configuration. Unknown kind names are
// skipped; config.Validate rejects them before this is reached.
func NewPolicy(cfg *config.RetryConfig) Policy {
	kinds := make(map[domain.ErrorKind]bool, len(cfg.RetryableKinds))
	for _, name := range cfg.RetryableKinds {
		if k, err := domain.ParseErrorKind(name); err == nil {
			kinds[k] = true
		}
	}
	return Policy{
		MaxRetries:     cfg.MaxRetries,
		InitialDelay:   cfg.InitialDelay,
		BackoffFactor:  cfg.BackoffFactor,
		MaxDelay:       cfg.MaxDelay,
		RetryableKinds: kinds,
	}
}

// ShouldRetry reports whether a classified failure qualifies for another
// attempt under p.
func (p Policy) ShouldRetry(err *domain.Error) bool {
	return err.Recoverable || p.RetryableKinds[err.Kind]
}

// Hook observes each retry before the backoff wait. attempt is 1 for the
// first retry.
type Hook func(err *domain.Error, attempt int, delay time.Duration)

type runOptions struct {
	hook Hook
}

// Option configures Run.
type Option func(*runOptions)

// WithHook registers fn to be called before every retry.
func WithHook(fn Hook) Option {
	return func(o *runOptions) {
		o.hook = fn
	}
}

// Run calls op until it succeeds, fails with a non-retryable error, or
// MaxRetries retries are spent. It returns the value, the number of retries
// performed, and on failure the last classified error.
//
// The wait between attempts races against ctx; cancellation ends the
// sequence with a Timeout-kind error whose cause is ctx.Err().
func Run[T any](ctx context.Context, p Policy, op func(context.Context) (T, error), opts ...Option) (T, int, error) {
	o := &runOptions{}
	for _, opt := range opts {
		opt(o)
	}

	var zero T
	for attempt := 0; ; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, attempt, nil
		}

		classified := domain.Classify(err, "operation failed", domain.KindUnknown, nil, false)
		if attempt >= p.MaxRetries || !p.ShouldRetry(classified) || ctx.Err() != nil {
			return zero, attempt, classified
		}

		delay := Backoff(attempt, p)
		if o.hook != nil {
			o.hook(classified, attempt+1, delay)
		}

		if err := wait(ctx, delay); err != nil {
			return zero, attempt, domain.Classify(err, "retry wait cancelled", domain.KindTimeout,
				map[string]any{"last_error": classified.Error()}, false)
		}
	}
}

func wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// BaseDelay returns the un-jittered delay before retry number attempt+1:
// min(MaxDelay, InitialDelay * BackoffFactor^attempt), never negative.
func BaseDelay(attempt int, p Policy) time.Duration {
	delay := float64(p.InitialDelay) * math.Pow(p.BackoffFactor, float64(attempt))
	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	if delay < 0 || math.IsNaN(delay) {
		return 0
	}
	return toDuration(delay)
}

// Backoff applies ±15% multiplicative jitter to BaseDelay.
func Backoff(attempt int, p Policy) time.Duration {
	delay := float64(BaseDelay(attempt, p)) * (1 - jitterFraction + 2*jitterFraction*secureRandFloat64())
	if delay < 0 {
		return 0
	}
	return toDuration(delay)
}

// toDuration converts a non-negative float delay, saturating at the largest
// Duration. float64(math.MaxInt64) rounds up to 2^63, so equality saturates too.
func toDuration(delay float64) time.Duration {
	if delay >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(delay)
}

// IEEE 754 double-precision constants for random float generation.
const (
	significandBits = 53
	uint64Bits      = 64
)

// secureRandFloat64 returns a random float64 in [0, 1) using crypto/rand.
func secureRandFloat64() float64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0
	}
	return float64(binary.BigEndian.Uint64(b[:])>>(uint64Bits-significandBits)) / float64(uint64(1)<<significandBits)
}
