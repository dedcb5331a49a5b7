package embedding

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/ConaryLabs/mira/internal/mkerr"
	"github.com/ConaryLabs/mira/internal/mlog"
)

// Circuit breaker thresholds per spec §4.C: three consecutive failures
// within a five-minute window trip the breaker open; it stays open for
// a two-minute cooldown, then allows a single half-open probe before
// deciding whether to close or re-open.
const (
	breakerFailureThreshold = 3
	breakerFailureWindow    = 5 * time.Minute
	breakerCooldown         = 2 * time.Minute
	breakerHalfOpenProbes   = 1
)

// CircuitBreaker wraps an Embedder so repeated provider failures fail
// fast instead of piling up retries against a dead endpoint, grounded
// on the pack's sony/gobreaker usage (LerianStudio-midaz's rabbitmq
// producer circuit breaker).
type CircuitBreaker struct {
	inner Embedder
	cb    *gobreaker.CircuitBreaker
}

// NewCircuitBreaker wraps inner, naming the breaker after the
// provider so logs and metrics can distinguish multiple breakers.
func NewCircuitBreaker(inner Embedder) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        "embedding:" + inner.Name(),
		MaxRequests: breakerHalfOpenProbes,
		Interval:    breakerFailureWindow,
		Timeout:     breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			mlog.Get(mlog.CategoryEmbedding).Warn("circuit breaker %s: %s -> %s", name, from, to)
		},
	}
	return &CircuitBreaker{inner: inner, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (c *CircuitBreaker) Embed(ctx context.Context, text string, task TaskType) ([]float32, error) {
	result, err := c.cb.Execute(func() (interface{}, error) {
		return c.inner.Embed(ctx, text, task)
	})
	if err != nil {
		return nil, translateBreakerErr(err)
	}
	return result.([]float32), nil
}

func (c *CircuitBreaker) EmbedBatch(ctx context.Context, texts []string, task TaskType) ([][]float32, error) {
	result, err := c.cb.Execute(func() (interface{}, error) {
		return c.inner.EmbedBatch(ctx, texts, task)
	})
	if err != nil {
		return nil, translateBreakerErr(err)
	}
	return result.([][]float32), nil
}

func (c *CircuitBreaker) Dimensions() int { return c.inner.Dimensions() }
func (c *CircuitBreaker) Name() string    { return c.inner.Name() }

// State reports the breaker's current state, for health/status
// surfaces.
func (c *CircuitBreaker) State() gobreaker.State { return c.cb.State() }

func translateBreakerErr(err error) error {
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return mkerr.Wrap(mkerr.ProviderUnavailable, err, "embedding provider circuit open")
	}
	return err
}
