package supervisor

import (
	"context"
	"sync"
	"time"
)

// Supervisor owns the fast and slow lanes and runs them concurrently
// until its context is cancelled, per spec §4.G: "single supervisor
// with two lanes."
type Supervisor struct {
	fast    *FastLane
	slow    *SlowLane
	metrics *Metrics
}

func New(fast *FastLane, slow *SlowLane) *Supervisor {
	return &Supervisor{fast: fast, slow: slow}
}

// WithMetrics attaches prometheus gauges, also handing them to the fast
// lane so queue-depth samples flow from the same place they're
// measured. Returns s for chaining at construction time.
func (s *Supervisor) WithMetrics(m *Metrics) *Supervisor {
	s.metrics = m
	s.fast.WithMetrics(m)
	return s
}

// Run blocks until ctx is cancelled, running both lanes concurrently
// plus a metrics-sampling tick if metrics are attached.
func (s *Supervisor) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); s.fast.Run(ctx) }()
	go func() { defer wg.Done(); s.slow.Run(ctx) }()
	if s.metrics != nil {
		wg.Add(1)
		go func() { defer wg.Done(); s.sampleLoop(ctx) }()
	}
	wg.Wait()
}

func (s *Supervisor) sampleLoop(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.metrics.Sample(s, now)
		}
	}
}

// StalledLaneAge is the heartbeat age past which a lane is considered
// stalled (spec §4.G: "e.g. 5 min").
const StalledLaneAge = 5 * time.Minute

// Diagnose reports which lanes look stalled by heartbeat age, not by
// any single LLM-dependent task's timestamp.
func (s *Supervisor) Diagnose(now time.Time) (fastStalled, slowStalled bool) {
	fastAge := now.Sub(time.Unix(s.fast.Heartbeat(), 0))
	slowAge := now.Sub(time.Unix(s.slow.Heartbeat(), 0))
	return fastAge > StalledLaneAge, slowAge > StalledLaneAge
}
