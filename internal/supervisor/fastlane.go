// Package supervisor implements component G: the daemon's single
// background supervisor, running a fast lane (tight embedding-queue
// drain loop) and a slow lane (discrete, prioritized BackgroundTasks)
// side by side. Backoff and shutdown-selection are grounded on the
// teacher's WithRetry pattern (internal/shards/researcher/retry.go):
// exponential backoff capped at a ceiling, every sleep racing a
// cancellation signal so shutdown latency never waits out a full
// cycle.
package supervisor

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ConaryLabs/mira/internal/embedding"
	"github.com/ConaryLabs/mira/internal/mainstore"
	"github.com/ConaryLabs/mira/internal/mlog"
)

// FastLane drains the embedding queue and performs cheap index
// fixups on a short, LLM-free cadence.
type FastLane struct {
	store    *mainstore.Store
	drainer  *embedding.Drainer
	interval time.Duration
	metrics  *Metrics

	heartbeat atomic.Int64 // unix seconds of last completed cycle
}

func NewFastLane(store *mainstore.Store, drainer *embedding.Drainer, interval time.Duration) *FastLane {
	return &FastLane{store: store, drainer: drainer, interval: interval}
}

// WithMetrics attaches the operator-visibility gauges; nil is a no-op,
// so a lane built without a metrics server stays free of the check.
func (f *FastLane) WithMetrics(m *Metrics) *FastLane {
	f.metrics = m
	return f
}

// Heartbeat returns the unix timestamp of the lane's last completed
// cycle, used by diagnostics to detect a stalled lane by age rather
// than by any single LLM-dependent task's timestamp (spec §4.G).
func (f *FastLane) Heartbeat() int64 { return f.heartbeat.Load() }

// Run loops until ctx is cancelled, sleeping interval between cycles.
// The sleep races ctx.Done() so shutdown is immediate, never waiting
// out a full cycle.
func (f *FastLane) Run(ctx context.Context) {
	log := mlog.Get(mlog.CategorySupervisor)
	for {
		ids, err := f.store.ListProjectIDs(ctx)
		if err != nil {
			log.Warn("fast lane: list projects: %v", err)
		}
		for _, projectID := range ids {
			if ctx.Err() != nil {
				return
			}
			if f.drainer == nil {
				continue
			}
			result, err := f.drainer.RunCycle(ctx, projectID)
			if err != nil {
				log.Warn("fast lane: drain project %d: %v", projectID, err)
				continue
			}
			if result.Done > 0 || result.Failed > 0 || result.Rebuilt {
				log.Debug("fast lane: project %d drained done=%d failed=%d dead=%d rebuilt=%v",
					projectID, result.Done, result.Failed, result.Dead, result.Rebuilt)
			}
			if f.metrics != nil {
				f.metrics.SetQueueDepth(projectID, result.Pending)
			}
		}
		f.heartbeat.Store(time.Now().Unix())

		select {
		case <-ctx.Done():
			return
		case <-time.After(f.interval):
		}
	}
}
