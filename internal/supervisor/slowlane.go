package supervisor

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/ConaryLabs/mira/internal/mainstore"
	"github.com/ConaryLabs/mira/internal/mlog"
)

// Priority orders BackgroundTask scheduling within a cycle; Low tasks
// are the ones skipped adaptively (spec §4.G).
type Priority int

const (
	Critical Priority = iota
	Normal
	Low
)

// Task is one discrete unit of slow-lane work, run once per project per
// cycle (project iteration is always ORDER BY id, supplied by the
// lane, never left to map/goroutine scheduling order).
type Task interface {
	Name() string
	Priority() Priority
	Timeout() time.Duration
	Run(ctx context.Context, store *mainstore.Store, projectID int64) error
}

// SlowLane schedules Tasks across every known project once per cycle,
// backing off exponentially (capped) after repeated cycle failures and
// giving up restarting after maxRestarts consecutive failed cycles.
type SlowLane struct {
	store             *mainstore.Store
	tasks             []Task
	interval          time.Duration
	adaptiveThreshold time.Duration
	maxRestarts       int

	heartbeat   atomic.Int64
	lastCycleMs atomic.Int64
}

func NewSlowLane(store *mainstore.Store, tasks []Task, interval, adaptiveThreshold time.Duration, maxRestarts int) *SlowLane {
	return &SlowLane{store: store, tasks: tasks, interval: interval, adaptiveThreshold: adaptiveThreshold, maxRestarts: maxRestarts}
}

func (l *SlowLane) Heartbeat() int64 { return l.heartbeat.Load() }

// Run loops until ctx is cancelled. A cycle that errors out entirely
// (e.g. the project list query itself fails) triggers exponential
// backoff up to maxRestarts consecutive failures, after which the lane
// gives up rather than restart forever.
func (l *SlowLane) Run(ctx context.Context) {
	log := mlog.Get(mlog.CategorySupervisor)
	consecutiveFailures := 0

	for {
		start := time.Now()
		prevCycleLong := time.Duration(l.lastCycleMs.Load())*time.Millisecond > l.adaptiveThreshold

		err := l.runCycle(ctx, prevCycleLong)
		elapsed := time.Since(start)
		l.lastCycleMs.Store(elapsed.Milliseconds())
		l.heartbeat.Store(time.Now().Unix())

		if err != nil {
			consecutiveFailures++
			log.Warn("slow lane cycle failed (%d/%d consecutive): %v", consecutiveFailures, l.maxRestarts, err)
			if consecutiveFailures >= l.maxRestarts {
				log.Error("slow lane giving up after %d consecutive failed cycles", consecutiveFailures)
				return
			}
			backoff := backoffFor(consecutiveFailures)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			continue
		}
		consecutiveFailures = 0

		select {
		case <-ctx.Done():
			return
		case <-time.After(l.interval):
		}
	}
}

func (l *SlowLane) runCycle(ctx context.Context, skipLow bool) error {
	ids, err := l.store.ListProjectIDs(ctx)
	if err != nil {
		return err
	}
	log := mlog.Get(mlog.CategorySupervisor)

	for _, projectID := range ids {
		for _, task := range l.tasks {
			if ctx.Err() != nil {
				return nil
			}
			if skipLow && task.Priority() == Low {
				log.Debug("slow lane: skipping low-priority task %q for project %d (previous cycle exceeded adaptive threshold)", task.Name(), projectID)
				continue
			}
			taskCtx, cancel := context.WithTimeout(ctx, task.Timeout())
			err := task.Run(taskCtx, l.store, projectID)
			cancel()
			if err != nil {
				log.Warn("slow lane: task %q failed for project %d: %v", task.Name(), projectID, err)
			}
		}
	}
	return nil
}

const maxBackoff = 30 * time.Second

func backoffFor(attempt int) time.Duration {
	d := time.Duration(math.Pow(2, float64(attempt))) * time.Second
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}
