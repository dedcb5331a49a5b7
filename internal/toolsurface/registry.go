package toolsurface

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ConaryLabs/mira/internal/mkerr"
	"github.com/ConaryLabs/mira/internal/mlog"
)

// maxResponseBytes truncates oversized responses server-side (symbol
// lists, search results, call-graph output) to prevent host-side
// context overflow, per spec §4.I.
const maxResponseBytes = 64 * 1024

// TaskEnqueuer hands a long-running action off to the background task
// system (TaskRunner in tasks.go) and returns a task handle the caller
// polls via tasks(action=get).
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, tool, action string, params json.RawMessage) (taskID string, err error)
}

// Registry holds every registered Action, grounded on the teacher's
// tools.Registry (internal/tools/registry.go): same thread-safe
// register/get/has shape, generalized to a compound (tool, action) key.
type Registry struct {
	mu       sync.RWMutex
	actions  map[string]*Action
	enqueuer TaskEnqueuer
}

func NewRegistry(enqueuer TaskEnqueuer) *Registry {
	return &Registry{actions: make(map[string]*Action), enqueuer: enqueuer}
}

func (r *Registry) Register(a *Action) error {
	if err := a.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(a.Tool, a.Name)
	if _, exists := r.actions[k]; exists {
		return fmt.Errorf("toolsurface: action %s already registered", k)
	}
	r.actions[k] = a
	mlog.Get(mlog.CategoryTools).Debug("registered action %s", k)
	return nil
}

func (r *Registry) Get(tool, action string) *Action {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.actions[key(tool, action)]
}

// Invoke runs a (tool, action) call, auto-enqueueing LongRunning
// actions as background tasks instead of executing them inline, and
// truncating oversized inline results before returning them.
func (r *Registry) Invoke(ctx context.Context, tool, action string, params json.RawMessage) (Result, error) {
	a := r.Get(tool, action)
	if a == nil {
		return Result{}, mkerr.InvalidArgumentf(tool, action, "action", "unknown action %q on tool %q", action, tool)
	}

	if a.LongRunning {
		if r.enqueuer == nil {
			return Result{}, mkerr.New(mkerr.Internal, fmt.Sprintf("action %s.%s is long-running but no task enqueuer is configured", tool, action))
		}
		taskID, err := r.enqueuer.Enqueue(ctx, tool, action, params)
		if err != nil {
			return Result{}, err
		}
		return Result{Text: fmt.Sprintf("%s.%s enqueued as background task %s", tool, action, taskID), TaskID: taskID}, nil
	}

	result, err := a.Execute(ctx, params)
	if err != nil {
		return Result{}, err
	}
	return truncate(result), nil
}

func truncate(r Result) Result {
	data, err := json.Marshal(r.Data)
	if err != nil || len(data) <= maxResponseBytes {
		return r
	}
	r.Data = json.RawMessage(data[:maxResponseBytes])
	r.Truncated = true
	r.Text += " (response truncated)"
	return r
}
