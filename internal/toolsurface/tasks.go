package toolsurface

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ConaryLabs/mira/internal/mkerr"
	"github.com/ConaryLabs/mira/internal/mlog"
)

// TaskStatus is a background task's lifecycle state.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskDone      TaskStatus = "done"
	TaskFailed    TaskStatus = "failed"
	TaskCancelled TaskStatus = "cancelled"
)

// TaskRecord is one background task's pollable state, returned by
// tasks(action=list|get).
type TaskRecord struct {
	ID     string     `json:"id"`
	Tool   string     `json:"tool"`
	Action string     `json:"action"`
	Status TaskStatus `json:"status"`
	Result Result     `json:"result,omitempty"`
	Error  string     `json:"error,omitempty"`
}

// TaskFunc does the actual work behind a LongRunning action.
type TaskFunc func(ctx context.Context, params json.RawMessage) (Result, error)

// TaskRunner is the TaskEnqueuer backing every LongRunning action: it
// runs the registered handler for (tool, action) in a goroutine and
// makes its progress pollable via tasks(action=list|get|cancel), per
// spec §4.I.
type TaskRunner struct {
	mu       sync.Mutex
	next     int64
	handlers map[string]TaskFunc
	tasks    map[string]*TaskRecord
	cancels  map[string]context.CancelFunc
}

func NewTaskRunner() *TaskRunner {
	return &TaskRunner{
		handlers: make(map[string]TaskFunc),
		tasks:    make(map[string]*TaskRecord),
		cancels:  make(map[string]context.CancelFunc),
	}
}

// RegisterHandler binds the actual work for a LongRunning (tool,
// action) pair. The Action registered in the Registry for the same
// pair carries only the schema; Invoke routes LongRunning calls here
// instead of to Action.Execute.
func (t *TaskRunner) RegisterHandler(tool, action string, fn TaskFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[key(tool, action)] = fn
}

// Enqueue implements TaskEnqueuer.
func (t *TaskRunner) Enqueue(ctx context.Context, tool, action string, params json.RawMessage) (string, error) {
	t.mu.Lock()
	fn, ok := t.handlers[key(tool, action)]
	if !ok {
		t.mu.Unlock()
		return "", mkerr.New(mkerr.Internal, fmt.Sprintf("no task handler registered for %s.%s", tool, action))
	}
	t.next++
	id := fmt.Sprintf("task-%d", t.next)
	rec := &TaskRecord{ID: id, Tool: tool, Action: action, Status: TaskPending}
	t.tasks[id] = rec
	runCtx, cancel := context.WithCancel(context.Background())
	t.cancels[id] = cancel
	t.mu.Unlock()

	go t.run(runCtx, id, fn, params)
	return id, nil
}

func (t *TaskRunner) run(ctx context.Context, id string, fn TaskFunc, params json.RawMessage) {
	t.setStatus(id, TaskRunning, Result{}, "")
	result, err := fn(ctx, params)
	t.mu.Lock()
	delete(t.cancels, id)
	t.mu.Unlock()

	if ctx.Err() != nil {
		t.setStatus(id, TaskCancelled, Result{}, "")
		return
	}
	if err != nil {
		mlog.Get(mlog.CategoryTools).Warn("background task %s failed: %v", id, err)
		t.setStatus(id, TaskFailed, Result{}, err.Error())
		return
	}
	t.setStatus(id, TaskDone, result, "")
}

func (t *TaskRunner) setStatus(id string, status TaskStatus, result Result, errMsg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if rec, ok := t.tasks[id]; ok {
		rec.Status = status
		rec.Result = result
		rec.Error = errMsg
	}
}

// Get returns a copy of a task's current state.
func (t *TaskRunner) Get(id string) (TaskRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.tasks[id]
	if !ok {
		return TaskRecord{}, false
	}
	return *rec, true
}

// List returns every known task, most recently created first.
func (t *TaskRunner) List() []TaskRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TaskRecord, 0, len(t.tasks))
	for i := t.next; i >= 1; i-- {
		id := fmt.Sprintf("task-%d", i)
		if rec, ok := t.tasks[id]; ok {
			out = append(out, *rec)
		}
	}
	return out
}

// Cancel stops a pending or running task. Returns false if the task is
// unknown or already finished.
func (t *TaskRunner) Cancel(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	cancel, ok := t.cancels[id]
	if !ok {
		return false
	}
	cancel()
	delete(t.cancels, id)
	return true
}

// RegisterTasksActions wires the "tasks" tool's list/get/cancel
// actions to a TaskRunner.
func RegisterTasksActions(r *Registry, runner *TaskRunner) error {
	if err := r.Register(&Action{
		Tool: "tasks", Name: "list",
		Description: "List every background task and its status.",
		Schema:      ActionSchema{},
		Execute: func(ctx context.Context, params json.RawMessage) (Result, error) {
			return Result{Text: "task list", Data: runner.List()}, nil
		},
	}); err != nil {
		return err
	}

	if err := r.Register(&Action{
		Tool: "tasks", Name: "get",
		Description: "Get one background task's status and result.",
		Schema: ActionSchema{
			Required:   []string{"task_id"},
			Properties: map[string]Property{"task_id": {Type: "string", Description: "task id returned by a LongRunning action"}},
		},
		Execute: func(ctx context.Context, params json.RawMessage) (Result, error) {
			var p struct {
				TaskID string `json:"task_id"`
			}
			if err := json.Unmarshal(params, &p); err != nil {
				return Result{}, mkerr.InvalidArgumentf("tasks", "get", "params", "invalid params: %v", err)
			}
			rec, ok := runner.Get(p.TaskID)
			if !ok {
				return Result{}, mkerr.New(mkerr.NotFound, fmt.Sprintf("task %q not found", p.TaskID))
			}
			return Result{Text: fmt.Sprintf("task %s: %s", rec.ID, rec.Status), Data: rec}, nil
		},
	}); err != nil {
		return err
	}

	return r.Register(&Action{
		Tool: "tasks", Name: "cancel",
		Description: "Cancel a pending or running background task.",
		Schema: ActionSchema{
			Required:   []string{"task_id"},
			Properties: map[string]Property{"task_id": {Type: "string", Description: "task id to cancel"}},
		},
		Execute: func(ctx context.Context, params json.RawMessage) (Result, error) {
			var p struct {
				TaskID string `json:"task_id"`
			}
			if err := json.Unmarshal(params, &p); err != nil {
				return Result{}, mkerr.InvalidArgumentf("tasks", "cancel", "params", "invalid params: %v", err)
			}
			if !runner.Cancel(p.TaskID) {
				return Result{}, mkerr.New(mkerr.NotFound, fmt.Sprintf("task %q not found or already finished", p.TaskID))
			}
			return Result{Text: fmt.Sprintf("task %s cancelled", p.TaskID)}, nil
		},
	})
}
