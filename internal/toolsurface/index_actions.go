package toolsurface

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ConaryLabs/mira/internal/mainstore"
	"github.com/ConaryLabs/mira/internal/mkerr"
	"github.com/ConaryLabs/mira/internal/parser"
)

// RegisterIndexActions wires the "index" tool's full action as a
// LongRunning task: a full project walk touches every file and can run
// long on a large tree, so it is auto-enqueued rather than run inline
// (spec §4.I names project indexing as the canonical LongRunning
// example).
func RegisterIndexActions(r *Registry, runner *TaskRunner, store *mainstore.Store, indexer *parser.Indexer) error {
	runner.RegisterHandler("index", "full", func(ctx context.Context, params json.RawMessage) (Result, error) {
		var p struct {
			ProjectID int64 `json:"project_id"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return Result{}, mkerr.InvalidArgumentf("index", "full", "params", "invalid params: %v", err)
		}
		root, err := store.ProjectPath(ctx, p.ProjectID)
		if err != nil {
			return Result{}, err
		}
		indexed, removed, err := indexer.FullWalk(ctx, p.ProjectID, root, nil)
		if err != nil {
			return Result{}, err
		}
		return Result{Text: fmt.Sprintf("indexed %d files, removed %d stale entries", indexed, removed)}, nil
	})

	return r.Register(&Action{
		Tool: "index", Name: "full",
		Description: "Walk the project tree and (re)index every supported file. Long-running: returns a task id.",
		Schema: ActionSchema{
			Required:   []string{"project_id"},
			Properties: map[string]Property{"project_id": {Type: "integer", Description: "project id"}},
		},
		LongRunning: true,
		Execute: func(ctx context.Context, params json.RawMessage) (Result, error) {
			// unreachable: LongRunning actions are routed to the
			// TaskRunner's registered handler, never to Execute.
			return Result{}, mkerr.New(mkerr.Internal, "index.full must be invoked through the task runner")
		},
	})
}
