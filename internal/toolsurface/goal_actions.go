package toolsurface

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ConaryLabs/mira/internal/mainstore"
	"github.com/ConaryLabs/mira/internal/mkerr"
)

// RegisterGoalActions wires the "goal" tool's create/list actions
// directly to mainstore, the same way session actions are wired: goal
// tracking has no derived business logic beyond what the store already
// enforces (bulk-create cap, milestone ordering).
func RegisterGoalActions(r *Registry, store *mainstore.Store) error {
	if err := r.Register(&Action{
		Tool: "goal", Name: "create",
		Description: "Create one or more goals, each with optional milestones.",
		Schema: ActionSchema{
			Required: []string{"project_id", "goals"},
			Properties: map[string]Property{
				"project_id": {Type: "integer", Description: "project id"},
				"goals":      {Type: "array", Description: "list of {title, description, priority, milestones}"},
			},
		},
		Execute: func(ctx context.Context, params json.RawMessage) (Result, error) {
			var p struct {
				ProjectID int64                    `json:"project_id"`
				Goals     []mainstore.NewGoalInput `json:"goals"`
			}
			if err := json.Unmarshal(params, &p); err != nil {
				return Result{}, mkerr.InvalidArgumentf("goal", "create", "params", "invalid params: %v", err)
			}
			ids, err := store.BulkCreateGoals(ctx, p.ProjectID, p.Goals)
			if err != nil {
				return Result{}, err
			}
			return Result{Text: fmt.Sprintf("created %d goals", len(ids)), Data: ids}, nil
		},
	}); err != nil {
		return err
	}

	return r.Register(&Action{
		Tool: "goal", Name: "list",
		Description: "List a project's goals with their milestones.",
		Schema: ActionSchema{
			Required:   []string{"project_id"},
			Properties: map[string]Property{"project_id": {Type: "integer", Description: "project id"}},
		},
		Execute: func(ctx context.Context, params json.RawMessage) (Result, error) {
			var p struct {
				ProjectID int64 `json:"project_id"`
			}
			if err := json.Unmarshal(params, &p); err != nil {
				return Result{}, mkerr.InvalidArgumentf("goal", "list", "params", "invalid params: %v", err)
			}
			goals, err := store.ListGoals(ctx, p.ProjectID)
			if err != nil {
				return Result{}, err
			}
			return Result{Text: fmt.Sprintf("%d goals", len(goals)), Data: goals}, nil
		},
	})
}
