package toolsurface

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ConaryLabs/mira/internal/mainstore"
	"github.com/ConaryLabs/mira/internal/mkerr"
)

// RegisterTeamActions wires the "team" tool's presence action: which
// sessions are currently active on a project, so the host agent can
// tell whether another session (potentially another collaborator) is
// mid-flight before starting conflicting work.
func RegisterTeamActions(r *Registry, store *mainstore.Store) error {
	return r.Register(&Action{
		Tool: "team", Name: "active_sessions",
		Description: "List sessions currently active on a project.",
		Schema: ActionSchema{
			Required:   []string{"project_id"},
			Properties: map[string]Property{"project_id": {Type: "integer", Description: "project id"}},
		},
		Execute: func(ctx context.Context, params json.RawMessage) (Result, error) {
			var p struct {
				ProjectID int64 `json:"project_id"`
			}
			if err := json.Unmarshal(params, &p); err != nil {
				return Result{}, mkerr.InvalidArgumentf("team", "active_sessions", "params", "invalid params: %v", err)
			}
			sessions, err := store.ActiveSessions(ctx, p.ProjectID)
			if err != nil {
				return Result{}, err
			}
			return Result{Text: fmt.Sprintf("%d active sessions", len(sessions)), Data: sessions}, nil
		},
	})
}
