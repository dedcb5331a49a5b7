package toolsurface

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ConaryLabs/mira/internal/mainstore"
	"github.com/ConaryLabs/mira/internal/mkerr"
)

// RegisterSessionActions wires the "session" tool's start/close actions
// (there is no touch action) directly to mainstore, since session lifecycle has no
// derived business logic beyond what the store already enforces
// (session id validation, status transitions).
func RegisterSessionActions(r *Registry, store *mainstore.Store) error {
	if err := r.Register(&Action{
		Tool: "session", Name: "start",
		Description: "Begin a new session for a project.",
		Schema: ActionSchema{
			Required: []string{"session_id", "project_id"},
			Properties: map[string]Property{
				"session_id": {Type: "string", Description: "session id, [A-Za-z0-9-]"},
				"project_id": {Type: "integer", Description: "project id"},
			},
		},
		Execute: func(ctx context.Context, params json.RawMessage) (Result, error) {
			var p struct {
				SessionID string `json:"session_id"`
				ProjectID int64  `json:"project_id"`
			}
			if err := json.Unmarshal(params, &p); err != nil {
				return Result{}, mkerr.InvalidArgumentf("session", "start", "params", "invalid params: %v", err)
			}
			if err := store.StartSession(ctx, p.SessionID, p.ProjectID); err != nil {
				return Result{}, err
			}
			return Result{Text: fmt.Sprintf("session %s started", p.SessionID)}, nil
		},
	}); err != nil {
		return err
	}

	return r.Register(&Action{
		Tool: "session", Name: "close",
		Description: "Close an active session with a summary.",
		Schema: ActionSchema{
			Required: []string{"session_id", "status", "summary"},
			Properties: map[string]Property{
				"session_id": {Type: "string", Description: "session id"},
				"status":     {Type: "string", Description: "terminal status", Enum: []string{"completed", "abandoned"}},
				"summary":    {Type: "string", Description: "free-text summary"},
			},
		},
		Execute: func(ctx context.Context, params json.RawMessage) (Result, error) {
			var p struct {
				SessionID string `json:"session_id"`
				Status    string `json:"status"`
				Summary   string `json:"summary"`
			}
			if err := json.Unmarshal(params, &p); err != nil {
				return Result{}, mkerr.InvalidArgumentf("session", "close", "params", "invalid params: %v", err)
			}
			if err := store.CloseSession(ctx, p.SessionID, p.Status, p.Summary); err != nil {
				return Result{}, err
			}
			return Result{Text: fmt.Sprintf("session %s closed (%s)", p.SessionID, p.Status)}, nil
		},
	})
}
