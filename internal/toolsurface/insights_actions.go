package toolsurface

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ConaryLabs/mira/internal/mainstore"
	"github.com/ConaryLabs/mira/internal/mkerr"
)

// RegisterInsightsActions wires the "insights" tool's list/dismiss
// actions to mainstore's insight store (component F's output surface).
func RegisterInsightsActions(r *Registry, store *mainstore.Store) error {
	if err := r.Register(&Action{
		Tool: "insights", Name: "list",
		Description: "List a project's active (unexpired, undismissed) insights.",
		Schema: ActionSchema{
			Required:   []string{"project_id"},
			Properties: map[string]Property{"project_id": {Type: "integer", Description: "project id"}},
		},
		Execute: func(ctx context.Context, params json.RawMessage) (Result, error) {
			var p struct {
				ProjectID int64 `json:"project_id"`
			}
			if err := json.Unmarshal(params, &p); err != nil {
				return Result{}, mkerr.InvalidArgumentf("insights", "list", "params", "invalid params: %v", err)
			}
			insights, err := store.ActiveInsights(ctx, p.ProjectID, time.Now())
			if err != nil {
				return Result{}, err
			}
			return Result{Text: fmt.Sprintf("%d active insights", len(insights)), Data: insights}, nil
		},
	}); err != nil {
		return err
	}

	return r.Register(&Action{
		Tool: "insights", Name: "dismiss",
		Description: "Dismiss an insight so it no longer surfaces.",
		Schema: ActionSchema{
			Required: []string{"project_id", "insight_type", "dedup_key"},
			Properties: map[string]Property{
				"project_id":   {Type: "integer", Description: "project id"},
				"insight_type": {Type: "string", Description: "typed insight prefix, e.g. insight_tool_chain"},
				"dedup_key":    {Type: "string", Description: "the insight's dedup key"},
			},
		},
		Execute: func(ctx context.Context, params json.RawMessage) (Result, error) {
			var p struct {
				ProjectID   int64  `json:"project_id"`
				InsightType string `json:"insight_type"`
				DedupKey    string `json:"dedup_key"`
			}
			if err := json.Unmarshal(params, &p); err != nil {
				return Result{}, mkerr.InvalidArgumentf("insights", "dismiss", "params", "invalid params: %v", err)
			}
			if err := store.DismissInsight(ctx, p.ProjectID, p.InsightType, p.DedupKey); err != nil {
				return Result{}, err
			}
			return Result{Text: "insight dismissed"}, nil
		},
	})
}
