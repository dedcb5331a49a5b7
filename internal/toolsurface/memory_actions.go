package toolsurface

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ConaryLabs/mira/internal/memory"
	"github.com/ConaryLabs/mira/internal/mkerr"
	"github.com/ConaryLabs/mira/internal/retrieval"
)

// RegisterMemoryActions wires the "memory" tool's store/forget/recall
// actions to internal/memory's Engine and the fact retriever.
func RegisterMemoryActions(r *Registry, engine *memory.Engine, facts *retrieval.FactRetriever) error {
	if err := r.Register(&Action{
		Tool: "memory", Name: "store",
		Description: "Store a fact the user explicitly asked to remember.",
		Schema: ActionSchema{
			Required: []string{"session_id", "project_id", "key", "content"},
			Properties: map[string]Property{
				"session_id": {Type: "string", Description: "calling session id"},
				"project_id": {Type: "integer", Description: "project id"},
				"key":        {Type: "string", Description: "fact key, unique per project"},
				"content":    {Type: "string", Description: "fact content"},
				"category":   {Type: "string", Description: "free-form category label"},
			},
		},
		Execute: func(ctx context.Context, params json.RawMessage) (Result, error) {
			var p struct {
				SessionID string `json:"session_id"`
				ProjectID int64  `json:"project_id"`
				Key       string `json:"key"`
				Content   string `json:"content"`
				Category  string `json:"category"`
			}
			if err := json.Unmarshal(params, &p); err != nil {
				return Result{}, mkerr.InvalidArgumentf("memory", "store", "params", "invalid params: %v", err)
			}
			res, err := engine.StoreExplicit(ctx, p.SessionID, p.ProjectID, p.Key, p.Content, p.Category, "explicit", "[]")
			if err != nil {
				return Result{}, err
			}
			if res.RateLimited {
				return Result{Text: "memory insert rate limit exceeded for this session"}, nil
			}
			return Result{
				Text: fmt.Sprintf("stored fact %q as %s", p.Key, res.Status),
				Data: res,
			}, nil
		},
	}); err != nil {
		return err
	}

	if err := r.Register(&Action{
		Tool: "memory", Name: "forget",
		Description: "Archive a confirmed or candidate fact.",
		Schema: ActionSchema{
			Required:   []string{"fact_id"},
			Properties: map[string]Property{"fact_id": {Type: "integer", Description: "fact id to archive"}},
		},
		Execute: func(ctx context.Context, params json.RawMessage) (Result, error) {
			var p struct {
				FactID int64 `json:"fact_id"`
			}
			if err := json.Unmarshal(params, &p); err != nil {
				return Result{}, mkerr.InvalidArgumentf("memory", "forget", "params", "invalid params: %v", err)
			}
			if err := engine.Demote(ctx, p.FactID); err != nil {
				return Result{}, err
			}
			return Result{Text: fmt.Sprintf("fact %d archived", p.FactID)}, nil
		},
	}); err != nil {
		return err
	}

	return r.Register(&Action{
		Tool: "memory", Name: "recall",
		Description: "Search confirmed facts relevant to a query.",
		Schema: ActionSchema{
			Required: []string{"project_id", "query"},
			Properties: map[string]Property{
				"project_id":          {Type: "integer", Description: "project id"},
				"query":               {Type: "string", Description: "free-text query"},
				"allow_cross_project": {Type: "boolean", Description: "include facts stored under other projects"},
				"limit":               {Type: "integer", Description: "max results (default 10)"},
			},
		},
		Execute: func(ctx context.Context, params json.RawMessage) (Result, error) {
			var p struct {
				ProjectID         int64  `json:"project_id"`
				Query             string `json:"query"`
				AllowCrossProject bool   `json:"allow_cross_project"`
				Limit             int    `json:"limit"`
			}
			if err := json.Unmarshal(params, &p); err != nil {
				return Result{}, mkerr.InvalidArgumentf("memory", "recall", "params", "invalid params: %v", err)
			}
			if p.Limit <= 0 {
				p.Limit = 10
			}
			hits, err := facts.Search(ctx, p.ProjectID, p.Query, p.AllowCrossProject, p.Limit)
			if err != nil {
				return Result{}, err
			}
			return Result{
				Text: fmt.Sprintf("found %d matching facts", len(hits)),
				Data: hits,
			}, nil
		},
	})
}
