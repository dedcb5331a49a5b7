package toolsurface

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ConaryLabs/mira/internal/mkerr"
	"github.com/ConaryLabs/mira/internal/retrieval"
)

// RegisterCodeActions wires the "code" tool's search action to the
// hybrid code retriever.
func RegisterCodeActions(r *Registry, retriever *retrieval.CodeRetriever) error {
	return r.Register(&Action{
		Tool: "code", Name: "search",
		Description: "Hybrid semantic/keyword/fuzzy search over the indexed code chunks.",
		Schema: ActionSchema{
			Required: []string{"project_id", "query"},
			Properties: map[string]Property{
				"project_id": {Type: "integer", Description: "project id"},
				"query":      {Type: "string", Description: "free-text search query"},
				"limit":      {Type: "integer", Description: "max results (default 20)"},
			},
		},
		Execute: func(ctx context.Context, params json.RawMessage) (Result, error) {
			var p struct {
				ProjectID int64  `json:"project_id"`
				Query     string `json:"query"`
				Limit     int    `json:"limit"`
			}
			if err := json.Unmarshal(params, &p); err != nil {
				return Result{}, mkerr.InvalidArgumentf("code", "search", "params", "invalid params: %v", err)
			}
			if p.Limit <= 0 {
				p.Limit = 20
			}
			hits, err := retriever.Search(ctx, p.ProjectID, p.Query, p.Limit)
			if err != nil {
				return Result{}, err
			}
			return Result{
				Text: fmt.Sprintf("found %d matching chunks", len(hits)),
				Data: hits,
			}, nil
		},
	})
}
