package toolsurface

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ConaryLabs/mira/internal/mkerr"
	"github.com/ConaryLabs/mira/internal/retrieval"
)

// RegisterBundleActions wires the "bundle" tool's assemble action to
// component D's budget-capped context assembly: one call that runs
// both the code and fact retrievers for a query and returns the
// deduplicated, budget-capped result a hook response can inject
// directly, rather than making the host agent call code.search and
// memory.recall separately and merge them itself.
func RegisterBundleActions(r *Registry, codeRetriever *retrieval.CodeRetriever, factRetriever *retrieval.FactRetriever) error {
	return r.Register(&Action{
		Tool: "bundle", Name: "assemble",
		Description: "Assemble a budget-capped code+fact context bundle for a query.",
		Schema: ActionSchema{
			Required: []string{"project_id", "query"},
			Properties: map[string]Property{
				"project_id":          {Type: "integer", Description: "project id"},
				"query":               {Type: "string", Description: "free-text query"},
				"allow_cross_project": {Type: "boolean", Description: "include facts stored under other projects"},
			},
		},
		Execute: func(ctx context.Context, params json.RawMessage) (Result, error) {
			var p struct {
				ProjectID         int64  `json:"project_id"`
				Query             string `json:"query"`
				AllowCrossProject bool   `json:"allow_cross_project"`
			}
			if err := json.Unmarshal(params, &p); err != nil {
				return Result{}, mkerr.InvalidArgumentf("bundle", "assemble", "params", "invalid params: %v", err)
			}

			codeHits, err := codeRetriever.Search(ctx, p.ProjectID, p.Query, 50)
			if err != nil {
				return Result{}, err
			}
			factHits, err := factRetriever.Search(ctx, p.ProjectID, p.Query, p.AllowCrossProject, 50)
			if err != nil {
				return Result{}, err
			}

			bundle := retrieval.AssembleContext(codeHits, factHits, retrieval.DefaultContextBudget())
			return Result{
				Text: fmt.Sprintf("assembled %d code chunks, %d facts", len(bundle.CodeChunks), len(bundle.Facts)),
				Data: bundle,
			}, nil
		},
	})
}
