package toolsurface

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ConaryLabs/mira/internal/mainstore"
	"github.com/ConaryLabs/mira/internal/mkerr"
)

// RegisterDocumentationActions wires the "documentation" tool's
// list/upsert actions to mainstore's documentation inventory table.
func RegisterDocumentationActions(r *Registry, store *mainstore.Store) error {
	if err := r.Register(&Action{
		Tool: "documentation", Name: "upsert",
		Description: "Record or refresh a documentation file's inventory entry.",
		Schema: ActionSchema{
			Required: []string{"project_id", "path", "title", "summary"},
			Properties: map[string]Property{
				"project_id": {Type: "integer", Description: "project id"},
				"path":       {Type: "string", Description: "documentation file path"},
				"title":      {Type: "string", Description: "document title"},
				"summary":    {Type: "string", Description: "short summary"},
			},
		},
		Execute: func(ctx context.Context, params json.RawMessage) (Result, error) {
			var p struct {
				ProjectID int64  `json:"project_id"`
				Path      string `json:"path"`
				Title     string `json:"title"`
				Summary   string `json:"summary"`
			}
			if err := json.Unmarshal(params, &p); err != nil {
				return Result{}, mkerr.InvalidArgumentf("documentation", "upsert", "params", "invalid params: %v", err)
			}
			if err := store.UpsertDocumentation(ctx, p.ProjectID, p.Path, p.Title, p.Summary); err != nil {
				return Result{}, err
			}
			return Result{Text: fmt.Sprintf("documentation entry %q recorded", p.Path)}, nil
		},
	}); err != nil {
		return err
	}

	return r.Register(&Action{
		Tool: "documentation", Name: "list",
		Description: "List a project's documentation inventory.",
		Schema: ActionSchema{
			Required:   []string{"project_id"},
			Properties: map[string]Property{"project_id": {Type: "integer", Description: "project id"}},
		},
		Execute: func(ctx context.Context, params json.RawMessage) (Result, error) {
			var p struct {
				ProjectID int64 `json:"project_id"`
			}
			if err := json.Unmarshal(params, &p); err != nil {
				return Result{}, mkerr.InvalidArgumentf("documentation", "list", "params", "invalid params: %v", err)
			}
			docs, err := store.ListDocumentation(ctx, p.ProjectID)
			if err != nil {
				return Result{}, err
			}
			return Result{Text: fmt.Sprintf("%d documentation entries", len(docs)), Data: docs}, nil
		},
	})
}
