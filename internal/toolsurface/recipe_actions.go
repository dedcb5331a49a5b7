package toolsurface

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ConaryLabs/mira/internal/mainstore"
	"github.com/ConaryLabs/mira/internal/mkerr"
)

// recipeCategory tags memory facts stored through the "recipe" tool so
// they can be filtered back out of the shared fact table without a
// dedicated schema, the same way the teacher tags cross-cutting rows
// with a type column rather than a new table per concern.
const recipeCategory = "recipe"

// RegisterRecipeActions wires the "recipe" tool's store/list actions
// to mainstore's memory facts, scoped to the recipe category: a
// recipe is a confirmed fact the host agent can save and recall
// verbatim (a known-good command sequence, a project-specific
// workaround), reusing the fact table rather than inventing a second
// one for what is structurally the same recall problem.
func RegisterRecipeActions(r *Registry, store *mainstore.Store) error {
	if err := r.Register(&Action{
		Tool: "recipe", Name: "store",
		Description: "Save a named, reusable recipe (command sequence, workaround) for this project.",
		Schema: ActionSchema{
			Required: []string{"project_id", "key", "content"},
			Properties: map[string]Property{
				"project_id": {Type: "integer", Description: "project id"},
				"key":        {Type: "string", Description: "recipe name, unique per project"},
				"content":    {Type: "string", Description: "recipe body"},
			},
		},
		Execute: func(ctx context.Context, params json.RawMessage) (Result, error) {
			var p struct {
				ProjectID int64  `json:"project_id"`
				Key       string `json:"key"`
				Content   string `json:"content"`
			}
			if err := json.Unmarshal(params, &p); err != nil {
				return Result{}, mkerr.InvalidArgumentf("recipe", "store", "params", "invalid params: %v", err)
			}
			id, err := store.InsertConfirmedFact(ctx, p.ProjectID, p.Key, p.Content, recipeCategory, "recipe", "[]")
			if err != nil {
				return Result{}, err
			}
			return Result{Text: fmt.Sprintf("recipe %q saved", p.Key), Data: id}, nil
		},
	}); err != nil {
		return err
	}

	return r.Register(&Action{
		Tool: "recipe", Name: "list",
		Description: "List this project's saved recipes.",
		Schema: ActionSchema{
			Required:   []string{"project_id"},
			Properties: map[string]Property{"project_id": {Type: "integer", Description: "project id"}},
		},
		Execute: func(ctx context.Context, params json.RawMessage) (Result, error) {
			var p struct {
				ProjectID int64 `json:"project_id"`
			}
			if err := json.Unmarshal(params, &p); err != nil {
				return Result{}, mkerr.InvalidArgumentf("recipe", "list", "params", "invalid params: %v", err)
			}
			facts, err := store.RecallableFacts(ctx, p.ProjectID, false)
			if err != nil {
				return Result{}, err
			}
			var recipes []mainstore.Fact
			for _, f := range facts {
				if f.Category == recipeCategory {
					recipes = append(recipes, f)
				}
			}
			return Result{Text: fmt.Sprintf("%d recipes", len(recipes)), Data: recipes}, nil
		},
	})
}
