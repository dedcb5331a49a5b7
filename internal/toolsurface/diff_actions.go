package toolsurface

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ConaryLabs/mira/internal/codestore"
	"github.com/ConaryLabs/mira/internal/mkerr"
)

// RegisterDiffActions wires the "diff" tool's changed_files action to
// the code store's world-file cache: which indexed files have a mod_time,
// as recorded when they were last indexed, at or after a given time. It
// compares that column only (not the content fingerprint) and does not
// shell out to a VCS (no example in the pack grounds a git-diff
// integration).
func RegisterDiffActions(r *Registry, store *codestore.Store) error {
	return r.Register(&Action{
		Tool: "diff", Name: "changed_files",
		Description: "List indexed files whose on-disk mtime is at or after a given Unix timestamp.",
		Schema: ActionSchema{
			Required: []string{"project_id", "since_unix"},
			Properties: map[string]Property{
				"project_id": {Type: "integer", Description: "project id"},
				"since_unix": {Type: "integer", Description: "Unix timestamp; files modified at or after this are returned"},
			},
		},
		Execute: func(ctx context.Context, params json.RawMessage) (Result, error) {
			var p struct {
				ProjectID int64 `json:"project_id"`
				SinceUnix int64 `json:"since_unix"`
			}
			if err := json.Unmarshal(params, &p); err != nil {
				return Result{}, mkerr.InvalidArgumentf("diff", "changed_files", "params", "invalid params: %v", err)
			}
			files, err := store.ListFiles(ctx, p.ProjectID)
			if err != nil {
				return Result{}, err
			}
			var changed []codestore.FileRecord
			for _, f := range files {
				if f.ModTime >= p.SinceUnix {
					changed = append(changed, f)
				}
			}
			return Result{Text: fmt.Sprintf("%d files changed since %d", len(changed), p.SinceUnix), Data: changed}, nil
		},
	})
}
