package mainstore

import "context"

// UpsertDocumentation records a documentation file's inventory entry.
func (s *Store) UpsertDocumentation(ctx context.Context, projectID int64, path, title, summary string) error {
	_, err := s.pool.DB.ExecContext(ctx,
		`INSERT INTO documentation(project_id, path, title, summary) VALUES (?, ?, ?, ?)
		 ON CONFLICT(project_id, path) DO UPDATE SET title = excluded.title, summary = excluded.summary, updated_at = CURRENT_TIMESTAMP`,
		projectID, path, title, summary)
	return err
}

// DocumentationEntry is a row of the documentation inventory.
type DocumentationEntry struct {
	Path    string
	Title   string
	Summary string
}

// ListDocumentation returns a project's documentation inventory.
func (s *Store) ListDocumentation(ctx context.Context, projectID int64) ([]DocumentationEntry, error) {
	rows, err := s.pool.DB.QueryContext(ctx,
		`SELECT path, title, summary FROM documentation WHERE project_id = ? ORDER BY path`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DocumentationEntry
	for rows.Next() {
		var d DocumentationEntry
		if err := rows.Scan(&d.Path, &d.Title, &d.Summary); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
