package codestore

import "context"

// Import is one import statement discovered by extract_imports.
type Import struct {
	ImportPath string
	Alias      string
}

// ReplaceImportsForFile atomically replaces fileID's import rows.
func (s *Store) ReplaceImportsForFile(ctx context.Context, projectID, fileID int64, imports []Import) error {
	tx, err := s.pool.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM imports WHERE file_id = ?`, fileID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO imports(project_id, file_id, import_path, alias) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, imp := range imports {
		if _, err := stmt.ExecContext(ctx, projectID, fileID, imp.ImportPath, imp.Alias); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ImportersOf returns every file that imports importPath, used to scope
// "who depends on this package" queries.
func (s *Store) ImportersOf(ctx context.Context, projectID int64, importPath string) ([]string, error) {
	rows, err := s.pool.DB.QueryContext(ctx,
		`SELECT DISTINCT f.path FROM imports i JOIN files f ON f.id = i.file_id
		 WHERE i.project_id = ? AND i.import_path = ?`, projectID, importPath)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
