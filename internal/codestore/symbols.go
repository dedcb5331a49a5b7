package codestore

import "context"

// Symbol is a parsed AST declaration, carrying the fields spec §4.B
// names: "(name, kind, start_line, end_line)".
type Symbol struct {
	ID        int64
	Name      string
	Kind      string
	StartLine int
	EndLine   int
	Signature string
}

// ReplaceSymbolsForFile atomically replaces every symbol row for fileID
// with syms. Re-parsing a changed file always starts from a clean slate
// rather than diffing, since call_edges and chunks cascade off symbol
// deletion through file_id, not symbol_id, so this never orphans them.
func (s *Store) ReplaceSymbolsForFile(ctx context.Context, projectID, fileID int64, syms []Symbol) ([]int64, error) {
	tx, err := s.pool.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM symbols WHERE file_id = ?`, fileID); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(syms))
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO symbols(project_id, file_id, name, kind, start_line, end_line, signature)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	for _, sym := range syms {
		res, err := stmt.ExecContext(ctx, projectID, fileID, sym.Name, sym.Kind, sym.StartLine, sym.EndLine, sym.Signature)
		if err != nil {
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, tx.Commit()
}

// SymbolsForFile returns the symbols parsed out of fileID, ordered by
// position.
func (s *Store) SymbolsForFile(ctx context.Context, fileID int64) ([]Symbol, error) {
	rows, err := s.pool.DB.QueryContext(ctx,
		`SELECT id, name, kind, start_line, end_line, signature FROM symbols WHERE file_id = ? ORDER BY start_line`, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Symbol
	for rows.Next() {
		var sym Symbol
		if err := rows.Scan(&sym.ID, &sym.Name, &sym.Kind, &sym.StartLine, &sym.EndLine, &sym.Signature); err != nil {
			return nil, err
		}
		out = append(out, sym)
	}
	return out, rows.Err()
}

// SymbolsByName finds symbols across a project by exact name, used to
// resolve call-edge callee names to defining symbols.
func (s *Store) SymbolsByName(ctx context.Context, projectID int64, name string) ([]Symbol, error) {
	rows, err := s.pool.DB.QueryContext(ctx,
		`SELECT id, name, kind, start_line, end_line, signature FROM symbols WHERE project_id = ? AND name = ?`,
		projectID, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Symbol
	for rows.Next() {
		var sym Symbol
		if err := rows.Scan(&sym.ID, &sym.Name, &sym.Kind, &sym.StartLine, &sym.EndLine, &sym.Signature); err != nil {
			return nil, err
		}
		out = append(out, sym)
	}
	return out, rows.Err()
}
