package codestore

import "context"

// CallEdge is one call site discovered by extract_calls. CallerSymbolID
// is nil when the call occurs outside any recognized symbol (e.g. at
// package init scope).
type CallEdge struct {
	ID             int64
	CallerSymbolID *int64
	CalleeName     string
	CallLine       int
}

// ReplaceCallEdgesForFile atomically replaces fileID's call edges.
func (s *Store) ReplaceCallEdgesForFile(ctx context.Context, projectID, fileID int64, edges []CallEdge) error {
	tx, err := s.pool.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM call_edges WHERE file_id = ?`, fileID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO call_edges(project_id, file_id, caller_symbol_id, callee_name, call_line) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range edges {
		if _, err := stmt.ExecContext(ctx, projectID, fileID, e.CallerSymbolID, e.CalleeName, e.CallLine); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CallersOf returns every recorded call site targeting calleeName.
func (s *Store) CallersOf(ctx context.Context, projectID int64, calleeName string) ([]CallEdge, error) {
	rows, err := s.pool.DB.QueryContext(ctx,
		`SELECT id, caller_symbol_id, callee_name, call_line FROM call_edges WHERE project_id = ? AND callee_name = ?`,
		projectID, calleeName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CallEdge
	for rows.Next() {
		var e CallEdge
		if err := rows.Scan(&e.ID, &e.CallerSymbolID, &e.CalleeName, &e.CallLine); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
