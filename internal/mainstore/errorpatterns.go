package mainstore

import (
	"context"
	"database/sql"
)

// ErrorPattern fingerprints a recurring tool failure.
type ErrorPattern struct {
	ID                   int64
	ProjectID            int64
	Tool                 string
	Fingerprint          string
	NormalizedText       string
	UnresolvedCount      int
	Resolved             bool
	LastSequencePosition int
}

// RecordFailure upserts an error_patterns row for (project, tool,
// fingerprint), incrementing unresolved_count (restarting it at 1 when
// the pattern had been resolved) and remembering the sequence_position
// of this failure (spec §4.F).
func (s *Store) RecordFailure(ctx context.Context, projectID int64, tool, fingerprint, normalizedText string, seqPos int) error {
	_, err := s.pool.DB.ExecContext(ctx,
		`INSERT INTO error_patterns(project_id, tool, fingerprint, normalized_text, unresolved_count, last_sequence_position)
		 VALUES (?, ?, ?, ?, 1, ?)
		 ON CONFLICT(project_id, tool, fingerprint) DO UPDATE SET
		   unresolved_count = CASE WHEN error_patterns.resolved = 1 THEN 1 ELSE error_patterns.unresolved_count + 1 END,
		   last_sequence_position = excluded.last_sequence_position,
		   last_seen_at = CURRENT_TIMESTAMP,
		   resolved = 0,
		   resolved_at = NULL`,
		projectID, tool, fingerprint, normalizedText, seqPos)
	return err
}

// ResolveOnSuccess auto-resolves at most one pattern for (project, tool,
// fingerprint) when it has accumulated >= 3 unresolved failures,
// selecting among candidates by most recent sequence_position (spec
// §4.F, scenario S4). Returns whether a pattern was resolved.
func (s *Store) ResolveOnSuccess(ctx context.Context, projectID int64, tool, fingerprint, fix string) (bool, error) {
	var id int64
	var unresolved int
	err := s.pool.DB.QueryRowContext(ctx,
		`SELECT id, unresolved_count FROM error_patterns
		 WHERE project_id = ? AND tool = ? AND fingerprint = ? AND resolved = 0
		 ORDER BY last_sequence_position DESC LIMIT 1`, projectID, tool, fingerprint).Scan(&id, &unresolved)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if unresolved < 3 {
		return false, nil
	}

	res, err := s.pool.DB.ExecContext(ctx,
		`UPDATE error_patterns SET resolved = 1, last_fix = ?, resolved_at = CURRENT_TIMESTAMP WHERE id = ? AND resolved = 0`,
		fix, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
