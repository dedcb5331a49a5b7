package codestore

import "context"

// Pending-embedding statuses.
const (
	EmbedPending = "pending"
	EmbedDone    = "done"
	EmbedDead    = "dead"
)

// maxEmbedAttempts bounds how many times the fast lane retries a single
// queue row before giving up and marking it dead, so a permanently
// failing chunk (e.g. content the provider always 400s on) can't spin
// forever (spec §4.C dead-letter requirement).
const maxEmbedAttempts = 5

// PendingEmbedding is one row of the embedding work queue.
type PendingEmbedding struct {
	ID        int64
	ProjectID int64
	Kind      string
	RefID     int64
	Attempts  int
}

// DrainBatch claims up to limit pending rows for processing, oldest
// first. The fast lane calls this once per cycle.
func (s *Store) DrainBatch(ctx context.Context, limit int) ([]PendingEmbedding, error) {
	rows, err := s.pool.DB.QueryContext(ctx,
		`SELECT id, project_id, kind, ref_id, attempts FROM pending_embeddings
		 WHERE status = ? ORDER BY id ASC LIMIT ?`, EmbedPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PendingEmbedding
	for rows.Next() {
		var p PendingEmbedding
		if err := rows.Scan(&p.ID, &p.ProjectID, &p.Kind, &p.RefID, &p.Attempts); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkEmbedDone removes a successfully embedded row from the queue.
func (s *Store) MarkEmbedDone(ctx context.Context, id int64) error {
	_, err := s.pool.DB.ExecContext(ctx, `DELETE FROM pending_embeddings WHERE id = ?`, id)
	return err
}

// MarkEmbedFailed increments a row's attempt counter and, once
// maxEmbedAttempts is reached, moves it to the dead status so it's
// excluded from future DrainBatch calls without losing the audit trail.
func (s *Store) MarkEmbedFailed(ctx context.Context, id int64, errMsg string) error {
	_, err := s.pool.DB.ExecContext(ctx,
		`UPDATE pending_embeddings SET attempts = attempts + 1, last_error = ?,
		   status = CASE WHEN attempts + 1 >= ? THEN ? ELSE status END
		 WHERE id = ?`, errMsg, maxEmbedAttempts, EmbedDead, id)
	return err
}

// EnqueueAllActiveChunks re-enqueues every active chunk in a project
// exactly once, used after a provider/dimension change (spec invariant:
// "vec_code is truncated and all live chunks re-enqueued exactly once").
// ON CONFLICT DO NOTHING makes this idempotent if called twice.
func (s *Store) EnqueueAllActiveChunks(ctx context.Context, projectID int64) (int64, error) {
	res, err := s.pool.DB.ExecContext(ctx,
		`INSERT INTO pending_embeddings(project_id, kind, ref_id)
		 SELECT project_id, 'chunk', id FROM chunks WHERE project_id = ? AND status = ?
		 ON CONFLICT(kind, ref_id) DO NOTHING`, projectID, ChunkActive)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountPendingByStatus returns the queue depth for a status, used by
// tests and health checks to assert the "never neither, never both"
// chunk/embedding invariant.
func (s *Store) CountPendingByStatus(ctx context.Context, projectID int64, status string) (int, error) {
	var n int
	err := s.pool.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pending_embeddings WHERE project_id = ? AND status = ?`, projectID, status).Scan(&n)
	return n, err
}
