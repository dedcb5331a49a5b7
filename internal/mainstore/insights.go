package mainstore

import (
	"context"
	"time"

	"github.com/ConaryLabs/mira/internal/mkerr"
)

// Insight is a TTL-tagged, project-scoped derived observation.
type Insight struct {
	ID          int64
	ProjectID   int64
	InsightType string
	DedupKey    string
	Content     string
	ExpiresAt   time.Time
	Dismissed   bool
}

// UpsertInsight inserts an insight keyed by (project, insight_type,
// dedup_key); a second insertion with the same key refreshes the existing
// row's content and expiry rather than adding a duplicate row. insight_type carries a typed
// prefix (e.g. "insight_tool_chain" vs a mined pattern's own type) so
// pondering insights and SQL-mined patterns never collide on dedup_key,
// per spec §4.F.
func (s *Store) UpsertInsight(ctx context.Context, projectID int64, insightType, dedupKey, content string, expiresAt time.Time) (int64, error) {
	var id int64
	err := s.pool.DB.QueryRowContext(ctx,
		`INSERT INTO insights(project_id, insight_type, dedup_key, content, expires_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(project_id, insight_type, dedup_key) DO UPDATE SET
		   content = excluded.content, expires_at = excluded.expires_at
		 RETURNING id`,
		projectID, insightType, dedupKey, content, expiresAt).Scan(&id)
	return id, err
}

// ActiveInsights returns non-expired, non-dismissed insights for a project.
func (s *Store) ActiveInsights(ctx context.Context, projectID int64, now time.Time) ([]Insight, error) {
	rows, err := s.pool.DB.QueryContext(ctx,
		`SELECT id, project_id, insight_type, dedup_key, content, expires_at, dismissed
		 FROM insights WHERE project_id = ? AND dismissed = 0 AND expires_at > ? ORDER BY id DESC`,
		projectID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Insight
	for rows.Next() {
		var ins Insight
		var dismissed int
		if err := rows.Scan(&ins.ID, &ins.ProjectID, &ins.InsightType, &ins.DedupKey, &ins.Content, &ins.ExpiresAt, &dismissed); err != nil {
			return nil, err
		}
		ins.Dismissed = dismissed != 0
		out = append(out, ins)
	}
	return out, rows.Err()
}

// DismissInsight requires (insight_source, project) rather than a bare
// raw id, to prevent cross-table ID collisions (spec §4.F). insightSource
// is the (insight_type, dedup_key) pair identifying the insight.
func (s *Store) DismissInsight(ctx context.Context, projectID int64, insightType, dedupKey string) error {
	res, err := s.pool.DB.ExecContext(ctx,
		`UPDATE insights SET dismissed = 1 WHERE project_id = ? AND insight_type = ? AND dedup_key = ?`,
		projectID, insightType, dedupKey)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mkerr.New(mkerr.NotFound, "insight not found")
	}
	return nil
}

// InsertObservation stores a project-scoped, TTL-tagged observation.
func (s *Store) InsertObservation(ctx context.Context, projectID int64, kind, content string, expiresAt time.Time) error {
	_, err := s.pool.DB.ExecContext(ctx,
		`INSERT INTO observations(project_id, kind, content, expires_at) VALUES (?, ?, ?, ?)`,
		projectID, kind, content, expiresAt)
	return err
}

// ActiveObservations returns non-expired observations for a project.
func (s *Store) ActiveObservations(ctx context.Context, projectID int64, now time.Time) ([]string, error) {
	rows, err := s.pool.DB.QueryContext(ctx,
		`SELECT content FROM observations WHERE project_id = ? AND expires_at > ? ORDER BY id DESC`, projectID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
