package mainstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/ConaryLabs/mira/internal/mkerr"
)

// StaleAfter is the inactivity window after which an active session is
// auto-closed, per spec §3.1.
const StaleAfter = 30 * time.Minute

// sessionIDPattern restricts session IDs used anywhere in file paths or
// SQL to [A-Za-z0-9-], per spec §3.2.
var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// ValidSessionID reports whether id is safe to embed in paths or SQL.
func ValidSessionID(id string) bool { return id != "" && sessionIDPattern.MatchString(id) }

// Session is a bounded activity window belonging to a project.
type Session struct {
	ID             string
	ProjectID      int64
	Status         string // active | completed | abandoned
	StartedAt      time.Time
	LastActivityAt time.Time
	ClosedAt       sql.NullTime
	ToolCallCount  int
	FilesTouched   []string
	Summary        string
}

// StartSession creates a new active session, rejecting malformed IDs.
func (s *Store) StartSession(ctx context.Context, sessionID string, projectID int64) error {
	if !ValidSessionID(sessionID) {
		return mkerr.InvalidArgumentf("session", "start", "session_id", "session id %q contains disallowed characters", sessionID)
	}
	_, err := s.pool.DB.ExecContext(ctx,
		`INSERT INTO sessions(id, project_id, status) VALUES (?, ?, 'active')
		 ON CONFLICT(id) DO NOTHING`, sessionID, projectID)
	return err
}

// TouchSession records a tool call and optional touched file, bumping
// last_activity_at so the stale-session scan leaves it alone.
func (s *Store) TouchSession(ctx context.Context, sessionID string, file string) error {
	if !ValidSessionID(sessionID) {
		return mkerr.InvalidArgumentf("session", "touch", "session_id", "invalid session id")
	}

	tx, err := s.pool.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var filesJSON string
	err = tx.QueryRowContext(ctx, `SELECT files_touched FROM sessions WHERE id = ?`, sessionID).Scan(&filesJSON)
	if err == sql.ErrNoRows {
		return mkerr.New(mkerr.NotFound, fmt.Sprintf("session %q not found", sessionID))
	}
	if err != nil {
		return err
	}

	var files []string
	_ = json.Unmarshal([]byte(filesJSON), &files)
	if file != "" && !containsString(files, file) {
		files = append(files, file)
	}
	encoded, err := json.Marshal(files)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE sessions SET tool_call_count = tool_call_count + 1, files_touched = ?, last_activity_at = CURRENT_TIMESTAMP
		 WHERE id = ?`, string(encoded), sessionID); err != nil {
		return err
	}
	return tx.Commit()
}

func containsString(ss []string, v string) bool {
	for _, s := range ss {
		if s == v {
			return true
		}
	}
	return false
}

// CloseSession transitions an active session to status with a summary.
func (s *Store) CloseSession(ctx context.Context, sessionID, status, summary string) error {
	_, err := s.pool.DB.ExecContext(ctx,
		`UPDATE sessions SET status = ?, summary = ?, closed_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = 'active'`, status, summary, sessionID)
	return err
}

// StaleSessions returns active sessions whose last_activity_at is older
// than StaleAfter, for the slow-lane auto-close scan (scenario S5).
func (s *Store) StaleSessions(ctx context.Context, now time.Time) ([]Session, error) {
	cutoff := now.Add(-StaleAfter)
	rows, err := s.pool.DB.QueryContext(ctx,
		`SELECT id, project_id, status, started_at, last_activity_at, tool_call_count, files_touched
		 FROM sessions WHERE status = 'active' AND last_activity_at < ? ORDER BY id`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		var filesJSON string
		if err := rows.Scan(&sess.ID, &sess.ProjectID, &sess.Status, &sess.StartedAt, &sess.LastActivityAt,
			&sess.ToolCallCount, &filesJSON); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(filesJSON), &sess.FilesTouched)
		out = append(out, sess)
	}
	return out, rows.Err()
}

// ActiveSessions returns every currently-active session for a project,
// ordered by start time, for the "team" tool's presence view: which
// sessions (potentially other agents/collaborators) are mid-flight on
// this project right now.
func (s *Store) ActiveSessions(ctx context.Context, projectID int64) ([]Session, error) {
	rows, err := s.pool.DB.QueryContext(ctx,
		`SELECT id, project_id, status, started_at, last_activity_at, tool_call_count, files_touched
		 FROM sessions WHERE project_id = ? AND status = 'active' ORDER BY started_at`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		var filesJSON string
		if err := rows.Scan(&sess.ID, &sess.ProjectID, &sess.Status, &sess.StartedAt, &sess.LastActivityAt,
			&sess.ToolCallCount, &filesJSON); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(filesJSON), &sess.FilesTouched)
		out = append(out, sess)
	}
	return out, rows.Err()
}

// MaxSequencePosition returns max(sequence_position) for a session's
// behavior events (0 when there are none). InsertBehaviorEvent computes
// its next position with its own query and does not call this.
func (s *Store) MaxSequencePosition(ctx context.Context, sessionID string) (int, error) {
	var max sql.NullInt64
	err := s.pool.DB.QueryRowContext(ctx,
		`SELECT MAX(sequence_position) FROM behavior_events WHERE session_id = ?`, sessionID).Scan(&max)
	if err != nil {
		return 0, err
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64), nil
}
