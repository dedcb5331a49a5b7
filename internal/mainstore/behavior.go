package mainstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/ConaryLabs/mira/internal/mkerr"
)

// BehaviorEvent is a single per-session, totally-ordered event.
type BehaviorEvent struct {
	ID               int64
	ProjectID        int64
	SessionID        string
	SequencePosition int
	EventType        string
	Tool             string
	Payload          string
	CreatedAt        time.Time
}

// InsertBehaviorEvent inserts an event at the next sequence_position for
// sessionID. It reads max(sequence_position)+1 and then inserts, without
// a transaction; when a concurrent writer for the same session takes that
// position first, the UNIQUE(session_id, sequence_position) constraint
// rejects the insert and the position is advanced and retried (spec
// invariant 4).
func (s *Store) InsertBehaviorEvent(ctx context.Context, projectID int64, sessionID, eventType, tool, payload string) (int, error) {
	if !ValidSessionID(sessionID) {
		return 0, mkerr.InvalidArgumentf("session", "behavior_event", "session_id", "invalid session id")
	}

	var next int
	err := s.pool.DB.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sequence_position), 0) + 1 FROM behavior_events WHERE session_id = ?`, sessionID).Scan(&next)
	if err != nil {
		return 0, err
	}

	for {
		_, err = s.pool.DB.ExecContext(ctx,
			`INSERT INTO behavior_events(project_id, session_id, sequence_position, event_type, tool, payload)
			 VALUES (?, ?, ?, ?, ?, ?)`, projectID, sessionID, next, eventType, tool, payload)
		if err == nil {
			return next, nil
		}
		// UNIQUE violation: another writer took `next` first. Advance and retry.
		if !isUniqueViolation(err) {
			return 0, err
		}
		next++
	}
}

func isUniqueViolation(err error) bool {
	// Matched by substring only for the narrow, already-retried UNIQUE
	// race above (never used for the busy/locked retry policy, which
	// inspects structured codes in dbutil.RetryWithBackoff).
	return err != nil && (contains(err.Error(), "UNIQUE constraint failed") || contains(err.Error(), "constraint failed: UNIQUE"))
}

func contains(s, sub string) bool {
	return len(s) >= len(sub) && (func() bool {
		for i := 0; i+len(sub) <= len(s); i++ {
			if s[i:i+len(sub)] == sub {
				return true
			}
		}
		return false
	})()
}

// EventsForSession returns a session's events ordered by sequence_position.
func (s *Store) EventsForSession(ctx context.Context, sessionID string) ([]BehaviorEvent, error) {
	rows, err := s.pool.DB.QueryContext(ctx,
		`SELECT id, project_id, session_id, sequence_position, event_type, tool, payload, created_at
		 FROM behavior_events WHERE session_id = ? ORDER BY sequence_position ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []BehaviorEvent
	for rows.Next() {
		var e BehaviorEvent
		var tool, payload sql.NullString
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.SessionID, &e.SequencePosition, &e.EventType, &tool, &payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Tool, e.Payload = tool.String, payload.String
		events = append(events, e)
	}
	return events, rows.Err()
}
