package mainstore

import "context"

// RecordToolTrace stores a tool-call trace, the substrate the behavioral
// layer mines for insight_tool_chain patterns (spec §9 supplement,
// grounded on the teacher's reasoning_traces table).
func (s *Store) RecordToolTrace(ctx context.Context, projectID int64, sessionID, tool, action string, durationMs int64, success bool) error {
	_, err := s.pool.DB.ExecContext(ctx,
		`INSERT INTO tool_traces(project_id, session_id, tool, action, duration_ms, success) VALUES (?, ?, ?, ?, ?, ?)`,
		projectID, sessionID, tool, action, durationMs, success)
	return err
}

// ToolTraceRow is a single recorded tool invocation.
type ToolTraceRow struct {
	Tool       string
	Action     string
	DurationMs int64
	Success    bool
}

// RecentToolTraces returns the most recent traces for a session, used by
// the pattern miner to detect tool chains.
func (s *Store) RecentToolTraces(ctx context.Context, sessionID string, limit int) ([]ToolTraceRow, error) {
	rows, err := s.pool.DB.QueryContext(ctx,
		`SELECT tool, action, duration_ms, success FROM tool_traces WHERE session_id = ? ORDER BY id DESC LIMIT ?`,
		sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ToolTraceRow
	for rows.Next() {
		var t ToolTraceRow
		var success int
		if err := rows.Scan(&t.Tool, &t.Action, &t.DurationMs, &success); err != nil {
			return nil, err
		}
		t.Success = success != 0
		out = append(out, t)
	}
	return out, rows.Err()
}
