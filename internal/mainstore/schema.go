// Package mainstore owns main.db: projects, sessions, memory facts,
// entities, goals/milestones, behavior events, error patterns,
// documentation inventory, insights, observations, tool traces, and
// retention metadata (spec §3, component A/E/F).
package mainstore

import (
	"database/sql"
	"fmt"

	"github.com/ConaryLabs/mira/internal/dbutil"
)

// migrations is the ordered list of schema changes for main.db.
var migrations = []dbutil.Migration{
	{Version: 1, Name: "initial_schema", Up: migrateV1},
}

func migrateV1(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS projects (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL UNIQUE,
			display_name TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,

		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			project_id INTEGER NOT NULL REFERENCES projects(id),
			status TEXT NOT NULL DEFAULT 'active',
			started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			last_activity_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			closed_at DATETIME,
			tool_call_count INTEGER NOT NULL DEFAULT 0,
			files_touched TEXT NOT NULL DEFAULT '[]',
			summary TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_project ON sessions(project_id);
		CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status);`,

		`CREATE TABLE IF NOT EXISTS memory_facts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL REFERENCES projects(id),
			key TEXT NOT NULL,
			content TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'candidate',
			confidence REAL NOT NULL DEFAULT 0.5,
			category TEXT,
			fact_type TEXT,
			tags TEXT NOT NULL DEFAULT '[]',
			salience REAL NOT NULL DEFAULT 0.5,
			embedding BLOB,
			embedding_dimension INTEGER,
			observation_count INTEGER NOT NULL DEFAULT 1,
			last_observed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(project_id, key)
		);
		CREATE INDEX IF NOT EXISTS idx_facts_project ON memory_facts(project_id);
		CREATE INDEX IF NOT EXISTS idx_facts_status ON memory_facts(status);`,

		`CREATE TABLE IF NOT EXISTS entities (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL REFERENCES projects(id),
			kind TEXT NOT NULL,
			entity_key TEXT NOT NULL,
			display_name TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(project_id, kind, entity_key)
		);`,

		`CREATE TABLE IF NOT EXISTS goals (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL REFERENCES projects(id),
			title TEXT NOT NULL,
			description TEXT,
			priority INTEGER NOT NULL DEFAULT 50,
			status TEXT NOT NULL DEFAULT 'open',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_goals_project ON goals(project_id);`,

		`CREATE TABLE IF NOT EXISTS milestones (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			goal_id INTEGER NOT NULL REFERENCES goals(id),
			sequence INTEGER NOT NULL,
			title TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(goal_id, sequence)
		);`,

		`CREATE TABLE IF NOT EXISTS behavior_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL REFERENCES projects(id),
			session_id TEXT NOT NULL REFERENCES sessions(id),
			sequence_position INTEGER NOT NULL,
			event_type TEXT NOT NULL,
			tool TEXT,
			payload TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(session_id, sequence_position)
		);
		CREATE INDEX IF NOT EXISTS idx_behavior_session ON behavior_events(session_id);
		CREATE INDEX IF NOT EXISTS idx_behavior_project ON behavior_events(project_id);`,

		`CREATE TABLE IF NOT EXISTS error_patterns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL REFERENCES projects(id),
			tool TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			normalized_text TEXT NOT NULL,
			unresolved_count INTEGER NOT NULL DEFAULT 1,
			resolved INTEGER NOT NULL DEFAULT 0,
			last_fix TEXT,
			last_sequence_position INTEGER,
			first_seen_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			last_seen_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			resolved_at DATETIME,
			UNIQUE(project_id, tool, fingerprint)
		);`,

		`CREATE TABLE IF NOT EXISTS insights (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL REFERENCES projects(id),
			insight_type TEXT NOT NULL,
			dedup_key TEXT NOT NULL,
			content TEXT NOT NULL,
			expires_at DATETIME NOT NULL,
			dismissed INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(project_id, insight_type, dedup_key)
		);
		CREATE INDEX IF NOT EXISTS idx_insights_project ON insights(project_id);
		CREATE INDEX IF NOT EXISTS idx_insights_expires ON insights(expires_at);`,

		`CREATE TABLE IF NOT EXISTS observations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL REFERENCES projects(id),
			kind TEXT NOT NULL,
			content TEXT NOT NULL,
			expires_at DATETIME NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_observations_project ON observations(project_id);`,

		`CREATE TABLE IF NOT EXISTS documentation (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL REFERENCES projects(id),
			path TEXT NOT NULL,
			title TEXT,
			summary TEXT,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(project_id, path)
		);`,

		`CREATE TABLE IF NOT EXISTS tool_traces (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL REFERENCES projects(id),
			session_id TEXT NOT NULL REFERENCES sessions(id),
			tool TEXT NOT NULL,
			action TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			success INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_traces_session ON tool_traces(session_id);`,
	}

	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return fmt.Errorf("exec: %w", err)
		}
	}
	return nil
}
