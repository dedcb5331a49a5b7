package codestore

import (
	"database/sql"

	"github.com/ConaryLabs/mira/internal/dbutil"
)

// migrations is code.db's versioned, savepoint-wrapped schema history,
// grounded on mainstore's identical migration runner (dbutil.RunMigrations)
// and on the teacher's world_files/reasoning_traces table shapes
// (internal/store/local_core.go).
var migrations = []dbutil.Migration{
	{Version: 1, Name: "initial_schema", Up: migrateV1},
}

func migrateV1(tx *sql.Tx) error {
	stmts := []string{
		// files is the world-file cache: one row per indexed file,
		// keyed by canonical path, carrying a cheap fingerprint so the
		// watcher and full-walk indexer can skip unchanged files
		// (teacher: internal/store/local_core.go world_files, internal/world/persist.go).
		`CREATE TABLE IF NOT EXISTS files (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL,
			path TEXT NOT NULL,
			language TEXT NOT NULL DEFAULT 'unknown',
			size_bytes INTEGER NOT NULL DEFAULT 0,
			mod_time INTEGER NOT NULL DEFAULT 0,
			fingerprint TEXT NOT NULL DEFAULT '',
			last_indexed_at DATETIME,
			UNIQUE(project_id, path)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_files_project ON files(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_files_fingerprint ON files(fingerprint)`,
		`CREATE INDEX IF NOT EXISTS idx_files_language ON files(language)`,

		`CREATE TABLE IF NOT EXISTS symbols (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL,
			file_id INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			start_line INTEGER NOT NULL,
			end_line INTEGER NOT NULL,
			signature TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_symbols_file ON symbols(file_id)`,
		`CREATE INDEX IF NOT EXISTS idx_symbols_project_name ON symbols(project_id, name)`,

		`CREATE TABLE IF NOT EXISTS call_edges (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL,
			file_id INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
			caller_symbol_id INTEGER REFERENCES symbols(id) ON DELETE SET NULL,
			callee_name TEXT NOT NULL,
			call_line INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_call_edges_file ON call_edges(file_id)`,
		`CREATE INDEX IF NOT EXISTS idx_call_edges_callee ON call_edges(project_id, callee_name)`,

		`CREATE TABLE IF NOT EXISTS imports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL,
			file_id INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
			import_path TEXT NOT NULL,
			alias TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_imports_file ON imports(file_id)`,
		`CREATE INDEX IF NOT EXISTS idx_imports_path ON imports(project_id, import_path)`,

		// chunks are the retrieval unit: a contiguous slice of a file's
		// source, optionally scoped to one symbol, that vec_code/code_fts
		// reference by id. Deletions cascade to vec_code; code_fts is a
		// virtual table outside the cascade, so ReplaceChunksForFile and
		// DeleteFile remove its rows explicitly (spec invariant 3).
		`CREATE TABLE IF NOT EXISTS chunks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL,
			file_id INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
			symbol_id INTEGER REFERENCES symbols(id) ON DELETE SET NULL,
			start_line INTEGER NOT NULL,
			end_line INTEGER NOT NULL,
			content TEXT NOT NULL,
			language TEXT NOT NULL DEFAULT 'unknown',
			status TEXT NOT NULL DEFAULT 'active',
			content_hash TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_file ON chunks(file_id)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_project_status ON chunks(project_id, status)`,

		// pending_embeddings is the embedding work queue. (kind, ref_id)
		// uniqueness prevents duplicate enqueues when a provider switch
		// re-enqueues every live chunk (spec invariant 4, scenario S3).
		`CREATE TABLE IF NOT EXISTS pending_embeddings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL,
			kind TEXT NOT NULL,
			ref_id INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			attempts INTEGER NOT NULL DEFAULT 0,
			last_error TEXT NOT NULL DEFAULT '',
			enqueued_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(kind, ref_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pending_embeddings_status ON pending_embeddings(status)`,
		`CREATE INDEX IF NOT EXISTS idx_pending_embeddings_project ON pending_embeddings(project_id)`,

		// vec_code holds one dense embedding per live chunk. The table
		// fixes no dimension; each row records its own in the dimension
		// column. A provider/dimension change truncates and rebuilds this
		// table (dbutil.RebuildVectorTable), never alters it in place.
		`CREATE TABLE IF NOT EXISTS vec_code (
			ref_id INTEGER PRIMARY KEY REFERENCES chunks(id) ON DELETE CASCADE,
			embedding BLOB NOT NULL,
			dimension INTEGER NOT NULL
		)`,

		// code_fts_shadow is a plain table keyed by chunk id. The FTS5
		// code_fts virtual table itself is created after migrations by
		// ensureCodeFTS (fts.go), and indexChunkFTS writes search text
		// there directly; no code path populates code_fts_shadow.
		`CREATE TABLE IF NOT EXISTS code_fts_shadow (
			ref_id INTEGER PRIMARY KEY REFERENCES chunks(id) ON DELETE CASCADE,
			content TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
