package codestore

import (
	"context"
	"database/sql"
)

// FileRecord is a cached entry in the world-file index, grounded on the
// teacher's world_files cache table (internal/store/local_core.go,
// internal/world/persist.go) and adapted to the code store's schema.
type FileRecord struct {
	ID          int64
	Path        string
	Language    string
	SizeBytes   int64
	ModTime     int64
	Fingerprint string
}

// FileFingerprint returns the cached fingerprint for path, or "" if the
// file isn't indexed yet. The incremental watcher calls this first so it
// can skip files whose fingerprint hasn't changed.
func (s *Store) FileFingerprint(ctx context.Context, projectID int64, path string) (string, error) {
	var fp string
	err := s.pool.DB.QueryRowContext(ctx,
		`SELECT fingerprint FROM files WHERE project_id = ? AND path = ?`, projectID, path).Scan(&fp)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return fp, err
}

// UpsertFile records (or refreshes) a file's world-cache entry and
// returns its id.
func (s *Store) UpsertFile(ctx context.Context, projectID int64, path, language string, sizeBytes, modTime int64, fingerprint string) (int64, error) {
	var id int64
	err := s.pool.DB.QueryRowContext(ctx,
		`INSERT INTO files(project_id, path, language, size_bytes, mod_time, fingerprint, last_indexed_at)
		 VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(project_id, path) DO UPDATE SET
		   language = excluded.language, size_bytes = excluded.size_bytes,
		   mod_time = excluded.mod_time, fingerprint = excluded.fingerprint,
		   last_indexed_at = CURRENT_TIMESTAMP
		 RETURNING id`,
		projectID, path, language, sizeBytes, modTime, fingerprint).Scan(&id)
	return id, err
}

// DeleteFile removes a file and (by cascade) all its symbols, call
// edges, imports, chunks, and index rows. Called when the watcher
// observes a deletion.
func (s *Store) DeleteFile(ctx context.Context, projectID int64, path string) error {
	// code_fts is a virtual table outside the foreign-key cascade.
	if _, err := s.pool.DB.ExecContext(ctx,
		`DELETE FROM code_fts WHERE ref_id IN (
		   SELECT c.id FROM chunks c JOIN files f ON f.id = c.file_id WHERE f.project_id = ? AND f.path = ?)`,
		projectID, path); err != nil {
		return err
	}
	_, err := s.pool.DB.ExecContext(ctx, `DELETE FROM files WHERE project_id = ? AND path = ?`, projectID, path)
	return err
}

// FileExists reports whether path is still present in the world cache,
// used by the retrieval layer to suppress "ghost" hits whose backing
// file was deleted out from under a stale index row.
func (s *Store) FileExists(ctx context.Context, projectID int64, path string) (bool, error) {
	var one int
	err := s.pool.DB.QueryRowContext(ctx,
		`SELECT 1 FROM files WHERE project_id = ? AND path = ?`, projectID, path).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// ListFiles returns every indexed file for a project, used by the full
// project walker to detect files removed since the last walk.
func (s *Store) ListFiles(ctx context.Context, projectID int64) ([]FileRecord, error) {
	rows, err := s.pool.DB.QueryContext(ctx,
		`SELECT id, path, language, size_bytes, mod_time, fingerprint FROM files WHERE project_id = ?`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FileRecord
	for rows.Next() {
		var f FileRecord
		if err := rows.Scan(&f.ID, &f.Path, &f.Language, &f.SizeBytes, &f.ModTime, &f.Fingerprint); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
