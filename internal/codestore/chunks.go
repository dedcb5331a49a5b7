package codestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Chunk statuses.
const (
	ChunkActive  = "active"
	ChunkDeleted = "deleted"
)

// Chunk is the retrieval unit described in spec §3.1: "(file, symbol?,
// start_line, end_line, content, language, status)".
type Chunk struct {
	ID          int64
	FileID      int64
	SymbolID    *int64
	StartLine   int
	EndLine     int
	Content     string
	Language    string
	Status      string
	ContentHash string
}

func hashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// ReplaceChunksForFile atomically replaces fileID's chunks, indexes each
// new chunk into code_fts, and enqueues a pending_embeddings row for
// every new chunk id. Old chunk ids are deleted (cascading vec_code and
// code_fts rows), so a reparse never leaves a dangling embedding or FTS
// entry (spec invariant: "vec_code and code_fts always refer to a chunk
// that still exists; chunk deletions cascade").
func (s *Store) ReplaceChunksForFile(ctx context.Context, projectID, fileID int64, chunks []Chunk) ([]int64, error) {
	tx, err := s.pool.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var oldIDs []int64
	rows, err := tx.QueryContext(ctx, `SELECT id FROM chunks WHERE file_id = ?`, fileID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		oldIDs = append(oldIDs, id)
	}
	rows.Close()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE file_id = ?`, fileID); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(chunks))
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks(project_id, file_id, symbol_id, start_line, end_line, content, language, status, content_hash)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	enqueueStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO pending_embeddings(project_id, kind, ref_id) VALUES (?, 'chunk', ?)
		 ON CONFLICT(kind, ref_id) DO NOTHING`)
	if err != nil {
		return nil, err
	}
	defer enqueueStmt.Close()

	for _, c := range chunks {
		hash := hashContent(c.Content)
		res, err := stmt.ExecContext(ctx, projectID, fileID, c.SymbolID, c.StartLine, c.EndLine, c.Content, c.Language, ChunkActive, hash)
		if err != nil {
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
		if _, err := enqueueStmt.ExecContext(ctx, projectID, id); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	// code_fts is a virtual table with no foreign key, so the old
	// chunks' rows are removed explicitly.
	for _, id := range oldIDs {
		if err := s.deleteChunkFTS(id); err != nil {
			return ids, err
		}
	}

	// FTS5 content must be synced outside the owning transaction's
	// prepared statements since it's a separate virtual table; best
	// effort per-row, mirroring indexChunkFTS's delete-then-insert.
	for i, c := range chunks {
		if err := s.indexChunkFTS(ids[i], c.Content); err != nil {
			return ids, err
		}
	}
	return ids, nil
}

// ChunksByIDs fetches chunks in bulk, used by retrieval to hydrate
// semantic/keyword/fuzzy hits back into full chunk rows.
func (s *Store) ChunksByIDs(ctx context.Context, ids []int64) ([]Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT c.id, c.file_id, c.symbol_id, c.start_line, c.end_line, c.content, c.language, c.status, c.content_hash
	          FROM chunks c WHERE c.id IN (` + placeholders(len(ids)) + `)`
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.pool.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Chunk
	for rows.Next() {
		var c Chunk
		if err := rows.Scan(&c.ID, &c.FileID, &c.SymbolID, &c.StartLine, &c.EndLine, &c.Content, &c.Language, &c.Status, &c.ContentHash); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ChunkFilePath resolves a chunk id to its owning file's path, used to
// filter out "ghost" hits (spec §4.D: suppress rows whose backing file
// no longer exists).
func (s *Store) ChunkFilePath(ctx context.Context, chunkID int64) (string, error) {
	var path string
	err := s.pool.DB.QueryRowContext(ctx,
		`SELECT f.path FROM chunks c JOIN files f ON f.id = c.file_id WHERE c.id = ?`, chunkID).Scan(&path)
	return path, err
}

// ChunkFileModTime resolves a chunk id to its owning file's recorded
// mod_time (unix seconds), used by retrieval's recency scoring.
func (s *Store) ChunkFileModTime(ctx context.Context, chunkID int64) (int64, error) {
	var modTime int64
	err := s.pool.DB.QueryRowContext(ctx,
		`SELECT f.mod_time FROM chunks c JOIN files f ON f.id = c.file_id WHERE c.id = ?`, chunkID).Scan(&modTime)
	return modTime, err
}

// CountActiveChunks returns the number of active (non-deleted) chunks
// for a project.
func (s *Store) CountActiveChunks(ctx context.Context, projectID int64) (int, error) {
	var n int
	err := s.pool.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chunks WHERE project_id = ? AND status = ?`, projectID, ChunkActive).Scan(&n)
	return n, err
}

// FuzzyCandidate is one searchable entry for the retrieval package's
// fuzzy subsearch corpus: a chunk paired with the file path and (if
// any) symbol name a fuzzy match should be scored against.
type FuzzyCandidate struct {
	ChunkID    int64
	FilePath   string
	SymbolName string
}

// FuzzyCandidates returns every active chunk in a project as a fuzzy
// search corpus entry, for retrieval's in-memory fuzzy index.
func (s *Store) FuzzyCandidates(ctx context.Context, projectID int64) ([]FuzzyCandidate, error) {
	rows, err := s.pool.DB.QueryContext(ctx,
		`SELECT c.id, f.path, COALESCE(sym.name, '')
		 FROM chunks c
		 JOIN files f ON f.id = c.file_id
		 LEFT JOIN symbols sym ON sym.id = c.symbol_id
		 WHERE c.project_id = ? AND c.status = ?`, projectID, ChunkActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FuzzyCandidate
	for rows.Next() {
		var c FuzzyCandidate
		if err := rows.Scan(&c.ChunkID, &c.FilePath, &c.SymbolName); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, 0, n*2-1)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, '?')
	}
	return string(b)
}
