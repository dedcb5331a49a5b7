package codestore

import "database/sql"

// ensureCodeFTS creates the code_fts virtual table, an FTS5 index that
// stores each chunk's text alongside its unindexed chunk id, grounded on the FTS5
// migration pattern in the retrieval pack (mycoder_cli's `termindex`
// virtual table). Both the mattn and modernc drivers ship fts5 compiled
// in, so this runs unconditionally rather than behind a build tag.
func ensureCodeFTS(db *sql.DB) error {
	_, err := db.Exec(`CREATE VIRTUAL TABLE IF NOT EXISTS code_fts USING fts5(
		content, ref_id UNINDEXED,
		tokenize = 'unicode61 remove_diacritics 2'
	)`)
	return err
}

// indexChunkFTS inserts or replaces a chunk's searchable text. FTS5 has
// no upsert, so a stale row is deleted first.
func (s *Store) indexChunkFTS(refID int64, content string) error {
	if _, err := s.pool.DB.Exec(`DELETE FROM code_fts WHERE ref_id = ?`, refID); err != nil {
		return err
	}
	_, err := s.pool.DB.Exec(`INSERT INTO code_fts(content, ref_id) VALUES (?, ?)`, content, refID)
	return err
}

func (s *Store) deleteChunkFTS(refID int64) error {
	_, err := s.pool.DB.Exec(`DELETE FROM code_fts WHERE ref_id = ?`, refID)
	return err
}
