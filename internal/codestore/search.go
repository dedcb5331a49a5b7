package codestore

import (
	"context"
	"strings"
)

// CodeKeywordHit is one FTS5 match.
type CodeKeywordHit struct {
	ChunkID int64
	Rank    float64
}

// escapeFTSQuery quotes each token so characters FTS5's query syntax
// treats specially (", -, *, :) are matched literally rather than
// parsed as query operators, mirroring mainstore's escapeLike for the
// FTS lane of the hybrid retriever.
func escapeFTSQuery(q string) string {
	fields := strings.Fields(q)
	for i, f := range fields {
		fields[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(fields, " ")
}

// KeywordSearch runs an FTS5 match over code_fts, ranked by bm25,
// scoped to a project through the chunks join.
func (s *Store) KeywordSearch(ctx context.Context, projectID int64, query string, limit int) ([]CodeKeywordHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	rows, err := s.pool.DB.QueryContext(ctx,
		`SELECT f.ref_id, bm25(code_fts) AS rank
		 FROM code_fts f JOIN chunks c ON c.id = f.ref_id
		 WHERE code_fts MATCH ? AND c.project_id = ? AND c.status = ?
		 ORDER BY rank LIMIT ?`,
		escapeFTSQuery(query), projectID, ChunkActive, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CodeKeywordHit
	for rows.Next() {
		var h CodeKeywordHit
		if err := rows.Scan(&h.ChunkID, &h.Rank); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
