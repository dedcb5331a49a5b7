package mainstore

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ConaryLabs/mira/internal/dbutil"
)

// Fact statuses, per spec §3.1.
const (
	FactCandidate  = "candidate"
	FactConfirmed  = "confirmed"
	FactArchived   = "archived"
	FactSuspicious = "suspicious"
)

// Fact is a memory_facts row.
type Fact struct {
	ID             int64
	ProjectID      int64
	Key            string
	Content        string
	Status         string
	Confidence     float64
	Category       string
	FactType       string
	Tags           []string
	Salience       float64
	Embedding      []byte
	ObservationCount int
	LastObservedAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UpsertCandidateFact inserts a new candidate fact for (project, key), or
// if the key already exists, bumps its observation_count and
// last_observed_at — the repeated-observation evidence that memory.Engine
// uses to decide on promotion.
func (s *Store) UpsertCandidateFact(ctx context.Context, projectID int64, key, content, category, factType string, tagsJSON string, confidence float64) (int64, int, error) {
	var id int64
	var observations int

	err := dbutil.RetryWithBackoff(ctx, func() error {
		tx, err := s.pool.DB.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		err = tx.QueryRowContext(ctx, `SELECT id, observation_count FROM memory_facts WHERE project_id = ? AND key = ?`,
			projectID, key).Scan(&id, &observations)
		if err == sql.ErrNoRows {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO memory_facts(project_id, key, content, status, confidence, category, fact_type, tags, observation_count)
				 VALUES (?, ?, ?, 'candidate', ?, ?, ?, ?, 1)`,
				projectID, key, content, confidence, category, factType, tagsJSON)
			if err != nil {
				return err
			}
			id, err = res.LastInsertId()
			observations = 1
			if err != nil {
				return err
			}
			return tx.Commit()
		}
		if err != nil {
			return err
		}

		observations++
		if _, err := tx.ExecContext(ctx,
			`UPDATE memory_facts SET content = ?, observation_count = ?, last_observed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ?`, content, observations, id); err != nil {
			return err
		}
		return tx.Commit()
	})
	return id, observations, err
}

// InsertConfirmedFact inserts a fact directly as confirmed (explicit
// user-stored fact path, default confidence 0.8 per spec §4.E).
func (s *Store) InsertConfirmedFact(ctx context.Context, projectID int64, key, content, category, factType, tagsJSON string) (int64, error) {
	var id int64
	err := dbutil.RetryWithBackoff(ctx, func() error {
		res, err := s.pool.DB.ExecContext(ctx,
			`INSERT INTO memory_facts(project_id, key, content, status, confidence, category, fact_type, tags)
			 VALUES (?, ?, ?, 'confirmed', 0.8, ?, ?, ?)
			 ON CONFLICT(project_id, key) DO UPDATE SET
			   content=excluded.content, status='confirmed', confidence=0.8, updated_at=CURRENT_TIMESTAMP`,
			projectID, key, content, category, factType, tagsJSON)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

// SetFactStatus transitions a fact's status (e.g. confirmed, archived,
// suspicious). Promotion/demotion policy lives in internal/memory; this
// is the storage primitive.
func (s *Store) SetFactStatus(ctx context.Context, factID int64, status string) error {
	_, err := s.pool.DB.ExecContext(ctx,
		`UPDATE memory_facts SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, factID)
	return err
}

// SetFactEmbedding stores a fact's embedding vector and dimension.
func (s *Store) SetFactEmbedding(ctx context.Context, factID int64, embedding []byte, dimension int) error {
	_, err := s.pool.DB.ExecContext(ctx,
		`UPDATE memory_facts SET embedding = ?, embedding_dimension = ? WHERE id = ?`, embedding, dimension, factID)
	return err
}

// RecallableFacts returns facts eligible for any recall path: status not
// in (archived, suspicious), scoped to project unless allowCrossProject,
// matching spec invariants 1 and 2.
func (s *Store) RecallableFacts(ctx context.Context, projectID int64, allowCrossProject bool) ([]Fact, error) {
	var rows *sql.Rows
	var err error
	if allowCrossProject {
		rows, err = s.pool.DB.QueryContext(ctx,
			`SELECT id, project_id, key, content, status, confidence, category, fact_type, tags, salience,
			        embedding, observation_count, last_observed_at, created_at, updated_at
			 FROM memory_facts WHERE status NOT IN ('archived','suspicious') ORDER BY id`)
	} else {
		rows, err = s.pool.DB.QueryContext(ctx,
			`SELECT id, project_id, key, content, status, confidence, category, fact_type, tags, salience,
			        embedding, observation_count, last_observed_at, created_at, updated_at
			 FROM memory_facts WHERE project_id = ? AND status NOT IN ('archived','suspicious') ORDER BY id`, projectID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facts []Fact
	for rows.Next() {
		var f Fact
		var tagsJSON string
		var embedding sql.NullString
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.Key, &f.Content, &f.Status, &f.Confidence, &f.Category,
			&f.FactType, &tagsJSON, &f.Salience, &embedding, &f.ObservationCount, &f.LastObservedAt,
			&f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		if embedding.Valid {
			f.Embedding = []byte(embedding.String)
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

// FactKeywordSearch runs an FTS-less LIKE-based keyword search (main.db
// has no FTS5 virtual table for facts; code search uses codestore's
// FTS5 table instead). Wildcard characters in query are escaped before
// substitution, per spec §4.D.
func (s *Store) FactKeywordSearch(ctx context.Context, projectID int64, query string, allowCrossProject bool, limit int) ([]Fact, error) {
	escaped := escapeLike(query)
	pattern := "%" + escaped + "%"

	sqlStr := `SELECT id, project_id, key, content, status, confidence, category, fact_type, tags, salience,
	        embedding, observation_count, last_observed_at, created_at, updated_at
	 FROM memory_facts
	 WHERE status NOT IN ('archived','suspicious') AND content LIKE ? ESCAPE '\'`
	args := []any{pattern}
	if !allowCrossProject {
		sqlStr += " AND project_id = ?"
		args = append(args, projectID)
	}
	sqlStr += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.pool.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facts []Fact
	for rows.Next() {
		var f Fact
		var tagsJSON string
		var embedding sql.NullString
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.Key, &f.Content, &f.Status, &f.Confidence, &f.Category,
			&f.FactType, &tagsJSON, &f.Salience, &embedding, &f.ObservationCount, &f.LastObservedAt,
			&f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

// FactSemanticHit is one nearest-neighbor result over memory_facts.
type FactSemanticHit struct {
	FactID   int64
	Distance float64
}

// SemanticSearchFacts ranks recallable facts by cosine distance to
// query. Unlike code chunks (codestore's vec_code, sized for tens of
// thousands of rows), a project's fact corpus is small enough that
// scoring it in Go after one scan beats maintaining a second vec0
// table; the embedding stays inline on memory_facts for exactly this
// reason.
func (s *Store) SemanticSearchFacts(ctx context.Context, projectID int64, query []float32, allowCrossProject bool, limit int) ([]FactSemanticHit, error) {
	facts, err := s.RecallableFacts(ctx, projectID, allowCrossProject)
	if err != nil {
		return nil, err
	}

	hits := make([]FactSemanticHit, 0, len(facts))
	for _, f := range facts {
		if len(f.Embedding) == 0 {
			continue
		}
		vec := dbutil.DecodeVector(f.Embedding)
		dist, err := cosineDistance(query, vec)
		if err != nil {
			continue
		}
		hits = append(hits, FactSemanticHit{FactID: f.ID, Distance: dist})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// cosineDistance computes 1-cosine_similarity, mirroring
// dbutil.vector_distance_cos's definition for the Go-side scoring path.
func cosineDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dimension mismatch %d vs %d", len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		af, bf := float64(a[i]), float64(b[i])
		dot += af * bf
		na += af * af
		nb += bf * bf
	}
	if na == 0 || nb == 0 {
		return 1, nil
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb)), nil
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '\\', '%', '_':
			out = append(out, '\\', r)
		default:
			out = append(out, r)
		}
	}
	return string(out)
}

// CountFactsByStatus is used by tests asserting invariant 6 (retention
// with days=0 is a no-op).
func (s *Store) CountFactsByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := s.pool.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM memory_facts WHERE status = ?`, status).Scan(&n)
	return n, err
}
