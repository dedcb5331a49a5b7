package retrieval

import (
	"math"
	"time"

	"github.com/ConaryLabs/mira/internal/config"
)

// recencyHalfLife controls how fast the recency component decays;
// a hit from exactly this long ago scores 0.5 on that axis.
const recencyHalfLife = 14 * 24 * time.Hour

// recencyScore maps a unix timestamp to a 0..1 freshness score using
// exponential decay, so very old hits never drop to a hard zero.
func recencyScore(unixSeconds int64, now time.Time) float64 {
	if unixSeconds == 0 {
		return 0
	}
	age := now.Sub(time.Unix(unixSeconds, 0))
	if age < 0 {
		age = 0
	}
	return math.Exp(-float64(age) / float64(recencyHalfLife) * math.Ln2)
}

// similarityScore picks the best (max) normalized score a hit received
// across its contributing subsearches — a hit semantically close and
// keyword-matched isn't penalized for the keyword subsearch's weaker
// normalization.
func similarityScore(sources map[SourceKind]float64) float64 {
	var best float64
	for _, v := range sources {
		if v > best {
			best = v
		}
	}
	return best
}

// projectMatchScore rewards hits from the active project and
// down-weights cross-project hits per config (spec Open Question 2).
// The composite's third case, project_match = 0 for an explicitly
// excluded fact, never reaches this function: excluded facts (status
// archived/suspicious) are already filtered out of the candidate set
// by mainstore's RecallableFacts/FactKeywordSearch/SemanticSearchFacts queries
// (status NOT IN ('archived','suspicious')), so every hit scored here
// is either same-project or cross-project, never excluded.
func projectMatchScore(hitProject, activeProject int64, cfg config.ScoringConfig) float64 {
	if hitProject == activeProject {
		return 1.0
	}
	return cfg.CrossProjectScore
}

// CompositeScore implements the fusion formula from spec §4.D:
// score = 0.25*recency + 0.45*similarity + 0.15*salience + 0.15*project_match
func CompositeScore(cfg config.ScoringConfig, recency, similarity, salience, projectMatch float64) float64 {
	return cfg.RecencyWeight*recency +
		cfg.SimilarityWeight*similarity +
		cfg.SalienceWeight*salience +
		cfg.ProjectMatchWeight*projectMatch
}

// ScoreCodeHit fuses one code hit's signals into a composite score.
// Chunks have no standalone salience signal, so that axis contributes
// zero (salience is a fact-only concept per spec §3.1).
func ScoreCodeHit(cfg config.ScoringConfig, h CodeHit, activeProject int64, now time.Time) float64 {
	return CompositeScore(cfg,
		recencyScore(h.ModTime, now),
		similarityScore(h.Sources),
		0,
		projectMatchScore(h.ProjectID, activeProject, cfg))
}

// ScoreFactHit fuses one fact hit's signals into a composite score.
func ScoreFactHit(cfg config.ScoringConfig, h FactHit, activeProject int64, now time.Time) float64 {
	return CompositeScore(cfg,
		recencyScore(h.UpdatedAt, now),
		similarityScore(h.Sources),
		h.Salience,
		projectMatchScore(h.ProjectID, activeProject, cfg))
}

// normalizeDistance converts a cosine distance (0=identical, 2=opposite)
// into a 0..1 similarity score for fusion with keyword/fuzzy scores.
func normalizeDistance(dist float64) float64 {
	sim := 1 - dist/2
	if sim < 0 {
		sim = 0
	}
	if sim > 1 {
		sim = 1
	}
	return sim
}

// normalizeRank converts a bm25 rank (more negative = better match, per
// SQLite FTS5 convention) into a 0..1 score via a bounded logistic
// squash so one very strong match doesn't blow out the scale.
func normalizeRank(rank float64) float64 {
	return 1 / (1 + math.Exp(rank/4))
}

// normalizeFuzzyScore converts sahilm/fuzzy's unbounded integer score
// into a 0..1 value, capping at a generous ceiling so short exact
// matches (which score highest) saturate at 1.0.
func normalizeFuzzyScore(score int) float64 {
	const ceiling = 100.0
	v := float64(score) / ceiling
	if v > 1 {
		v = 1
	}
	if v < 0 {
		v = 0
	}
	return v
}
