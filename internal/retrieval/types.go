// Package retrieval implements component D: a hybrid search that fans
// semantic, keyword, and fuzzy subsearches out concurrently and fuses
// them into one ranked, budget-capped context, grounded on the
// teacher's internal/retrieval package (SparseRetriever's keyword
// ranking, TieredContextBuilder's tiered budget assembly).
package retrieval

// SourceKind tags which subsearch produced a hit, for diagnostics and
// for fusion, which takes a hit's best score across sources with no
// per-source weighting.
type SourceKind string

const (
	SourceSemantic SourceKind = "semantic"
	SourceKeyword  SourceKind = "keyword"
	SourceFuzzy    SourceKind = "fuzzy"
)

// CodeHit is one candidate chunk surfaced by any subsearch, before
// fusion assigns it a composite score.
type CodeHit struct {
	ChunkID    int64
	FilePath   string
	Content    string
	Language   string
	StartLine  int
	EndLine    int
	Sources    map[SourceKind]float64 // per-source raw score, 0..1 normalized
	ModTime    int64                   // unix seconds, for recency scoring
	ProjectID  int64
}

// FactHit is one candidate memory fact surfaced by any subsearch.
type FactHit struct {
	FactID    int64
	ProjectID int64
	Content   string
	Category  string
	Salience  float64
	Sources   map[SourceKind]float64
	UpdatedAt int64
}

// Scored pairs a candidate with its fused composite score.
type Scored[T any] struct {
	Item  T
	Score float64
}
