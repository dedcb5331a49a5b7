package retrieval

import (
	"testing"
	"time"

	"github.com/ConaryLabs/mira/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestRecencyScore_DecaysWithAge(t *testing.T) {
	now := time.Now()

	fresh := recencyScore(now.Unix(), now)
	assert.InDelta(t, 1.0, fresh, 0.01)

	halfLifeAgo := now.Add(-recencyHalfLife).Unix()
	aged := recencyScore(halfLifeAgo, now)
	assert.InDelta(t, 0.5, aged, 0.01, "exactly one half-life ago must score ~0.5")

	assert.Equal(t, 0.0, recencyScore(0, now), "unset timestamp must score 0")
}

func TestRecencyScore_FutureTimestampClampsToZeroAge(t *testing.T) {
	now := time.Now()
	future := now.Add(1 * time.Hour).Unix()
	assert.InDelta(t, 1.0, recencyScore(future, now), 0.01)
}

func TestSimilarityScore_PicksBestAcrossSources(t *testing.T) {
	got := similarityScore(map[SourceKind]float64{
		SourceSemantic: 0.4,
		SourceKeyword:  0.9,
		SourceFuzzy:    0.1,
	})
	assert.Equal(t, 0.9, got)
}

func TestSimilarityScore_EmptySources(t *testing.T) {
	assert.Equal(t, 0.0, similarityScore(nil))
}

func TestProjectMatchScore(t *testing.T) {
	cfg := config.ScoringConfig{CrossProjectScore: 0.3}

	assert.Equal(t, 1.0, projectMatchScore(5, 5, cfg))
	assert.Equal(t, 0.3, projectMatchScore(5, 6, cfg))
}

func TestCompositeScore_WeightsSumToPublishedFormula(t *testing.T) {
	cfg := config.Default().Scoring

	got := CompositeScore(cfg, 1, 1, 1, 1)
	assert.InDelta(t, 1.0, got, 1e-9, "all-1 inputs with the published weights must sum to 1")

	got = CompositeScore(cfg, 0, 0, 0, 0)
	assert.Equal(t, 0.0, got)
}

func TestNormalizeDistance_ClampsToUnitRange(t *testing.T) {
	assert.Equal(t, 1.0, normalizeDistance(0))
	assert.Equal(t, 0.0, normalizeDistance(2))
	assert.InDelta(t, 0.5, normalizeDistance(1), 1e-9)
	assert.Equal(t, 0.0, normalizeDistance(3), "distances beyond the 0..2 range must clamp, not go negative")
}

func TestNormalizeRank_MonotonicallyDecreasing(t *testing.T) {
	better := normalizeRank(-10)
	worse := normalizeRank(10)
	assert.Greater(t, better, worse, "a more negative bm25 rank is a better match and must score higher")
}

func TestNormalizeFuzzyScore_SaturatesAtCeiling(t *testing.T) {
	assert.Equal(t, 1.0, normalizeFuzzyScore(1000))
	assert.Equal(t, 0.0, normalizeFuzzyScore(-5))
	assert.InDelta(t, 0.5, normalizeFuzzyScore(50), 1e-9)
}
