package mainstore

import (
	"context"
	"testing"

	"github.com/ConaryLabs/mira/internal/dbutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRetention_DaysZeroSkipsInsteadOfWiping(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	projectID, err := s.EnsureProject(ctx, "/home/dev/widget")
	require.NoError(t, err)
	require.NoError(t, s.RecordFailure(ctx, projectID, "go test", "fp1", "panic", 1))

	result, err := s.RunRetention(ctx, dbutil.TableErrorPatterns, 0)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, "days=0", result.SkippedReason)

	n, err := countRows(s, "error_patterns")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "days=0 must never delete rows")
}

func TestRunRetention_NegativeDaysErrors(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.RunRetention(ctx, dbutil.TableErrorPatterns, -1)
	assert.Error(t, err)
}

func TestRunRetention_NonRetainableTableIsSkipped(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	result, err := s.RunRetention(ctx, dbutil.Table("goals"), 30)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
}

func TestRunRetention_DeletesOldRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	projectID, err := s.EnsureProject(ctx, "/home/dev/widget")
	require.NoError(t, err)
	require.NoError(t, s.RecordFailure(ctx, projectID, "go test", "fp1", "panic", 1))

	_, err = s.pool.DB.ExecContext(ctx,
		`UPDATE error_patterns SET last_seen_at = datetime('now', '-100 days')`)
	require.NoError(t, err)

	result, err := s.RunRetention(ctx, dbutil.TableErrorPatterns, 30)
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Equal(t, int64(1), result.DeletedRows)

	n, err := countRows(s, "error_patterns")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func countRows(s *Store, table string) (int64, error) {
	var n int64
	err := s.pool.DB.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
	return n, err
}
