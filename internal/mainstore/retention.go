package mainstore

import (
	"context"
	"fmt"

	"github.com/ConaryLabs/mira/internal/dbutil"
	"github.com/ConaryLabs/mira/internal/mlog"
)

// retentionBatchSize bounds each cleanup round so it never holds a write
// lock for long, per spec §4.J ("LIMIT 10_000 per round").
const retentionBatchSize = 10_000

// retainableTables lists tables the retention sweep is allowed to touch,
// using dbutil.Table's typed enum rather than a free-form string. Active
// sessions, confirmed facts, goals, and the code index are deliberately
// absent — spec §4.J: "never retention-deleted".
var retainableTables = map[dbutil.Table]string{
	dbutil.TableBehaviorEvents: "created_at",
	dbutil.TableInsights:       "created_at",
	dbutil.TableObservations:   "created_at",
	dbutil.TableErrorPatterns:  "last_seen_at",
	dbutil.TableToolTraces:     "created_at",
}

// CleanupResult reports what a single table's retention sweep did.
type CleanupResult struct {
	Table        dbutil.Table
	DeletedRows  int64
	Skipped      bool
	SkippedReason string
}

// RunRetention sweeps table according to days, deleting rows older than
// `days` days in batches of retentionBatchSize. days == 0 skips the
// table with a warning rather than silently wiping it (spec invariant 6,
// scenario S6).
func (s *Store) RunRetention(ctx context.Context, table dbutil.Table, days int) (CleanupResult, error) {
	log := mlog.Get(mlog.CategoryRetention)

	column, ok := retainableTables[table]
	if !ok {
		return CleanupResult{Table: table, Skipped: true, SkippedReason: "not a retention-eligible table"}, nil
	}
	if days == 0 {
		log.Warn("retention for table %s configured with days=0; skipping to avoid silently wiping all rows", table)
		return CleanupResult{Table: table, Skipped: true, SkippedReason: "days=0"}, nil
	}
	if days < 0 {
		return CleanupResult{}, fmt.Errorf("retention.days must be >= 0, got %d", days)
	}

	var total int64
	for {
		res, err := s.pool.DB.ExecContext(ctx, fmt.Sprintf(
			`DELETE FROM %s WHERE rowid IN (
				SELECT rowid FROM %s WHERE %s < datetime('now', ?) LIMIT ?
			)`, table, table, column),
			fmt.Sprintf("-%d days", days), retentionBatchSize)
		if err != nil {
			return CleanupResult{}, fmt.Errorf("retention delete on %s: %w", table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return CleanupResult{}, err
		}
		total += n
		if n < retentionBatchSize {
			break
		}
	}
	return CleanupResult{Table: table, DeletedRows: total}, nil
}
