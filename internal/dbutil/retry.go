package dbutil

import (
	"context"
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"
	msqlite "modernc.org/sqlite"

	"github.com/ConaryLabs/mira/internal/mkerr"
)

// backoffSchedule is the fixed retry schedule from spec §4.A: 3 tries at
// 100ms, 500ms, 2s.
var backoffSchedule = []time.Duration{100 * time.Millisecond, 500 * time.Millisecond, 2 * time.Second}

// isBusyOrLocked inspects the structured SQLite error code (never a string
// match) to decide whether err represents SQLITE_BUSY/SQLITE_LOCKED.
func isBusyOrLocked(err error) bool {
	if err == nil {
		return false
	}
	var mattnErr sqlite3.Error
	if errors.As(err, &mattnErr) {
		return mattnErr.Code == sqlite3.ErrBusy || mattnErr.Code == sqlite3.ErrLocked
	}
	var modernErr *msqlite.Error
	if errors.As(err, &modernErr) {
		code := modernErr.Code()
		return code == 5 /* SQLITE_BUSY */ || code == 6 /* SQLITE_LOCKED */
	}
	return false
}

// RetryWithBackoff runs fn up to len(backoffSchedule)+1 times, retrying only
// when the failure is a structurally-identified busy/locked condition.
// Any other error is returned immediately (not retried). If the budget is
// exhausted, the last error is surfaced wrapped as mkerr.Contention.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= len(backoffSchedule); attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isBusyOrLocked(lastErr) {
			return lastErr
		}
		if attempt == len(backoffSchedule) {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoffSchedule[attempt]):
		}
	}
	return mkerr.Wrap(mkerr.Contention, lastErr, "database busy after retry budget exhausted")
}
