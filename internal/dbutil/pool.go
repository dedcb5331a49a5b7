// Package dbutil implements the embedded-store plumbing shared by
// mainstore and codestore: pooled handles, busy_timeout, retry-with-
// backoff, versioned migrations, and vector encode/table helpers (spec
// §4.A). FTS5 setup lives in codestore.
package dbutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ConaryLabs/mira/internal/mlog"
)

// Driver selects the SQLite driver registered for a store. Mira's main
// store uses the cgo mattn/go-sqlite3 driver (needed for the sqlite-vec
// loadable extension path); the code store uses the pure-Go modernc.org
// driver so the indexer keeps working on hosts without a C toolchain.
type Driver string

const (
	DriverMattn   Driver = "sqlite3"
	DriverModernc Driver = "sqlite"
)

// Pool wraps a *sql.DB opened against a single SQLite file with the
// pragmas and single-writer discipline spec §4.A requires.
type Pool struct {
	DB     *sql.DB
	Path   string
	driver Driver
}

// Open opens path with the given driver, sets busy_timeout=5000ms, WAL
// journaling, and a single-writer connection limit (SQLite only allows
// one writer at a time regardless of pool size; capping MaxOpenConns
// avoids SQLITE_BUSY storms under our own retry wrapper).
func Open(driver Driver, path string) (*Pool, error) {
	log := mlog.Get(mlog.CategoryStore)
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open(string(driver), path)
	if err != nil {
		return nil, fmt.Errorf("open %s database at %s: %w", driver, path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			log.Warn("pragma failed (%s): %v", pragma, err)
		}
	}

	return &Pool{DB: db, Path: path, driver: driver}, nil
}

// Close closes the underlying handle.
func (p *Pool) Close() error { return p.DB.Close() }

// WriteTx runs fn inside a transaction under the retry-with-backoff
// policy, committing on success and rolling back on any error.
func (p *Pool) WriteTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return RetryWithBackoff(ctx, func() error {
		tx, err := p.DB.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	})
}

func tableExists(db *sql.DB, name string) bool {
	var n int
	_ = db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	return n > 0
}

func columnExists(db *sql.DB, table, column string) bool {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false
		}
		if name == column {
			return true
		}
	}
	return false
}
