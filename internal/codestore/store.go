package codestore

import (
	"database/sql"

	"github.com/ConaryLabs/mira/internal/dbutil"
	"github.com/ConaryLabs/mira/internal/mkerr"
	"github.com/ConaryLabs/mira/internal/mlog"
)

// Store owns code.db. It uses the pure-Go modernc.org/sqlite driver so
// the code index never forces a cgo build on platforms where the main
// store's sqlite-vec extension isn't available, per SPEC_FULL.md's
// domain-stack split between the two stores.
type Store struct {
	pool *dbutil.Pool
}

// Open opens (and migrates) code.db at path.
func Open(path string) (*Store, error) {
	pool, err := dbutil.Open(dbutil.DriverModernc, path)
	if err != nil {
		return nil, err
	}
	if err := dbutil.RunMigrations(pool.DB, migrations); err != nil {
		pool.Close()
		return nil, mkerr.Wrap(mkerr.DataIntegrity, err, "code store migration failed")
	}
	if err := ensureCodeFTS(pool.DB); err != nil {
		pool.Close()
		return nil, mkerr.Wrap(mkerr.DataIntegrity, err, "code store fts5 setup failed")
	}
	dbutil.RegisterModerncVecFunctions()
	mlog.Get(mlog.CategoryCodeStore).Info("code store ready at %s", path)
	return &Store{pool: pool}, nil
}

// DB exposes the underlying handle to components (parser, embedding,
// retrieval) that need direct query access.
func (s *Store) DB() *sql.DB { return s.pool.DB }

// Close closes the underlying database.
func (s *Store) Close() error { return s.pool.Close() }
