package mainstore

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ConaryLabs/mira/internal/dbutil"
	"github.com/ConaryLabs/mira/internal/mkerr"
	"github.com/ConaryLabs/mira/internal/mlog"
)

// Store owns main.db. Per spec §3.3, the daemon process is the sole
// owner of this handle; short-lived hooks reach it only via IPC or the
// degraded session_touch write (TouchSession) under the shared retry
// policy (see internal/hook).
type Store struct {
	pool *dbutil.Pool
	mu   sync.Mutex // serializes project-creation race, not general reads
}

// Open opens (and migrates) main.db at path.
func Open(path string) (*Store, error) {
	pool, err := dbutil.Open(dbutil.DriverMattn, path)
	if err != nil {
		return nil, err
	}
	if err := dbutil.RunMigrations(pool.DB, migrations); err != nil {
		pool.Close()
		return nil, mkerr.Wrap(mkerr.DataIntegrity, err, "main store migration failed")
	}
	mlog.Get(mlog.CategoryStore).Info("main store ready at %s", path)
	return &Store{pool: pool}, nil
}

// DB exposes the underlying handle for components (behavior, memory,
// supervisor) that need direct query access within this package's module.
func (s *Store) DB() *sql.DB { return s.pool.DB }

// Close closes the underlying database.
func (s *Store) Close() error { return s.pool.Close() }

// canonicalizePath normalizes a directory path to cleaned, forward-slash
// form with no trailing slash; the root stays "/" so systemDirs can
// reject it.
func canonicalizePath(path string) string {
	abs := filepath.ToSlash(filepath.Clean(path))
	if abs == "/" {
		return abs
	}
	return strings.TrimSuffix(abs, "/")
}

// systemDirs are rejected as project roots (spec §3.1: "system
// directories are rejected").
var systemDirs = map[string]bool{
	"/": true, "/etc": true, "/usr": true, "/bin": true, "/sbin": true,
	"/proc": true, "/sys": true, "/dev": true, "/root": true, "/var": true,
}

// EnsureProject resolves or creates the project row for path, rejecting
// system directories and rows that would collide after canonicalization.
func (s *Store) EnsureProject(ctx context.Context, path string) (int64, error) {
	canon := canonicalizePath(path)
	if systemDirs[canon] {
		return 0, mkerr.New(mkerr.InvalidArgument, fmt.Sprintf("refusing to open system directory %q as a project", canon))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var id int64
	err := s.pool.DB.QueryRowContext(ctx, `SELECT id FROM projects WHERE path = ?`, canon).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	err = dbutil.RetryWithBackoff(ctx, func() error {
		res, err := s.pool.DB.ExecContext(ctx,
			`INSERT INTO projects(path, display_name) VALUES (?, ?)`, canon, filepath.Base(canon))
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("create project: %w", err)
	}
	return id, nil
}

// ProjectPath returns the canonical path of project id.
func (s *Store) ProjectPath(ctx context.Context, id int64) (string, error) {
	var path string
	err := s.pool.DB.QueryRowContext(ctx, `SELECT path FROM projects WHERE id = ?`, id).Scan(&path)
	if err == sql.ErrNoRows {
		return "", mkerr.New(mkerr.NotFound, fmt.Sprintf("project %d not found", id))
	}
	return path, err
}

// ListProjectIDs returns every known project id in a fixed order
// (ORDER BY id), never ambient iteration order, per spec §4.G/§5:
// "project iteration is ORDER BY id — never ambient."
func (s *Store) ListProjectIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.pool.DB.QueryContext(ctx, `SELECT id FROM projects ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
