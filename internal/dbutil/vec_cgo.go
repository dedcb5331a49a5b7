//go:build sqlite_vec && cgo

package dbutil

import (
	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

func init() {
	// Auto-loads the sqlite-vec extension for every mattn/go-sqlite3
	// connection. No main-store table uses vec0: fact similarity is
	// computed in Go (mainstore.SemanticSearchFacts). Behind a build tag
	// because it requires cgo and the vec0 shared library at build time.
	vec.Auto()
}
