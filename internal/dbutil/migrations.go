package dbutil

import (
	"database/sql"
	"fmt"

	"github.com/ConaryLabs/mira/internal/mlog"
)

// Migration is a single, ordered, idempotent schema change. Up must be
// safe to run inside a SAVEPOINT; it should not itself open transactions.
type Migration struct {
	Version int
	Name    string
	Up      func(tx *sql.Tx) error
}

// versionTableDDL matches spec §6: schema_versions(version INTEGER PRIMARY KEY, applied_at).
const versionTableDDL = `
CREATE TABLE IF NOT EXISTS schema_versions (
	version INTEGER PRIMARY KEY,
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`

// RunMigrations applies every migration in migrations whose version is not
// already recorded in schema_versions, in ascending version order. Each
// migration runs in its own SAVEPOINT-wrapped transaction so a failure
// aborts only that migration, leaving the previous schema version intact
// (spec §7: DataIntegrity aborts the migration transaction).
func RunMigrations(db *sql.DB, migrations []Migration) error {
	log := mlog.Get(mlog.CategoryStore)

	if _, err := db.Exec(versionTableDDL); err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	applied := make(map[int]bool)
	rows, err := db.Query(`SELECT version FROM schema_versions`)
	if err != nil {
		return fmt.Errorf("read schema_versions: %w", err)
	}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return err
		}
		applied[v] = true
	}
	rows.Close()

	for _, m := range migrations {
		if applied[m.Version] {
			log.Debug("migration %d (%s) already applied, skipping", m.Version, m.Name)
			continue
		}
		log.Info("applying migration %d: %s", m.Version, m.Name)

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("SAVEPOINT migration_%d", m.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("savepoint migration %d: %w", m.Version, err)
		}
		if err := m.Up(tx); err != nil {
			_, _ = tx.Exec(fmt.Sprintf("ROLLBACK TO SAVEPOINT migration_%d", m.Version))
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed, previous schema version retained: %w", m.Version, m.Name, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("RELEASE SAVEPOINT migration_%d", m.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("release savepoint migration %d: %w", m.Version, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_versions(version) VALUES (?)`, m.Version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}
	return nil
}
