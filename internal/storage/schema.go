package storage

import (
	"database/sql"
	"fmt"
)

// currentSchemaVersion is the number of entries in migrations.
const currentSchemaVersion = 1

// migrations[i] upgrades a database from schema version i to i+1.
var migrations = []func(tx *sql.Tx) error{
	createSnapshotTables,
}

// migrate brings the schema to currentSchemaVersion, one transaction per
// step. A schema newer than this binary is an error.
func (db *DB) migrate() error {
	if _, err := db.conn.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	for v := version; v < currentSchemaVersion; v++ {
		step := migrations[v]
		next := v + 1
		err := db.WithTx(func(tx *sql.Tx) error {
			if err := step(tx); err != nil {
				return err
			}
			return setSchemaVersion(tx, next)
		})
		if err != nil {
			return fmt.Errorf("migration to version %d: %w", next, err)
		}
		db.logger.Info("Migrated history database", "path", db.dbPath, "version", next)
	}
	return nil
}

// getSchemaVersion returns the stored schema version, 0 for a new database.
func (db *DB) getSchemaVersion() (int, error) {
	var version int
	err := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

func setSchemaVersion(tx *sql.Tx, version int) error {
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return fmt.Errorf("failed to clear schema version: %w", err)
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}
	return nil
}

// createSnapshotTables holds the fixed counters of each snapshot in
// snapshots, ordered by seq, and its custom metrics in snapshot_metrics.
func createSnapshotTables(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE snapshots (
			seq INTEGER PRIMARY KEY,
			date TEXT NOT NULL,
			modules_count INTEGER NOT NULL,
			modularized_count INTEGER NOT NULL,
			legacy_count INTEGER NOT NULL,
			total_targets INTEGER NOT NULL
		)`,
		`CREATE TABLE snapshot_metrics (
			snapshot_seq INTEGER NOT NULL REFERENCES snapshots(seq) ON DELETE CASCADE,
			key TEXT NOT NULL,
			value INTEGER NOT NULL,
			PRIMARY KEY (snapshot_seq, key)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create snapshot tables: %w", err)
		}
	}
	return nil
}
