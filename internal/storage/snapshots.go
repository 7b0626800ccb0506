package storage

import (
	"database/sql"
	"fmt"
)

// SnapshotRow is the stored form of one history snapshot.
type SnapshotRow struct {
	Date             string
	ModulesCount     int
	ModularizedCount int
	LegacyCount      int
	TotalTargets     int
	Metrics          map[string]int
}

// LoadSnapshots returns every stored snapshot in creation order.
func (db *DB) LoadSnapshots() ([]SnapshotRow, error) {
	rows, err := db.conn.Query(`
		SELECT seq, date, modules_count, modularized_count, legacy_count, total_targets
		FROM snapshots ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var seqs []int64
	bySeq := make(map[int64]int)
	out := []SnapshotRow{}
	for rows.Next() {
		var seq int64
		var r SnapshotRow
		if err := rows.Scan(&seq, &r.Date, &r.ModulesCount, &r.ModularizedCount, &r.LegacyCount, &r.TotalTargets); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		r.Metrics = map[string]int{}
		bySeq[seq] = len(out)
		seqs = append(seqs, seq)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(seqs) == 0 {
		return out, nil
	}

	mrows, err := db.conn.Query(`SELECT snapshot_seq, key, value FROM snapshot_metrics`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot metrics: %w", err)
	}
	defer mrows.Close()

	for mrows.Next() {
		var seq int64
		var key string
		var value int
		if err := mrows.Scan(&seq, &key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot metric: %w", err)
		}
		idx, ok := bySeq[seq]
		if !ok {
			continue
		}
		out[idx].Metrics[key] = value
	}
	return out, mrows.Err()
}

// ReplaceSnapshots overwrites the stored sequence with rows in a single
// transaction.
func (db *DB) ReplaceSnapshots(rows []SnapshotRow) error {
	return db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM snapshot_metrics"); err != nil {
			return fmt.Errorf("failed to clear snapshot metrics: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM snapshots"); err != nil {
			return fmt.Errorf("failed to clear snapshots: %w", err)
		}

		snapStmt, err := tx.Prepare(`
			INSERT INTO snapshots (seq, date, modules_count, modularized_count, legacy_count, total_targets)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare snapshot insert: %w", err)
		}
		defer snapStmt.Close()

		metricStmt, err := tx.Prepare(`INSERT INTO snapshot_metrics (snapshot_seq, key, value) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare metric insert: %w", err)
		}
		defer metricStmt.Close()

		for i, r := range rows {
			seq := i + 1
			if _, err := snapStmt.Exec(seq, r.Date, r.ModulesCount, r.ModularizedCount, r.LegacyCount, r.TotalTargets); err != nil {
				return fmt.Errorf("failed to insert snapshot %d: %w", seq, err)
			}
			for key, value := range r.Metrics {
				if _, err := metricStmt.Exec(seq, key, value); err != nil {
					return fmt.Errorf("failed to insert metric %s: %w", key, err)
				}
			}
		}

		db.logger.Debug("Stored snapshots", "count", len(rows))
		return nil
	})
}
