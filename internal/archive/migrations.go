package archive

import (
	"context"
	"database/sql"
	"fmt"
)

// migration is one schema step. Migrations apply in ascending version
// order and are tracked in the _migrations table, so re-opening an
// up-to-date store is a no-op.
type migration struct {
	version     int
	description string
	up          func(tx *sql.Tx) error
}

func migrations() []migration {
	return []migration{
		{
			version:     1,
			description: "create run archive tables",
			up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE IF NOT EXISTS runs (
						id TEXT PRIMARY KEY,
						hostname TEXT NOT NULL,
						generated_at DATETIME NOT NULL,
						overall TEXT NOT NULL,
						failures INTEGER NOT NULL DEFAULT 0,
						report_json TEXT NOT NULL,
						created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
					`CREATE INDEX IF NOT EXISTS idx_runs_host_time ON runs(hostname, generated_at)`,

					`CREATE TABLE IF NOT EXISTS raw_results (
						id INTEGER PRIMARY KEY AUTOINCREMENT,
						run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
						cmd_key TEXT NOT NULL,
						command TEXT NOT NULL,
						status TEXT NOT NULL,
						payload TEXT,
						created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
					`CREATE INDEX IF NOT EXISTS idx_raw_results_run ON raw_results(run_id)`,
				}
				for _, stmt := range stmts {
					if _, err := tx.Exec(stmt); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			version:     2,
			description: "record run and command durations",
			up: func(tx *sql.Tx) error {
				stmts := []string{
					`ALTER TABLE runs ADD COLUMN duration_ms INTEGER NOT NULL DEFAULT 0`,
					`ALTER TABLE raw_results ADD COLUMN duration_ms INTEGER NOT NULL DEFAULT 0`,
				}
				for _, stmt := range stmts {
					if _, err := tx.Exec(stmt); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}

// migrate brings the schema up to date. Already-applied versions are
// skipped.
func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS _migrations (
			version     INTEGER  PRIMARY KEY,
			description TEXT     NOT NULL,
			applied_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure migrations table: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range migrations() {
		var count int
		err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM _migrations WHERE version = ?", m.version,
		).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.version, err)
		}
		if count > 0 {
			continue
		}

		err = s.Tx(ctx, func(tx *sql.Tx) error {
			if err := m.up(tx); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO _migrations (version, description) VALUES (?, ?)",
				m.version, m.description,
			)
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.description, err)
		}
	}
	return nil
}
