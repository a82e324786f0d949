// Package archive persists completed health-check runs: a plain-text
// log file in the place field engineers expect it, and a SQLite run
// store that keeps report history for the serve mode.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/mod/semver"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver

	"github.com/diogo-arista/arista-tac-utilities/internal/collect"
	"github.com/diogo-arista/arista-tac-utilities/pkg/health"
)

// ErrNewerSchema is returned when the database was created by a newer
// version of the tool than the currently running binary.
var ErrNewerSchema = fmt.Errorf("run store was created by a newer version of eos-healthcheck")

// Store is the SQLite-backed run archive.
type Store struct {
	db *sql.DB
	mu sync.Mutex // serialize migrations
}

// Open opens (or creates) the run store at path, applies the
// recommended pragmas, verifies the schema version against appVersion,
// and brings the schema up to date.
func Open(ctx context.Context, path, appVersion string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	// SQLite performs best with a single write connection. WAL enables
	// concurrent readers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %q: %w", path, err)
	}

	// modernc.org/sqlite requires SQL statements, not DSN params.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA cache_size=-20000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.checkVersion(ctx, appVersion); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Tx executes fn within a database transaction. The transaction is
// committed if fn returns nil, rolled back otherwise.
func (s *Store) Tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original: %w)", rbErr, err)
		}
		return err
	}

	return tx.Commit()
}

// SaveRun persists the report and every raw command result in one
// transaction. Saving the same run twice is an error; run IDs are
// unique per collection pass.
func (s *Store) SaveRun(ctx context.Context, report *health.Report, run *collect.Run) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	return s.Tx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO runs (id, hostname, generated_at, overall, failures, duration_ms, report_json)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, report.Hostname, report.GeneratedAt.UTC(), report.Overall.String(),
			run.Failures(), run.Duration.Milliseconds(), string(reportJSON),
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for _, res := range run.Results {
			status := "ok"
			payload := res.Text
			if res.Payload != nil {
				raw, err := json.Marshal(res.Payload)
				if err != nil {
					return fmt.Errorf("encode payload for %q: %w", res.Key, err)
				}
				payload = string(raw)
			}
			if res.Failed() {
				status = string(res.Reason)
				payload = res.Err
			}

			_, err := tx.ExecContext(ctx, `
				INSERT INTO raw_results (run_id, cmd_key, command, status, payload, duration_ms)
				VALUES (?, ?, ?, ?, ?, ?)`,
				run.ID, res.Key, res.Command, status, payload, res.Duration.Milliseconds(),
			)
			if err != nil {
				return fmt.Errorf("insert result %q: %w", res.Key, err)
			}
		}
		return nil
	})
}

// RunSummary is one stored run, without the report body.
type RunSummary struct {
	ID          string        `json:"id"`
	Hostname    string        `json:"hostname"`
	GeneratedAt time.Time     `json:"generated_at"`
	Overall     string        `json:"overall"`
	Failures    int           `json:"failures"`
	Duration    time.Duration `json:"duration"`
}

// RecentRuns returns up to limit stored runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hostname, generated_at, overall, failures, duration_ms
		FROM runs ORDER BY generated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var durationMs int64
		if err := rows.Scan(&r.ID, &r.Hostname, &r.GeneratedAt, &r.Overall, &r.Failures, &durationMs); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoadReport returns the stored report for a run ID. Returns nil, nil
// when the run is not found.
func (s *Store) LoadReport(ctx context.Context, runID string) (*health.Report, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT report_json FROM runs WHERE id = ?", runID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load report %q: %w", runID, err)
	}

	var report health.Report
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return nil, fmt.Errorf("decode report %q: %w", runID, err)
	}
	return &report, nil
}

// Prune deletes all but the newest keep runs. Raw results follow
// through the foreign-key cascade. Returns the number of runs removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY generated_at DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

// checkVersion compares the running binary version against the version
// stored in the database. An older binary refuses to open a database
// created by a newer version. The special version "dev" always passes.
func (s *Store) checkVersion(ctx context.Context, currentVersion string) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS _schema_meta (
			id           INTEGER  PRIMARY KEY CHECK (id = 1),
			app_version  TEXT     NOT NULL,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure schema meta table: %w", err)
	}

	var stored string
	err = s.db.QueryRowContext(ctx,
		"SELECT app_version FROM _schema_meta WHERE id = 1",
	).Scan(&stored)

	if err == sql.ErrNoRows {
		_, err = s.db.ExecContext(ctx,
			"INSERT INTO _schema_meta (id, app_version, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)",
			currentVersion,
		)
		if err != nil {
			return fmt.Errorf("insert schema version: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("query schema version: %w", err)
	}

	if stored == "dev" || currentVersion == "dev" {
		return s.updateVersion(ctx, currentVersion)
	}

	cur := normalizeVersion(currentVersion)
	sto := normalizeVersion(stored)

	if semver.Compare(cur, sto) < 0 {
		return fmt.Errorf("%w: database=%s, binary=%s", ErrNewerSchema, stored, currentVersion)
	}
	if semver.Compare(cur, sto) > 0 {
		return s.updateVersion(ctx, currentVersion)
	}
	return nil
}

func (s *Store) updateVersion(ctx context.Context, version string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE _schema_meta SET app_version = ?, updated_at = CURRENT_TIMESTAMP WHERE id = 1",
		version,
	)
	if err != nil {
		return fmt.Errorf("update schema version: %w", err)
	}
	return nil
}

// normalizeVersion ensures a "v" prefix for semver comparison.
func normalizeVersion(v string) string {
	if v != "" && v[0] != 'v' {
		return "v" + v
	}
	return v
}
