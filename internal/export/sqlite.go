package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  DATETIME NOT NULL,
	finished_at DATETIME NOT NULL DEFAULT (datetime('now')),
	joined_rows INTEGER NOT NULL,
	report      TEXT
);

CREATE TABLE IF NOT EXISTS joined (
	run_id        TEXT NOT NULL REFERENCES runs(id),
	country_name  TEXT NOT NULL,
	country_code  TEXT NOT NULL,
	year          INTEGER NOT NULL,
	gdp           REAL NOT NULL,
	renewable_pct REAL,
	region        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_joined_run_id ON joined(run_id);
CREATE INDEX IF NOT EXISTS idx_joined_code_year ON joined(country_code, year);
`

// DefaultBusyTimeout is how long a statement waits on another connection's lock.
const DefaultBusyTimeout = 5 * time.Second

// SQLiteOptions tunes the snapshot connection.
type SQLiteOptions struct {
	// BusyTimeout bounds the wait on a lock held elsewhere before a statement fails with
	// SQLITE_BUSY. Zero means DefaultBusyTimeout.
	BusyTimeout time.Duration
}

// openSQLite opens the database at dsn and applies the connection pragmas. The pool is
// limited to one connection because pragmas are per connection.
func openSQLite(dsn string, opts SQLiteOptions) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	db.SetMaxOpenConns(1)

	busy := opts.BusyTimeout
	if busy <= 0 {
		busy = DefaultBusyTimeout
	}
	for _, pragma := range []string{
		fmt.Sprintf("PRAGMA busy_timeout=%d", busy.Milliseconds()),
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return db, nil
}

// WriteSQLite appends a snapshot of the joined table to the database at dsn, keyed by a
// runs row. Earlier runs in the same file are kept. It returns the run ID, generating one
// when t.RunID is empty.
func WriteSQLite(ctx context.Context, dsn string, t Tables, opts SQLiteOptions) (string, error) {
	db, err := openSQLite(dsn, opts)
	if err != nil {
		return "", err
	}
	defer db.Close() //nolint:errcheck

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return "", eris.Wrap(err, "sqlite: migrate")
	}

	runID := t.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	started := t.StartedAt
	if started.IsZero() {
		started = time.Now()
	}

	var report sql.NullString
	if t.Report != nil {
		b, err := json.Marshal(t.Report)
		if err != nil {
			return "", eris.Wrap(err, "sqlite: marshal report")
		}
		report = sql.NullString{String: string(b), Valid: true}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, joined_rows, report) VALUES (?, ?, ?, ?)`,
		runID, started.UTC(), len(t.Joined), report,
	); err != nil {
		return "", eris.Wrap(err, "sqlite: insert run")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO joined (run_id, country_name, country_code, year, gdp, renewable_pct, region)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: prepare joined insert")
	}
	defer stmt.Close() //nolint:errcheck

	for _, r := range t.Joined {
		if _, err := stmt.ExecContext(ctx,
			runID, r.CountryName, r.CountryCode, r.Year, r.GDP, r.RenewablePct, r.Region,
		); err != nil {
			return "", eris.Wrapf(err, "sqlite: insert %s", r.Key())
		}
	}

	if err := tx.Commit(); err != nil {
		return "", eris.Wrap(err, "sqlite: commit")
	}
	return runID, nil
}
