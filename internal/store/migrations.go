package store

import (
	"context"
	"database/sql"
	"strings"
)

// schema holds the run history DDL. Each statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id             TEXT PRIMARY KEY,
		execution_name TEXT NOT NULL DEFAULT '',
		volume         TEXT NOT NULL DEFAULT '',
		state          TEXT NOT NULL DEFAULT 'PENDING',
		argv           TEXT NOT NULL DEFAULT '[]',
		exit_code      INTEGER,
		error          TEXT NOT NULL DEFAULT '',
		created_at     TEXT NOT NULL,
		completed_at   TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_state ON runs(state)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
}

// alterStatements add columns introduced after the first release.
// SQLite has no ADD COLUMN IF NOT EXISTS, so presence is checked first.
var alterStatements = []struct {
	table    string
	column   string
	alterSQL string
}{
	{
		table:    "runs",
		column:   "log_location",
		alterSQL: "ALTER TABLE runs ADD COLUMN log_location TEXT NOT NULL DEFAULT ''",
	},
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	for _, alter := range alterStatements {
		if err := addColumnIfNotExists(ctx, db, alter.table, alter.column, alter.alterSQL); err != nil {
			return err
		}
	}
	return nil
}

func addColumnIfNotExists(ctx context.Context, db *sql.DB, table, column, alterSQL string) error {
	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+table+")")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt *string
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return err
		}
		if strings.EqualFold(name, column) {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	_, err = db.ExecContext(ctx, alterSQL)
	return err
}
