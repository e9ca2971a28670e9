// Package store implements the relational store on SQLite via database/sql.
//
// The store owns the two uniqueness constraints the rest of the system leans
// on: accounts are unique by (name, institution) and transactions by the
// natural key (account, date, amount, description). Both are enforced here,
// in the database, never by application-side check-then-insert.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database handle.
type Store struct {
	db   *sql.DB
	path string
}

// schema is applied on every Open. All statements are idempotent so opening
// an existing database is a no-op.
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	account_id  INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL,
	institution TEXT NOT NULL,
	currency    TEXT NOT NULL,
	UNIQUE (name, institution)
);

CREATE TABLE IF NOT EXISTS categories (
	category_id INTEGER PRIMARY KEY AUTOINCREMENT,
	label       TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS rules (
	rule_id     INTEGER PRIMARY KEY AUTOINCREMENT,
	pattern     TEXT NOT NULL UNIQUE,
	category_id INTEGER NOT NULL REFERENCES categories(category_id)
);

CREATE TABLE IF NOT EXISTS imports (
	import_id   TEXT PRIMARY KEY,
	source_file TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	inserted    INTEGER NOT NULL DEFAULT 0,
	skipped     INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS transactions (
	txn_id      INTEGER PRIMARY KEY AUTOINCREMENT,
	account_id  INTEGER NOT NULL REFERENCES accounts(account_id),
	txn_date    TEXT NOT NULL,
	description TEXT NOT NULL,
	amount      TEXT NOT NULL,
	balance     TEXT,
	category_id INTEGER REFERENCES categories(category_id),
	import_id   TEXT REFERENCES imports(import_id),
	UNIQUE (account_id, txn_date, amount, description)
);

CREATE INDEX IF NOT EXISTS idx_transactions_category
	ON transactions(category_id);
`

// views are the read models the external dashboard consumes. Aggregates cast
// the exact decimal text to REAL; the canonical values stay in the base table.
const views = `
CREATE VIEW IF NOT EXISTS v_monthly_totals AS
SELECT substr(txn_date, 1, 7) AS month,
       COALESCE(SUM(CASE WHEN CAST(amount AS REAL) > 0 THEN CAST(amount AS REAL) END), 0) AS income,
       COALESCE(SUM(CASE WHEN CAST(amount AS REAL) < 0 THEN CAST(amount AS REAL) END), 0) AS spend,
       SUM(CAST(amount AS REAL)) AS net
FROM transactions
GROUP BY month;

CREATE VIEW IF NOT EXISTS v_spend_by_category_month AS
SELECT substr(t.txn_date, 1, 7) AS month,
       c.label AS category,
       SUM(CAST(t.amount AS REAL)) AS total
FROM transactions t
JOIN categories c ON c.category_id = t.category_id
GROUP BY month, category;

CREATE VIEW IF NOT EXISTS v_recurring_candidates AS
SELECT description AS merchant,
       CASE WHEN SUM(CAST(amount AS REAL)) > 0 THEN 'income' ELSE 'expense' END AS kind,
       COUNT(DISTINCT substr(txn_date, 1, 7)) AS months_seen,
       ROUND(AVG(CAST(amount AS REAL)), 2) AS avg_amount
FROM transactions
GROUP BY description
HAVING months_seen >= 3;
`

// Open opens (or creates) the SQLite database at path and ensures the schema
// and reporting views exist.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	if _, err := db.Exec(views); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create reporting views: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Tx scopes one logical operation (one import, or one rule-application pass)
// to a single database transaction.
type Tx struct {
	tx *sql.Tx
}

// WithTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise, so a fatal failure leaves no partial
// state behind.
func (s *Store) WithTx(ctx context.Context, fn func(*Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&Tx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed (%v) after: %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
