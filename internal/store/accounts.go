package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rumor-ml/commons.systems/finledger/internal/domain"
)

// FindAccount looks up an account by (name, institution). The bool result is
// false when no such account exists.
func (t *Tx) FindAccount(ctx context.Context, name, institution string) (int64, bool, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx,
		`SELECT account_id FROM accounts WHERE name = ? AND institution = ?`,
		name, institution,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up account %q at %q: %w", name, institution, err)
	}
	return id, true, nil
}

// CreateAccount inserts a new account row and returns its identifier.
// A uniqueness violation is returned as-is so the caller can detect the
// create race with IsUniqueViolation and retry as a lookup.
func (t *Tx) CreateAccount(ctx context.Context, acct *domain.Account) (int64, error) {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO accounts (name, institution, currency) VALUES (?, ?, ?)`,
		acct.Name, acct.Institution, acct.Currency,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create account %q at %q: %w", acct.Name, acct.Institution, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read new account ID: %w", err)
	}
	return id, nil
}
