package store

import (
	"context"
	"fmt"

	"github.com/rumor-ml/commons.systems/finledger/internal/domain"
)

// ListRules returns all rules in a stable order (pattern text, then rule ID)
// so repeated categorization runs over the same data always pick the same
// winning rule.
func (t *Tx) ListRules(ctx context.Context) ([]domain.Rule, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT rule_id, pattern, category_id FROM rules ORDER BY pattern, rule_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	var rules []domain.Rule
	for rows.Next() {
		var r domain.Rule
		if err := rows.Scan(&r.ID, &r.Pattern, &r.CategoryID); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// UncategorizedTransaction is the slice of a transaction the rule engine
// needs: its identity and the description patterns match against.
type UncategorizedTransaction struct {
	ID          int64
	Description string
}

// Uncategorized returns every transaction with no category assigned.
func (t *Tx) Uncategorized(ctx context.Context) ([]UncategorizedTransaction, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT txn_id, description FROM transactions WHERE category_id IS NULL ORDER BY txn_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query uncategorized transactions: %w", err)
	}
	defer rows.Close()

	var txns []UncategorizedTransaction
	for rows.Next() {
		var u UncategorizedTransaction
		if err := rows.Scan(&u.ID, &u.Description); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, u)
	}
	return txns, rows.Err()
}

// AssignCategory sets the category on a transaction, conditional on the
// category still being null at write time. Returns false when another run
// already categorized it (or it no longer exists), which keeps concurrent
// rule passes from double-categorizing.
func (t *Tx) AssignCategory(ctx context.Context, txnID, categoryID int64) (bool, error) {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE transactions SET category_id = ? WHERE txn_id = ? AND category_id IS NULL`,
		categoryID, txnID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to assign category to transaction %d: %w", txnID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n == 1, nil
}

// EnsureCategory returns the identifier for label, creating the category if
// it does not exist yet.
func (t *Tx) EnsureCategory(ctx context.Context, label string) (int64, error) {
	if _, err := t.tx.ExecContext(ctx,
		`INSERT INTO categories (label) VALUES (?) ON CONFLICT (label) DO NOTHING`, label,
	); err != nil {
		return 0, fmt.Errorf("failed to ensure category %q: %w", label, err)
	}

	var id int64
	if err := t.tx.QueryRowContext(ctx,
		`SELECT category_id FROM categories WHERE label = ?`, label,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to look up category %q: %w", label, err)
	}
	return id, nil
}

// InsertRule adds a rule unless a rule with the same pattern already exists.
// Returns true when a new rule was inserted.
func (t *Tx) InsertRule(ctx context.Context, rule *domain.Rule) (bool, error) {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO rules (pattern, category_id) VALUES (?, ?) ON CONFLICT (pattern) DO NOTHING`,
		rule.Pattern, rule.CategoryID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert rule %q: %w", rule.Pattern, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n == 1, nil
}
