package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rumor-ml/commons.systems/finledger/internal/domain"
)

// InsertTransaction attempts a conditional insert keyed by the natural
// uniqueness tuple (account, date, amount, description). Returns true when a
// row was inserted, false when the tuple already existed (the no-op dedup
// path). The conflict is resolved by the database itself, so two racing
// imports cannot both insert the same row.
func (t *Tx) InsertTransaction(ctx context.Context, txn *domain.Transaction) (bool, error) {
	var balance any
	if b, ok := txn.BalanceString(); ok {
		balance = b
	}
	var importID any
	if txn.ImportID != "" {
		importID = txn.ImportID
	}
	var categoryID any
	if txn.CategoryID != nil {
		categoryID = *txn.CategoryID
	}

	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO transactions (account_id, txn_date, description, amount, balance, category_id, import_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (account_id, txn_date, amount, description) DO NOTHING`,
		txn.AccountID, txn.Date, txn.Description, txn.AmountString(), balance, categoryID, importID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert transaction (%s, %s): %w", txn.Date, txn.Description, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n == 1, nil
}

// BeginImport writes the audit row for an import run with zero counts.
// It runs before the first transaction insert so rows carrying this import ID
// satisfy the foreign key.
func (t *Tx) BeginImport(ctx context.Context, run *domain.ImportRun) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO imports (import_id, source_file, started_at)
		VALUES (?, ?, ?)`,
		run.ID, run.SourceFile, run.StartedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record import %s: %w", run.ID, err)
	}
	return nil
}

// FinishImport stores the final counts on the audit row.
func (t *Tx) FinishImport(ctx context.Context, run *domain.ImportRun) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE imports SET inserted = ?, skipped = ?, failed = ? WHERE import_id = ?`,
		run.Inserted, run.Skipped, run.Failed, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finalize import %s: %w", run.ID, err)
	}
	return nil
}

// CountTransactions returns the number of rows in the transactions table.
func (s *Store) CountTransactions(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return n, nil
}
