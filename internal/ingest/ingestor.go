// Package ingest orchestrates one statement file: parse, normalize, resolve
// accounts, and perform idempotent inserts against the transaction store.
package ingest

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/rumor-ml/commons.systems/finledger/internal/domain"
	"github.com/rumor-ml/commons.systems/finledger/internal/normalize"
	"github.com/rumor-ml/commons.systems/finledger/internal/parser"
	"github.com/rumor-ml/commons.systems/finledger/internal/registry"
	"github.com/rumor-ml/commons.systems/finledger/internal/resolve"
	"github.com/rumor-ml/commons.systems/finledger/internal/scanner"
	"github.com/rumor-ml/commons.systems/finledger/internal/store"
)

// Options configures an import run.
type Options struct {
	// AccountLabel is the default account for rows without an account cell.
	AccountLabel string
	// Institution is recorded on accounts created during this run.
	Institution string
	// Currency is the currency code for accounts created during this run.
	Currency string
	// Policy carries the locale assumptions for cleansing.
	Policy normalize.Policy
}

// RowError is a failure scoped to one input row. It never aborts the batch;
// the row is skipped and the error reported in the summary.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) String() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

// Summary is the outcome of one import run.
type Summary struct {
	ImportID string
	Inserted int
	Skipped  int
	Failed   int
	Errors   []RowError
}

// merge folds another summary into this one (directory imports).
func (s *Summary) merge(other Summary) {
	s.Inserted += other.Inserted
	s.Skipped += other.Skipped
	s.Failed += other.Failed
	s.Errors = append(s.Errors, other.Errors...)
}

// Ingestor imports statement files into the store.
type Ingestor struct {
	store    *store.Store
	registry *registry.Registry
	opts     Options
}

// New creates an ingestor.
func New(s *store.Store, reg *registry.Registry, opts Options) *Ingestor {
	return &Ingestor{store: s, registry: reg, opts: opts}
}

// ImportPath imports a statement file, or every statement file under a
// directory. Per-file summaries are aggregated.
func (ing *Ingestor) ImportPath(ctx context.Context, path string) (Summary, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return ing.ImportFile(ctx, path)
	}

	files, err := scanner.New(path).Scan()
	if err != nil {
		return Summary{}, err
	}
	if len(files) == 0 {
		return Summary{}, fmt.Errorf("no statement files found in %s", path)
	}

	var total Summary
	for _, file := range files {
		summary, err := ing.ImportFile(ctx, file)
		if err != nil {
			return total, fmt.Errorf("import failed for %s: %w", file, err)
		}
		total.merge(summary)
	}
	return total, nil
}

// ImportFile imports a single statement file. The whole file is one store
// transaction: a fatal failure (schema error, store connectivity) leaves no
// partial state, while row-level normalization failures only skip their row.
// Re-running the same file is safe and inserts nothing.
func (ing *Ingestor) ImportFile(ctx context.Context, path string) (Summary, error) {
	p, err := ing.registry.FindParser(path)
	if err != nil {
		return Summary{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	stmt, err := p.Parse(ctx, f, path)
	if cerr := f.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("failed to close %s: %w", path, cerr)
	}
	if err != nil {
		// Includes *parser.SchemaError: the header check runs before any row
		// is processed, so a malformed file never produces partial writes.
		return Summary{}, err
	}

	summary := Summary{ImportID: uuid.NewString()}
	run := &domain.ImportRun{
		ID:         summary.ImportID,
		SourceFile: path,
		StartedAt:  time.Now(),
	}

	err = ing.store.WithTx(ctx, func(tx *store.Tx) error {
		if err := tx.BeginImport(ctx, run); err != nil {
			return err
		}

		resolver := resolve.New(tx, ing.opts.Institution, ing.opts.Currency)
		for _, row := range stmt.Rows {
			if err := ctx.Err(); err != nil {
				return err
			}

			txn, rowErr, err := ing.buildTransaction(ctx, resolver, row)
			if err != nil {
				return err
			}
			if rowErr != nil {
				summary.Failed++
				summary.Errors = append(summary.Errors, *rowErr)
				continue
			}
			txn.ImportID = run.ID

			inserted, err := tx.InsertTransaction(ctx, txn)
			if err != nil {
				return err
			}
			if inserted {
				summary.Inserted++
			} else {
				summary.Skipped++
			}
		}

		run.Inserted = summary.Inserted
		run.Skipped = summary.Skipped
		run.Failed = summary.Failed
		return tx.FinishImport(ctx, run)
	})
	if err != nil {
		return Summary{}, err
	}
	return summary, nil
}

// buildTransaction normalizes one raw row. The middle return value is a
// row-level error (bad date, bad amount): the row is reported and skipped,
// ingestion continues. The final return value is fatal to the run.
func (ing *Ingestor) buildTransaction(ctx context.Context, resolver *resolve.Resolver, row parser.Row) (*domain.Transaction, *RowError, error) {
	date, err := normalize.CleanDate(row.Date, ing.opts.Policy)
	if err != nil {
		return nil, &RowError{Line: row.Line, Err: err}, nil
	}

	amount, present, err := normalize.CleanAmount(row.Amount, ing.opts.Policy)
	if err != nil {
		return nil, &RowError{Line: row.Line, Err: err}, nil
	}
	if !present {
		return nil, &RowError{Line: row.Line, Err: &normalize.AmountError{Raw: row.Amount}}, nil
	}

	// Balance is optional: absent stays null, but a malformed value is still
	// a row-level error rather than silently dropped data.
	balance, balancePresent, err := normalize.CleanAmount(row.Balance, ing.opts.Policy)
	if err != nil {
		return nil, &RowError{Line: row.Line, Err: err}, nil
	}

	label := row.Account
	if label == "" {
		label = ing.opts.AccountLabel
	}
	accountID, err := resolver.Resolve(ctx, label)
	if err != nil {
		return nil, nil, err
	}

	txn, err := domain.NewTransaction(accountID, date, row.Description, amount)
	if err != nil {
		return nil, &RowError{Line: row.Line, Err: err}, nil
	}
	if balancePresent {
		txn.Balance = &balance
	}
	return txn, nil, nil
}
