// Package domain defines the core entities shared across the ingestion and
// categorization pipeline: accounts, transactions, categories, and rules.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the canonical storage format for posting dates (ISO, sortable).
const DateFormat = "2006-01-02"

// Account is a bank account as known to the store. Accounts are unique by
// (Name, Institution) and are created lazily on first sight during an import.
// This core never updates or deletes accounts.
type Account struct {
	ID          int64
	Name        string
	Institution string
	Currency    string
}

// NewAccount creates a validated account. Name and institution are trimmed;
// both must be non-empty after trimming.
func NewAccount(name, institution, currency string) (*Account, error) {
	name = strings.TrimSpace(name)
	institution = strings.TrimSpace(institution)
	if name == "" {
		return nil, fmt.Errorf("account name cannot be empty")
	}
	if institution == "" {
		return nil, fmt.Errorf("institution cannot be empty")
	}
	if currency == "" {
		return nil, fmt.Errorf("currency cannot be empty")
	}
	return &Account{Name: name, Institution: institution, Currency: currency}, nil
}

// Transaction is a single bank transaction. The natural key
// (AccountID, Date, Amount, Description) is the sole deduplication key;
// the store enforces it with a uniqueness constraint.
type Transaction struct {
	ID          int64
	AccountID   int64
	Date        string // ISO YYYY-MM-DD
	Description string
	// Amount is an exact decimal with two fractional digits. Sign convention:
	// positive = inflow, negative = outflow. Never a binary float.
	Amount     decimal.Decimal
	Balance    *decimal.Decimal
	CategoryID *int64
	ImportID   string
}

// NewTransaction creates a validated transaction. The amount is rounded to
// exact cent precision so the stored value (and the dedup key derived from it)
// is canonical regardless of how the source file formatted it.
func NewTransaction(accountID int64, date time.Time, description string, amount decimal.Decimal) (*Transaction, error) {
	if accountID <= 0 {
		return nil, fmt.Errorf("account ID must be positive, got %d", accountID)
	}
	if date.IsZero() {
		return nil, fmt.Errorf("transaction date cannot be zero")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("description cannot be empty")
	}
	return &Transaction{
		AccountID:   accountID,
		Date:        date.Format(DateFormat),
		Description: description,
		Amount:      amount.Round(2),
	}, nil
}

// AmountString returns the canonical two-decimal rendering used for storage
// and for the natural key ("12.30", not "12.3").
func (t *Transaction) AmountString() string {
	return t.Amount.StringFixed(2)
}

// BalanceString returns the canonical rendering of the running balance, or
// ("", false) when no balance was present in the source row.
func (t *Transaction) BalanceString() (string, bool) {
	if t.Balance == nil {
		return "", false
	}
	return t.Balance.StringFixed(2), true
}

// Category is a spending category referenced by transactions and rules.
type Category struct {
	ID    int64
	Label string
}

// Rule assigns a category to transactions whose description contains Pattern
// as a case-insensitive substring. Rule order is irrelevant in the data model;
// the engine imposes a stable ordering at match time.
type Rule struct {
	ID         int64
	Pattern    string
	CategoryID int64
}

// NewRule creates a validated rule.
func NewRule(pattern string, categoryID int64) (*Rule, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("pattern cannot be empty")
	}
	if categoryID <= 0 {
		return nil, fmt.Errorf("category ID must be positive, got %d", categoryID)
	}
	return &Rule{Pattern: pattern, CategoryID: categoryID}, nil
}

// ImportRun is the audit record of one import invocation.
type ImportRun struct {
	ID         string // UUID
	SourceFile string
	StartedAt  time.Time
	Inserted   int
	Skipped    int
	Failed     int
}
