package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewAccount_TrimsAndValidates(t *testing.T) {
	acct, err := NewAccount("  Main Current  ", " YourBank ", "GBP")
	if err != nil {
		t.Fatalf("NewAccount() error = %v", err)
	}
	if acct.Name != "Main Current" {
		t.Errorf("Name = %q, want %q", acct.Name, "Main Current")
	}
	if acct.Institution != "YourBank" {
		t.Errorf("Institution = %q, want %q", acct.Institution, "YourBank")
	}
}

func TestNewAccount_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		acctName    string
		institution string
		currency    string
	}{
		{"empty name", "", "YourBank", "GBP"},
		{"whitespace name", "   ", "YourBank", "GBP"},
		{"empty institution", "Main", "", "GBP"},
		{"empty currency", "Main", "YourBank", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewAccount(tt.acctName, tt.institution, tt.currency); err == nil {
				t.Error("NewAccount() expected error")
			}
		})
	}
}

func TestNewTransaction_CanonicalAmount(t *testing.T) {
	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	amount := decimal.RequireFromString("5.5")

	txn, err := NewTransaction(1, date, "TESCO STORES", amount)
	if err != nil {
		t.Fatalf("NewTransaction() error = %v", err)
	}
	if txn.Date != "2024-03-04" {
		t.Errorf("Date = %q, want %q", txn.Date, "2024-03-04")
	}
	if got := txn.AmountString(); got != "5.50" {
		t.Errorf("AmountString() = %q, want %q", got, "5.50")
	}
}

func TestNewTransaction_Invalid(t *testing.T) {
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	if _, err := NewTransaction(0, date, "desc", decimal.Zero); err == nil {
		t.Error("expected error for zero account ID")
	}
	if _, err := NewTransaction(1, time.Time{}, "desc", decimal.Zero); err == nil {
		t.Error("expected error for zero date")
	}
	if _, err := NewTransaction(1, date, "  ", decimal.Zero); err == nil {
		t.Error("expected error for blank description")
	}
}

func TestBalanceString(t *testing.T) {
	txn := &Transaction{Amount: decimal.New(100, -2)}
	if _, ok := txn.BalanceString(); ok {
		t.Error("BalanceString() ok = true for nil balance, want false")
	}

	bal := decimal.RequireFromString("1234.5")
	txn.Balance = &bal
	got, ok := txn.BalanceString()
	if !ok || got != "1234.50" {
		t.Errorf("BalanceString() = %q, %v, want %q, true", got, ok, "1234.50")
	}
}

func TestNewRule(t *testing.T) {
	if _, err := NewRule("  ", 1); err == nil {
		t.Error("expected error for blank pattern")
	}
	if _, err := NewRule("TESCO", 0); err == nil {
		t.Error("expected error for zero category ID")
	}
	rule, err := NewRule("TESCO", 3)
	if err != nil {
		t.Fatalf("NewRule() error = %v", err)
	}
	if rule.Pattern != "TESCO" || rule.CategoryID != 3 {
		t.Errorf("NewRule() = %+v", rule)
	}
}
