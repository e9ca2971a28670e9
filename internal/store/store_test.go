package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rumor-ml/commons.systems/finledger/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func mustAccount(t *testing.T, s *Store, name, institution string) int64 {
	t.Helper()
	var id int64
	err := s.WithTx(context.Background(), func(tx *Tx) error {
		acct, err := domain.NewAccount(name, institution, "GBP")
		if err != nil {
			return err
		}
		id, err = tx.CreateAccount(context.Background(), acct)
		return err
	})
	require.NoError(t, err)
	return id
}

func mustTxn(t *testing.T, accountID int64, date, desc, amount string) *domain.Transaction {
	t.Helper()
	d, err := time.Parse(domain.DateFormat, date)
	require.NoError(t, err)
	txn, err := domain.NewTransaction(accountID, d, desc, decimal.RequireFromString(amount))
	require.NoError(t, err)
	return txn
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	// Schema statements are idempotent, so reopening must succeed.
	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	n, err := s2.CountTransactions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCreateAccount_UniqueViolation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	mustAccount(t, s, "Main Current", "YourBank")

	err := s.WithTx(ctx, func(tx *Tx) error {
		acct, err := domain.NewAccount("Main Current", "YourBank", "GBP")
		require.NoError(t, err)
		_, err = tx.CreateAccount(ctx, acct)
		return err
	})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err), "duplicate (name, institution) should be a unique violation, got %v", err)

	// Same name at a different institution is a distinct account.
	mustAccount(t, s, "Main Current", "OtherBank")
}

func TestInsertTransaction_DedupByNaturalKey(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	acctID := mustAccount(t, s, "Main Current", "YourBank")

	base := mustTxn(t, acctID, "2024-03-04", "TESCO STORES", "-12.00")

	variants := []*domain.Transaction{
		mustTxn(t, acctID, "2024-03-05", "TESCO STORES", "-12.00"), // date differs
		mustTxn(t, acctID, "2024-03-04", "TESCO STORES", "-12.01"), // amount differs
		mustTxn(t, acctID, "2024-03-04", "SAINSBURYS", "-12.00"),   // description differs
	}

	err := s.WithTx(ctx, func(tx *Tx) error {
		inserted, err := tx.InsertTransaction(ctx, base)
		require.NoError(t, err)
		assert.True(t, inserted, "first insert")

		inserted, err = tx.InsertTransaction(ctx, base)
		require.NoError(t, err)
		assert.False(t, inserted, "exact duplicate must be a no-op")

		for _, v := range variants {
			inserted, err = tx.InsertTransaction(ctx, v)
			require.NoError(t, err)
			assert.True(t, inserted, "row differing in one key component must insert")
		}
		return nil
	})
	require.NoError(t, err)

	n, err := s.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestAssignCategory_NullGuard(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	acctID := mustAccount(t, s, "Main Current", "YourBank")

	var txnID, groceriesID, diningID int64
	err := s.WithTx(ctx, func(tx *Tx) error {
		_, err := tx.InsertTransaction(ctx, mustTxn(t, acctID, "2024-03-04", "TESCO STORES", "-12.00"))
		require.NoError(t, err)

		uncat, err := tx.Uncategorized(ctx)
		require.NoError(t, err)
		require.Len(t, uncat, 1)
		txnID = uncat[0].ID

		groceriesID, err = tx.EnsureCategory(ctx, "Groceries")
		require.NoError(t, err)
		diningID, err = tx.EnsureCategory(ctx, "Dining")
		require.NoError(t, err)
		return nil
	})
	require.NoError(t, err)

	err = s.WithTx(ctx, func(tx *Tx) error {
		ok, err := tx.AssignCategory(ctx, txnID, groceriesID)
		require.NoError(t, err)
		assert.True(t, ok, "first assignment")

		// Already categorized: the null guard must reject the second write.
		ok, err = tx.AssignCategory(ctx, txnID, diningID)
		require.NoError(t, err)
		assert.False(t, ok, "second assignment must be rejected")

		uncat, err := tx.Uncategorized(ctx)
		require.NoError(t, err)
		assert.Empty(t, uncat)
		return nil
	})
	require.NoError(t, err)
}

func TestEnsureCategory_Idempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx *Tx) error {
		first, err := tx.EnsureCategory(ctx, "Groceries")
		require.NoError(t, err)
		second, err := tx.EnsureCategory(ctx, "Groceries")
		require.NoError(t, err)
		assert.Equal(t, first, second)
		return nil
	})
	require.NoError(t, err)
}

func TestInsertRule_DuplicatePatternIgnored(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx *Tx) error {
		catID, err := tx.EnsureCategory(ctx, "Groceries")
		require.NoError(t, err)

		rule, err := domain.NewRule("TESCO", catID)
		require.NoError(t, err)

		inserted, err := tx.InsertRule(ctx, rule)
		require.NoError(t, err)
		assert.True(t, inserted)

		inserted, err = tx.InsertRule(ctx, rule)
		require.NoError(t, err)
		assert.False(t, inserted, "duplicate pattern must be ignored")

		rules, err := tx.ListRules(ctx)
		require.NoError(t, err)
		assert.Len(t, rules, 1)
		return nil
	})
	require.NoError(t, err)
}

func TestListRules_StableOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx *Tx) error {
		catID, err := tx.EnsureCategory(ctx, "Misc")
		require.NoError(t, err)

		for _, pattern := range []string{"ZULU", "ALPHA", "MIKE"} {
			rule, err := domain.NewRule(pattern, catID)
			require.NoError(t, err)
			_, err = tx.InsertRule(ctx, rule)
			require.NoError(t, err)
		}

		rules, err := tx.ListRules(ctx)
		require.NoError(t, err)
		require.Len(t, rules, 3)
		assert.Equal(t, "ALPHA", rules[0].Pattern)
		assert.Equal(t, "MIKE", rules[1].Pattern)
		assert.Equal(t, "ZULU", rules[2].Pattern)
		return nil
	})
	require.NoError(t, err)
}

func TestWithTx_RollbackOnError(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	acctID := mustAccount(t, s, "Main Current", "YourBank")

	wantErr := assert.AnError
	err := s.WithTx(ctx, func(tx *Tx) error {
		_, err := tx.InsertTransaction(ctx, mustTxn(t, acctID, "2024-03-04", "TESCO STORES", "-12.00"))
		require.NoError(t, err)
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)

	n, err := s.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "failed transaction must leave no partial state")
}

func TestReportingViews(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	acctID := mustAccount(t, s, "Main Current", "YourBank")

	err := s.WithTx(ctx, func(tx *Tx) error {
		catID, err := tx.EnsureCategory(ctx, "Groceries")
		require.NoError(t, err)

		rows := []*domain.Transaction{
			mustTxn(t, acctID, "2024-01-05", "SALARY", "2000.00"),
			mustTxn(t, acctID, "2024-01-10", "NETFLIX.COM", "-9.99"),
			mustTxn(t, acctID, "2024-02-10", "NETFLIX.COM", "-9.99"),
			mustTxn(t, acctID, "2024-03-10", "NETFLIX.COM", "-9.99"),
			mustTxn(t, acctID, "2024-01-12", "TESCO STORES", "-35.20"),
		}
		for _, r := range rows {
			_, err := tx.InsertTransaction(ctx, r)
			require.NoError(t, err)
		}

		uncat, err := tx.Uncategorized(ctx)
		require.NoError(t, err)
		for _, u := range uncat {
			if u.Description == "TESCO STORES" {
				_, err := tx.AssignCategory(ctx, u.ID, catID)
				require.NoError(t, err)
			}
		}
		return nil
	})
	require.NoError(t, err)

	months, err := s.MonthlyTotals(ctx)
	require.NoError(t, err)
	require.Len(t, months, 3)
	assert.Equal(t, "2024-01", months[0].Month)
	assert.InDelta(t, 2000.00, months[0].Income, 0.001)
	assert.InDelta(t, -45.19, months[0].Spend, 0.001)

	cats, err := s.SpendByCategoryMonth(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Groceries", cats[0].Category)
	assert.InDelta(t, -35.20, cats[0].Total, 0.001)

	recurring, err := s.RecurringCandidates(ctx)
	require.NoError(t, err)
	require.Len(t, recurring, 1)
	assert.Equal(t, "NETFLIX.COM", recurring[0].Merchant)
	assert.Equal(t, 3, recurring[0].MonthsSeen)
	assert.Equal(t, "expense", recurring[0].Kind)
}
