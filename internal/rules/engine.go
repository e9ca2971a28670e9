package rules

import (
	"context"
	"fmt"
	"strings"

	"github.com/rumor-ml/commons.systems/finledger/internal/domain"
	"github.com/rumor-ml/commons.systems/finledger/internal/store"
)

// Engine applies stored rules to uncategorized transactions.
type Engine struct {
	store *store.Store
}

// NewEngine creates an engine bound to a store.
func NewEngine(s *store.Store) *Engine {
	return &Engine{store: s}
}

// Match returns the first rule whose pattern is a case-insensitive
// substring of the description. Rules must already be in stable order
// (the store returns them ordered by pattern, then rule ID) so the
// same rule wins on every run. Returns (nil, false) if no rule matches.
func Match(rules []domain.Rule, description string) (*domain.Rule, bool) {
	normalized := strings.ToLower(description)
	for i := range rules {
		if strings.Contains(normalized, strings.ToLower(rules[i].Pattern)) {
			return &rules[i], true
		}
	}
	return nil, false
}

// Apply categorizes every uncategorized transaction that matches a
// rule, in a single transaction. Already-categorized rows are never
// touched, so running Apply repeatedly converges: a second run over
// the same data updates nothing. Returns the number of transactions
// categorized.
func (e *Engine) Apply(ctx context.Context) (int, error) {
	updated := 0
	err := e.store.WithTx(ctx, func(tx *store.Tx) error {
		rules, err := tx.ListRules(ctx)
		if err != nil {
			return err
		}
		if len(rules) == 0 {
			return nil
		}

		pending, err := tx.Uncategorized(ctx)
		if err != nil {
			return err
		}

		for _, txn := range pending {
			rule, ok := Match(rules, txn.Description)
			if !ok {
				continue
			}
			assigned, err := tx.AssignCategory(ctx, txn.ID, rule.CategoryID)
			if err != nil {
				return fmt.Errorf("failed to categorize transaction %d: %w", txn.ID, err)
			}
			if assigned {
				updated++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}
