// Package resolve maps free-text account labels to stable account
// identifiers, creating accounts lazily on first sight.
package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/rumor-ml/commons.systems/finledger/internal/domain"
	"github.com/rumor-ml/commons.systems/finledger/internal/store"
)

// Resolver resolves account labels within one import run. The cache is scoped
// to the resolver instance: create one per run, discard it at the end, so
// repeated rows for the same account cost at most one lookup-or-create round
// trip and every distinct label maps to exactly one identifier per run.
type Resolver struct {
	tx          *store.Tx
	institution string
	currency    string
	cache       map[string]int64
}

// New creates a resolver bound to the import run's transaction. Accounts
// created here become visible with the run's commit.
func New(tx *store.Tx, institution, currency string) *Resolver {
	return &Resolver{
		tx:          tx,
		institution: institution,
		currency:    currency,
		cache:       make(map[string]int64),
	}
}

// Resolve returns the account identifier for label, creating the account on
// first sight. The label is trimmed before lookup. A uniqueness violation on
// create means another run won the race; it is recovered by retrying the
// lookup, never surfaced.
func (r *Resolver) Resolve(ctx context.Context, label string) (int64, error) {
	name := strings.TrimSpace(label)
	if name == "" {
		return 0, fmt.Errorf("account label cannot be empty")
	}

	if id, ok := r.cache[name]; ok {
		return id, nil
	}

	id, found, err := r.tx.FindAccount(ctx, name, r.institution)
	if err != nil {
		return 0, err
	}
	if found {
		r.cache[name] = id
		return id, nil
	}

	acct, err := domain.NewAccount(name, r.institution, r.currency)
	if err != nil {
		return 0, err
	}

	id, err = r.tx.CreateAccount(ctx, acct)
	if err != nil {
		if !store.IsUniqueViolation(err) {
			return 0, err
		}
		// Lost the create race: the account exists now, so the lookup must
		// succeed.
		id, found, err = r.tx.FindAccount(ctx, name, r.institution)
		if err != nil {
			return 0, err
		}
		if !found {
			return 0, fmt.Errorf("account %q at %q vanished after create conflict", name, r.institution)
		}
	}

	r.cache[name] = id
	return id, nil
}
