package store

import (
	"context"
	"fmt"
)

// MonthlyTotal is one row of the v_monthly_totals view. The view aggregates
// in REAL; callers treat these as read-model figures, not ledger values.
type MonthlyTotal struct {
	Month  string
	Income float64
	Spend  float64
	Net    float64
}

// MonthlyTotals reads the monthly income/spend/net aggregate, oldest first.
func (s *Store) MonthlyTotals(ctx context.Context) ([]MonthlyTotal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT month, income, spend, net FROM v_monthly_totals ORDER BY month`)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly totals: %w", err)
	}
	defer rows.Close()

	var totals []MonthlyTotal
	for rows.Next() {
		var m MonthlyTotal
		if err := rows.Scan(&m.Month, &m.Income, &m.Spend, &m.Net); err != nil {
			return nil, fmt.Errorf("failed to scan monthly total: %w", err)
		}
		totals = append(totals, m)
	}
	return totals, rows.Err()
}

// CategoryMonthTotal is one row of the v_spend_by_category_month view.
type CategoryMonthTotal struct {
	Month    string
	Category string
	Total    float64
}

// SpendByCategoryMonth reads per-category monthly totals, ordered by month
// then category.
func (s *Store) SpendByCategoryMonth(ctx context.Context) ([]CategoryMonthTotal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT month, category, total FROM v_spend_by_category_month ORDER BY month, category`)
	if err != nil {
		return nil, fmt.Errorf("failed to query category totals: %w", err)
	}
	defer rows.Close()

	var totals []CategoryMonthTotal
	for rows.Next() {
		var c CategoryMonthTotal
		if err := rows.Scan(&c.Month, &c.Category, &c.Total); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		totals = append(totals, c)
	}
	return totals, rows.Err()
}

// RecurringCandidate is one row of the v_recurring_candidates view: a
// merchant seen in at least three distinct months.
type RecurringCandidate struct {
	Merchant   string
	Kind       string
	MonthsSeen int
	AvgAmount  float64
}

// RecurringCandidates reads merchant-based recurring candidates, most
// frequently seen first.
func (s *Store) RecurringCandidates(ctx context.Context) ([]RecurringCandidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT merchant, kind, months_seen, avg_amount
		FROM v_recurring_candidates
		ORDER BY months_seen DESC, kind, merchant`)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring candidates: %w", err)
	}
	defer rows.Close()

	var candidates []RecurringCandidate
	for rows.Next() {
		var r RecurringCandidate
		if err := rows.Scan(&r.Merchant, &r.Kind, &r.MonthsSeen, &r.AvgAmount); err != nil {
			return nil, fmt.Errorf("failed to scan recurring candidate: %w", err)
		}
		candidates = append(candidates, r)
	}
	return candidates, rows.Err()
}
