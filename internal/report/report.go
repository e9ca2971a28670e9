// Package report renders reporting-view aggregates as console tables.
package report

import (
	"context"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/rumor-ml/commons.systems/finledger/internal/store"
)

// Reporter renders report tables from a store.
type Reporter struct {
	store *store.Store
	out   io.Writer
}

// New creates a reporter writing to out.
func New(s *store.Store, out io.Writer) *Reporter {
	return &Reporter{store: s, out: out}
}

// MonthlyTotals renders income, spend, and net per month, oldest first.
func (r *Reporter) MonthlyTotals(ctx context.Context) error {
	totals, err := r.store.MonthlyTotals(ctx)
	if err != nil {
		return err
	}
	if len(totals) == 0 {
		fmt.Fprintln(r.out, "No transactions recorded.")
		return nil
	}

	table := tablewriter.NewWriter(r.out)
	table.SetHeader([]string{"Month", "Income", "Spend", "Net"})
	for _, m := range totals {
		table.Append([]string{
			m.Month,
			fmt.Sprintf("%.2f", m.Income),
			fmt.Sprintf("%.2f", m.Spend),
			fmt.Sprintf("%.2f", m.Net),
		})
	}
	table.Render()
	return nil
}

// SpendByCategory renders per-category spend per month.
func (r *Reporter) SpendByCategory(ctx context.Context) error {
	totals, err := r.store.SpendByCategoryMonth(ctx)
	if err != nil {
		return err
	}
	if len(totals) == 0 {
		fmt.Fprintln(r.out, "No categorized spend recorded.")
		return nil
	}

	table := tablewriter.NewWriter(r.out)
	table.SetHeader([]string{"Month", "Category", "Total"})
	for _, c := range totals {
		table.Append([]string{c.Month, c.Category, fmt.Sprintf("%.2f", c.Total)})
	}
	table.Render()
	return nil
}

// Recurring renders merchants seen in three or more distinct months.
func (r *Reporter) Recurring(ctx context.Context) error {
	candidates, err := r.store.RecurringCandidates(ctx)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		fmt.Fprintln(r.out, "No recurring candidates found.")
		return nil
	}

	table := tablewriter.NewWriter(r.out)
	table.SetHeader([]string{"Merchant", "Kind", "Months", "Avg Amount"})
	for _, c := range candidates {
		table.Append([]string{
			c.Merchant,
			c.Kind,
			fmt.Sprintf("%d", c.MonthsSeen),
			fmt.Sprintf("%.2f", c.AvgAmount),
		})
	}
	table.Render()
	return nil
}

// All renders every report in sequence with section titles.
func (r *Reporter) All(ctx context.Context) error {
	fmt.Fprintln(r.out, "Monthly totals")
	if err := r.MonthlyTotals(ctx); err != nil {
		return err
	}
	fmt.Fprintln(r.out, "\nSpend by category")
	if err := r.SpendByCategory(ctx); err != nil {
		return err
	}
	fmt.Fprintln(r.out, "\nRecurring candidates")
	return r.Recurring(ctx)
}
