// Package report assembles ledger reports and renders them as markdown.
package report

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/ledgerbook/internal/model"
	"github.com/Veraticus/ledgerbook/internal/period"
	"github.com/Veraticus/ledgerbook/internal/service"
)

// MonthlySummary gathers the profit and loss, balance sheet, category totals
// and flow balance of one month. The queries run concurrently; the store
// still serializes them. Each query reads the ledger on its own, so the
// parts are not one snapshot: a write that lands between them can leave the
// profit and loss and the balance sheet describing different states.
func MonthlySummary(ctx context.Context, reporter service.Reporter, containerID int64, month string) (*model.MonthlySummary, error) {
	if _, err := period.ParseMonth(month); err != nil {
		return nil, err
	}

	summary := &model.MonthlySummary{Month: month}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		pl, err := reporter.ProfitAndLoss(ctx, containerID, month)
		if err != nil {
			return fmt.Errorf("profit and loss: %w", err)
		}
		summary.ProfitLoss = pl
		return nil
	})
	g.Go(func() error {
		bs, err := reporter.BalanceSheet(ctx, containerID, month)
		if err != nil {
			return fmt.Errorf("balance sheet: %w", err)
		}
		summary.BalanceSheet = bs
		return nil
	})
	g.Go(func() error {
		totals, err := reporter.CategoryTotals(ctx, containerID, month)
		if err != nil {
			return fmt.Errorf("category totals: %w", err)
		}
		summary.CategoryTotals = totals
		return nil
	})
	g.Go(func() error {
		balance, err := reporter.BalanceForMonth(ctx, containerID, month)
		if err != nil {
			return fmt.Errorf("monthly balance: %w", err)
		}
		summary.FlowBalance = balance
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summary, nil
}
