package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ledgerbook/internal/period"
	"github.com/Veraticus/ledgerbook/internal/report"
	"github.com/Veraticus/ledgerbook/internal/service"
)

const reportWidth = 100

// reportFunc builds the markdown of one report.
type reportFunc func(ctx context.Context, store service.Ledger, md *report.Markdown, containerID int64, month string) (string, error)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Monthly financial reports",
		Long: `Build monthly reports for a container: profit and loss, balance sheet,
spending by category, or a summary of all three.`,
	}

	cmd.AddCommand(newReportCmd("pnl", "Profit and loss for a month",
		func(ctx context.Context, store service.Ledger, md *report.Markdown, containerID int64, month string) (string, error) {
			pl, err := store.ProfitAndLoss(ctx, containerID, month)
			if err != nil {
				return "", err
			}
			return md.ProfitLoss(month, pl)
		}))
	cmd.AddCommand(newReportCmd("balance-sheet", "Account balances at the end of a month",
		func(ctx context.Context, store service.Ledger, md *report.Markdown, containerID int64, month string) (string, error) {
			bs, err := store.BalanceSheet(ctx, containerID, month)
			if err != nil {
				return "", err
			}
			return md.BalanceSheet(month, bs)
		}))
	cmd.AddCommand(newReportCmd("categories", "Spending by category for a month",
		func(ctx context.Context, store service.Ledger, md *report.Markdown, containerID int64, month string) (string, error) {
			totals, err := store.CategoryTotals(ctx, containerID, month)
			if err != nil {
				return "", err
			}
			return md.CategoryTotals(month, totals)
		}))
	cmd.AddCommand(newReportCmd("summary", "Every report for a month",
		func(ctx context.Context, store service.Ledger, md *report.Markdown, containerID int64, month string) (string, error) {
			summary, err := report.MonthlySummary(ctx, store, containerID, month)
			if err != nil {
				return "", err
			}
			container, err := store.GetContainer(ctx, containerID)
			if err != nil {
				return "", err
			}
			return md.Summary(container.Name, summary)
		}))

	return cmd
}

func newReportCmd(use, short string, build reportFunc) *cobra.Command {
	var (
		month string
		raw   bool
	)

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if month == "" {
				month = period.Current(time.Now())
			}
			cur, err := currency()
			if err != nil {
				return err
			}

			return withLedger(cmd, func(ctx context.Context, store service.Ledger) error {
				container, err := resolveContainer(ctx, store)
				if err != nil {
					return err
				}

				markdown, err := build(ctx, store, report.NewMarkdown(cur), container.ID, month)
				if err != nil {
					return err
				}
				if raw {
					_, err := fmt.Fprint(cmd.OutOrStdout(), markdown)
					return err
				}

				term, err := report.NewTerminal(reportWidth, true)
				if err != nil {
					return err
				}
				out, err := term.Render(markdown)
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), out)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Month to report (YYYY-MM, default: current month)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown instead of rendering it")

	return cmd
}
