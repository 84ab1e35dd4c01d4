package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ledgerbook/internal/cli"
	"github.com/Veraticus/ledgerbook/internal/service"
)

func balanceCmd() *cobra.Command {
	var (
		month     string
		allTime   bool
		accountID int64
	)

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show a flow or account balance",
		Long: `Show the net flow of the current month, of --month, or of all time.
Transfers are excluded from flow balances. With --account, show the balance of
one account instead: its opening balance plus all of its transactions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			set := 0
			for _, name := range []string{"month", "all-time", "account"} {
				if cmd.Flags().Changed(name) {
					set++
				}
			}
			if set > 1 {
				return fmt.Errorf("--month, --all-time and --account are mutually exclusive")
			}

			cur, err := currency()
			if err != nil {
				return err
			}

			return withLedger(cmd, func(ctx context.Context, store service.Ledger) error {
				if accountID != 0 {
					balance, err := store.AccountBalance(ctx, accountID)
					if err != nil {
						return err
					}
					printLine(cmd, fmt.Sprintf("Account %d balance: %s", accountID, cli.FormatAmount(cur.Format(balance), balance)))
					return nil
				}

				container, err := resolveContainer(ctx, store)
				if err != nil {
					return err
				}

				var (
					balance int64
					label   string
				)
				switch {
				case allTime:
					label = "All-time"
					balance, err = store.AllTimeBalance(ctx, container.ID)
				case month != "":
					label = month
					balance, err = store.BalanceForMonth(ctx, container.ID, month)
				default:
					label = "This month"
					balance, err = store.MonthlyBalance(ctx, container.ID)
				}
				if err != nil {
					return err
				}

				printLine(cmd, fmt.Sprintf("%s balance (%s): %s", label, container.Name, cli.FormatAmount(cur.Format(balance), balance)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Month to total (YYYY-MM)")
	cmd.Flags().BoolVar(&allTime, "all-time", false, "Total every transaction")
	cmd.Flags().Int64Var(&accountID, "account", 0, "Show one account's balance")

	return cmd
}

func monthsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "months",
		Short: "List the months that have transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLedger(cmd, func(ctx context.Context, store service.Ledger) error {
				container, err := resolveContainer(ctx, store)
				if err != nil {
					return err
				}

				months, err := store.AvailableMonths(ctx, container.ID)
				if err != nil {
					return fmt.Errorf("failed to list months: %w", err)
				}
				if len(months) == 0 {
					printLine(cmd, cli.FormatInfo("No transactions yet"))
					return nil
				}
				for _, m := range months {
					printLine(cmd, m)
				}
				return nil
			})
		},
	}
}
