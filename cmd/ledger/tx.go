package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ledgerbook/internal/cli"
	"github.com/Veraticus/ledgerbook/internal/model"
	"github.com/Veraticus/ledgerbook/internal/normalize"
	"github.com/Veraticus/ledgerbook/internal/report"
	"github.com/Veraticus/ledgerbook/internal/service"
)

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "Record and manage transactions",
		Long: `Record, list, update and delete transactions. Amounts are signed:
negative for money going out, positive for money coming in.`,
	}

	cmd.AddCommand(addTxCmd())
	cmd.AddCommand(listTxCmd())
	cmd.AddCommand(showTxCmd())
	cmd.AddCommand(updateTxCmd())
	cmd.AddCommand(deleteTxCmd())

	return cmd
}

func addTxCmd() *cobra.Command {
	var (
		amount      string
		description string
		category    string
		accountID   int64
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction dated now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cents, err := parseAmountFlag(amount, "amount")
			if err != nil {
				return err
			}

			return withLedger(cmd, func(ctx context.Context, store service.Ledger) error {
				container, err := resolveContainer(ctx, store)
				if err != nil {
					return err
				}

				txn, err := store.RecordTransaction(ctx, model.NewTransaction{
					ContainerID: container.ID,
					AccountID:   accountID,
					Amount:      cents,
					Description: description,
					Category:    category,
				})
				if err != nil {
					return fmt.Errorf("failed to record transaction: %w", err)
				}
				printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Recorded transaction %d: %s %s (%s)",
					txn.ID, txn.Description, normalize.FormatCents(txn.Amount), txn.Category)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "Signed amount, e.g. -12.50 (required)")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&category, "category", "", "Category label")
	cmd.Flags().Int64Var(&accountID, "account", 0, "Account ID")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func listTxCmd() *cobra.Command {
	var (
		month     string
		accountID int64
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cur, err := currency()
			if err != nil {
				return err
			}

			return withLedger(cmd, func(ctx context.Context, store service.Ledger) error {
				container, err := resolveContainer(ctx, store)
				if err != nil {
					return err
				}

				txns, err := store.ListTransactions(ctx, model.TransactionFilter{
					ContainerID: container.ID,
					AccountID:   accountID,
					Month:       month,
					Limit:       limit,
				})
				if err != nil {
					return fmt.Errorf("failed to list transactions: %w", err)
				}
				if len(txns) == 0 {
					printLine(cmd, cli.FormatInfo("No transactions found"))
					return nil
				}

				printLine(cmd, renderTransactions(cur, txns))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Only this month (YYYY-MM)")
	cmd.Flags().Int64Var(&accountID, "account", 0, "Only this account ID")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of transactions (0 for all)")

	return cmd
}

func showTxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "transaction ID")
			if err != nil {
				return err
			}
			cur, err := currency()
			if err != nil {
				return err
			}

			return withLedger(cmd, func(ctx context.Context, store service.Ledger) error {
				txn, err := store.GetTransaction(ctx, id)
				if err != nil {
					return err
				}

				var b strings.Builder
				fmt.Fprintf(&b, "Date:        %s\n", normalize.FormatTimestamp(txn.Date))
				fmt.Fprintf(&b, "Description: %s\n", txn.Description)
				fmt.Fprintf(&b, "Category:    %s\n", txn.Category)
				fmt.Fprintf(&b, "Amount:      %s\n", cur.Format(txn.Amount))
				if txn.AccountID != 0 {
					fmt.Fprintf(&b, "Account:     %d\n", txn.AccountID)
				}
				if txn.IsTransfer() {
					fmt.Fprintf(&b, "Transfer:    %d (counterpart account %d)\n", txn.TransferID, txn.TransferAccountID)
				}
				printLine(cmd, cli.RenderBox(fmt.Sprintf("Transaction %d", txn.ID), strings.TrimRight(b.String(), "\n")))
				return nil
			})
		},
	}
}

func updateTxCmd() *cobra.Command {
	var (
		amount      string
		description string
		category    string
		accountID   int64
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a transaction",
		Long:  `Change the amount, description, category or account of a transaction. Transfer legs cannot be updated.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "transaction ID")
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if !flags.Changed("amount") && !flags.Changed("description") && !flags.Changed("category") && !flags.Changed("account") {
				return fmt.Errorf("must specify --amount, --description, --category or --account to update")
			}

			return withLedger(cmd, func(ctx context.Context, store service.Ledger) error {
				current, err := store.GetTransaction(ctx, id)
				if err != nil {
					return err
				}

				update := model.TransactionUpdate{
					ID:          id,
					Amount:      current.Amount,
					Description: current.Description,
					Category:    current.Category,
					AccountID:   current.AccountID,
				}
				if flags.Changed("amount") {
					if update.Amount, err = parseAmountFlag(amount, "amount"); err != nil {
						return err
					}
				}
				if flags.Changed("description") {
					update.Description = description
				}
				if flags.Changed("category") {
					update.Category = category
				}
				if flags.Changed("account") {
					update.AccountID = accountID
				}

				txn, err := store.UpdateTransaction(ctx, update)
				if err != nil {
					return fmt.Errorf("failed to update transaction: %w", err)
				}
				printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Updated transaction %d: %s %s (%s)",
					txn.ID, txn.Description, normalize.FormatCents(txn.Amount), txn.Category)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "New signed amount")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&category, "category", "", "New category label")
	cmd.Flags().Int64Var(&accountID, "account", 0, "New account ID (0 to unassign)")

	return cmd
}

func deleteTxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Long:  `Delete a transaction. Deleting either leg of a transfer deletes the whole transfer.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "transaction ID")
			if err != nil {
				return err
			}

			return withLedger(cmd, func(ctx context.Context, store service.Ledger) error {
				if err := store.DeleteTransaction(ctx, id); err != nil {
					return fmt.Errorf("failed to delete transaction: %w", err)
				}
				printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Deleted transaction %d", id)))
				return nil
			})
		},
	}
}

func renderTransactions(cur report.Currency, txns []model.Transaction) string {
	rows := make([][]string, 0, len(txns))
	for _, t := range txns {
		account := ""
		if t.AccountID != 0 {
			account = strconv.FormatInt(t.AccountID, 10)
		}
		transfer := ""
		if t.IsTransfer() {
			transfer = strconv.FormatInt(t.TransferID, 10)
		}
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			normalize.FormatTimestamp(t.Date),
			t.Description,
			t.Category,
			account,
			transfer,
			cli.FormatAmount(cur.Format(t.Amount), t.Amount),
		})
	}
	return cli.RenderTable([]string{"ID", "Date", "Description", "Category", "Account", "Transfer", "Amount"}, rows)
}
