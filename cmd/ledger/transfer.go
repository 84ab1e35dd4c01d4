package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ledgerbook/internal/cli"
	"github.com/Veraticus/ledgerbook/internal/model"
	"github.com/Veraticus/ledgerbook/internal/service"
)

func transferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move money between accounts",
		Long: `Create, show and delete transfers. A transfer is a pair of linked
transactions: a debit on the source account and a credit on the destination.
Transfers never count as income or expense.`,
	}

	cmd.AddCommand(addTransferCmd())
	cmd.AddCommand(showTransferCmd())
	cmd.AddCommand(deleteTransferCmd())

	return cmd
}

func addTransferCmd() *cobra.Command {
	var (
		from        int64
		to          int64
		amount      string
		description string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Transfer an amount from one account to another",
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

				transfer, err := store.CreateTransfer(ctx, model.TransferRequest{
					ContainerID:   container.ID,
					FromAccountID: from,
					ToAccountID:   to,
					Amount:        cents,
					Description:   description,
				})
				if err != nil {
					return fmt.Errorf("failed to create transfer: %w", err)
				}
				printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Created transfer %d: account %d → account %d",
					transfer.ID, from, to)))
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&from, "from", 0, "Source account ID (required)")
	cmd.Flags().Int64Var(&to, "to", 0, "Destination account ID (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "Positive amount to move (required)")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func showTransferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <transfer-id>",
		Short: "Show both legs of a transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "transfer ID")
			if err != nil {
				return err
			}
			cur, err := currency()
			if err != nil {
				return err
			}

			return withLedger(cmd, func(ctx context.Context, store service.Ledger) error {
				transfer, err := store.GetTransfer(ctx, id)
				if err != nil {
					return err
				}
				printLine(cmd, renderTransactions(cur, []model.Transaction{transfer.Debit, transfer.Credit}))
				return nil
			})
		},
	}
}

func deleteTransferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <transfer-id>",
		Short: "Delete both legs of a transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "transfer ID")
			if err != nil {
				return err
			}

			return withLedger(cmd, func(ctx context.Context, store service.Ledger) error {
				if err := store.DeleteTransfer(ctx, id); err != nil {
					return fmt.Errorf("failed to delete transfer: %w", err)
				}
				printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Deleted transfer %d", id)))
				return nil
			})
		},
	}
}
