package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ledgerbook/internal/cli"
	"github.com/Veraticus/ledgerbook/internal/model"
	"github.com/Veraticus/ledgerbook/internal/service"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts",
		Long:  `List, add, update and delete the accounts of a container and show their balances.`,
	}

	cmd.AddCommand(listAccountsCmd())
	cmd.AddCommand(addAccountCmd())
	cmd.AddCommand(updateAccountCmd())
	cmd.AddCommand(deleteAccountCmd())
	cmd.AddCommand(accountBalancesCmd())

	return cmd
}

func listAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the accounts of a container",
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

				accounts, err := store.ListAccounts(ctx, container.ID)
				if err != nil {
					return fmt.Errorf("failed to list accounts: %w", err)
				}
				if len(accounts) == 0 {
					printLine(cmd, cli.FormatInfo("No accounts found. Use 'ledger accounts add' to create one."))
					return nil
				}

				rows := make([][]string, 0, len(accounts))
				for _, a := range accounts {
					rows = append(rows, []string{
						strconv.FormatInt(a.ID, 10),
						a.Name,
						string(a.Type),
						cur.Format(a.OpeningBalance),
					})
				}
				printLine(cmd, cli.RenderTable([]string{"ID", "Name", "Type", "Opening"}, rows))
				return nil
			})
		},
	}
}

func addAccountCmd() *cobra.Command {
	var (
		accountType string
		opening     string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an account to a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			openingCents, err := parseAmountFlag(opening, "opening")
			if err != nil {
				return err
			}

			return withLedger(cmd, func(ctx context.Context, store service.Ledger) error {
				container, err := resolveContainer(ctx, store)
				if err != nil {
					return err
				}

				account, err := store.CreateAccount(ctx, container.ID, args[0], model.AccountType(accountType), openingCents)
				if err != nil {
					return fmt.Errorf("failed to create account: %w", err)
				}
				printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Created %s account %q (ID: %d) in %s",
					account.Type, account.Name, account.ID, container.Name)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&accountType, "type", string(model.AccountTypeAsset), "Account type (asset, contra_asset, liability, equity, other)")
	cmd.Flags().StringVar(&opening, "opening", "0", "Opening balance")

	return cmd
}

func updateAccountCmd() *cobra.Command {
	var (
		name    string
		opening string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename an account or change its opening balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "account ID")
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("name") && !cmd.Flags().Changed("opening") {
				return fmt.Errorf("must specify --name or --opening to update")
			}

			return withLedger(cmd, func(ctx context.Context, store service.Ledger) error {
				current, err := store.GetAccount(ctx, id)
				if err != nil {
					return err
				}

				newName := current.Name
				if cmd.Flags().Changed("name") {
					newName = name
				}
				newOpening := current.OpeningBalance
				if cmd.Flags().Changed("opening") {
					if newOpening, err = parseAmountFlag(opening, "opening"); err != nil {
						return err
					}
				}

				account, err := store.UpdateAccount(ctx, id, newName, newOpening)
				if err != nil {
					return fmt.Errorf("failed to update account: %w", err)
				}
				printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Updated account %q (ID: %d)", account.Name, account.ID)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New account name")
	cmd.Flags().StringVar(&opening, "opening", "", "New opening balance")

	return cmd
}

func deleteAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account",
		Long:  `Delete an account. Its transactions are kept and become unassigned.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "account ID")
			if err != nil {
				return err
			}

			return withLedger(cmd, func(ctx context.Context, store service.Ledger) error {
				if err := store.DeleteAccount(ctx, id); err != nil {
					return fmt.Errorf("failed to delete account: %w", err)
				}
				printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Deleted account %d", id)))
				return nil
			})
		},
	}
}

func accountBalancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balances",
		Short: "Show the current balance of every account",
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

				balances, err := store.AccountBalances(ctx, container.ID)
				if err != nil {
					return fmt.Errorf("failed to get account balances: %w", err)
				}

				rows := make([][]string, 0, len(balances))
				for _, b := range balances {
					rows = append(rows, []string{
						strconv.FormatInt(b.ID, 10),
						b.Name,
						string(b.Type),
						cli.FormatAmount(cur.Format(b.Balance), b.Balance),
					})
				}
				printLine(cmd, cli.RenderTable([]string{"ID", "Name", "Type", "Balance"}, rows))
				return nil
			})
		},
	}
}
