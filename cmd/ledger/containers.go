package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ledgerbook/internal/cli"
	"github.com/Veraticus/ledgerbook/internal/service"
)

func containersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "containers",
		Short: "Manage ledger containers",
		Long:  `List, add, rename and delete containers. Each container holds its own accounts and transactions.`,
	}

	cmd.AddCommand(listContainersCmd())
	cmd.AddCommand(addContainerCmd())
	cmd.AddCommand(renameContainerCmd())
	cmd.AddCommand(deleteContainerCmd())

	return cmd
}

func listContainersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all containers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLedger(cmd, func(ctx context.Context, store service.Ledger) error {
				containers, err := store.ListContainers(ctx)
				if err != nil {
					return fmt.Errorf("failed to list containers: %w", err)
				}

				rows := make([][]string, 0, len(containers))
				for _, c := range containers {
					def := ""
					if c.IsDefault {
						def = "yes"
					}
					rows = append(rows, []string{strconv.FormatInt(c.ID, 10), c.Name, def})
				}
				printLine(cmd, cli.RenderTable([]string{"ID", "Name", "Default"}, rows))
				return nil
			})
		},
	}
}

func addContainerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, func(ctx context.Context, store service.Ledger) error {
				container, err := store.CreateContainer(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to create container: %w", err)
				}
				printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Created container %q (ID: %d)", container.Name, container.ID)))
				return nil
			})
		},
	}
}

func renameContainerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a container",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "container ID")
			if err != nil {
				return err
			}

			return withLedger(cmd, func(ctx context.Context, store service.Ledger) error {
				if err := store.RenameContainer(ctx, id, args[1]); err != nil {
					return fmt.Errorf("failed to rename container: %w", err)
				}
				printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Renamed container %d to %q", id, args[1])))
				return nil
			})
		},
	}
}

func deleteContainerCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a container with all its accounts and transactions",
		Long: `Delete a container together with every account and transaction it holds.
The default container cannot be deleted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "container ID")
			if err != nil {
				return err
			}

			return withLedger(cmd, func(ctx context.Context, store service.Ledger) error {
				container, err := store.GetContainer(ctx, id)
				if err != nil {
					return err
				}

				if !yes {
					question := fmt.Sprintf("Delete container %q and everything in it?", container.Name)
					ok, err := cli.Confirm(ctx, cli.NewNonBlockingReader(cmd.InOrStdin()), cmd.OutOrStdout(), question)
					if err != nil {
						return err
					}
					if !ok {
						printLine(cmd, cli.FormatInfo("Canceled"))
						return nil
					}
				}

				if err := store.DeleteContainer(ctx, id); err != nil {
					return fmt.Errorf("failed to delete container: %w", err)
				}
				printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Deleted container %q", container.Name)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking for confirmation")

	return cmd
}
