package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ledgerbook/internal/cli"
	"github.com/Veraticus/ledgerbook/internal/export"
	"github.com/Veraticus/ledgerbook/internal/service"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transactions",
	}

	cmd.AddCommand(exportCSVCmd())

	return cmd
}

func exportCSVCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Export the transactions of a container as CSV",
		Long:  `Write every transaction of a container as CSV with the header ID,Amount,Description,Category,Date.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLedger(cmd, func(ctx context.Context, store service.Ledger) error {
				container, err := resolveContainer(ctx, store)
				if err != nil {
					return err
				}

				var w io.Writer = cmd.OutOrStdout()
				if output != "" {
					f, err := os.Create(output)
					if err != nil {
						return fmt.Errorf("failed to create %s: %w", output, err)
					}
					defer func() { _ = f.Close() }()
					w = f
				}

				var exporter service.Exporter = export.NewCSVExporter(store)
				if err := exporter.Export(ctx, w, container.ID); err != nil {
					return err
				}
				if output != "" {
					printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Exported %s to %s", container.Name, output)))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}
