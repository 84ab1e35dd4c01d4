package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/ledgerbook/internal/cli"
	"github.com/Veraticus/ledgerbook/internal/common"
	"github.com/Veraticus/ledgerbook/internal/config"
	"github.com/Veraticus/ledgerbook/internal/importer"
	"github.com/Veraticus/ledgerbook/internal/model"
	"github.com/Veraticus/ledgerbook/internal/service"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import transactions from statement files",
		Long: `Import transactions from CSV or OFX/QFX statements into a container.
Rows that cannot be imported are reported and skipped; the rest are kept.`,
	}

	cmd.AddCommand(importCSVCmd())
	cmd.AddCommand(importOFXCmd())

	return cmd
}

func importCSVCmd() *cobra.Command {
	var (
		columns  model.ColumnMapping
		noHeader bool
		quiet    bool
	)

	cmd := &cobra.Command{
		Use:   "csv <file>",
		Short: "Import a CSV statement",
		Long: `Import one transaction per CSV row. Column flags are zero-based indexes.
Amounts may carry currency symbols and thousands separators, and an amount in
parentheses is negative. Dates are read in the first format that matches.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hasHeader := viper.GetBool(config.KeySkipHeader)
			if cmd.Flags().Changed("no-header") {
				hasHeader = !noHeader
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer func() { _ = f.Close() }()

			return withLedger(cmd, func(ctx context.Context, store service.Ledger) error {
				container, err := resolveContainer(ctx, store)
				if err != nil {
					return err
				}

				interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr())
				ctx, stop := interrupts.HandleInterrupts(ctx, "Import")
				defer stop()

				var opts []importer.Option
				if !quiet {
					opts = append(opts, importer.WithProgress(cli.ImportProgress(cmd.ErrOrStderr(), "Importing "+args[0])))
				}

				var imp service.CSVImporter = importer.NewCSVImporter(store, opts...)
				result, err := imp.Import(ctx, f, container.ID, columns, hasHeader)
				return finishImport(cmd, container.Name, result, err, interrupts)
			})
		},
	}

	cmd.Flags().IntVar(&columns.Date, "date-col", 0, "Date column index")
	cmd.Flags().IntVar(&columns.Description, "description-col", 1, "Description column index")
	cmd.Flags().IntVar(&columns.Amount, "amount-col", 2, "Amount column index")
	cmd.Flags().IntVar(&columns.Category, "category-col", 3, "Category column index")
	cmd.Flags().BoolVar(&noHeader, "no-header", false, "The first row is data, not a header (default from import.skip_header)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not show a progress bar")

	return cmd
}

func importOFXCmd() *cobra.Command {
	var (
		accountID int64
		quiet     bool
	)

	cmd := &cobra.Command{
		Use:   "ofx <files...>",
		Short: "Import OFX/QFX statements",
		Long: `Import every bank and credit card transaction of one or more OFX/QFX
files. With --account the transactions are assigned to that account.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, func(ctx context.Context, store service.Ledger) error {
				container, err := resolveContainer(ctx, store)
				if err != nil {
					return err
				}

				interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr())
				ctx, stop := interrupts.HandleInterrupts(ctx, "Import")
				defer stop()

				for _, path := range args {
					if err := ctx.Err(); err != nil {
						return finishImport(cmd, container.Name, nil, err, interrupts)
					}

					var opts []importer.Option
					if !quiet {
						opts = append(opts, importer.WithProgress(cli.ImportProgress(cmd.ErrOrStderr(), "Importing "+path)))
					}

					result, err := importOFXFile(ctx, importer.NewOFXImporter(store, opts...), path, container.ID, accountID)
					if err := finishImport(cmd, container.Name, result, err, interrupts); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&accountID, "account", 0, "Account ID to assign the transactions to")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not show a progress bar")

	return cmd
}

func importOFXFile(ctx context.Context, imp *importer.OFXImporter, path string, containerID, accountID int64) (*model.ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	result, err := imp.Import(ctx, f, containerID, accountID)
	if err != nil {
		return result, fmt.Errorf("%s: %w", path, err)
	}
	return result, nil
}

// finishImport prints what an import stored. An import stopped by an
// interrupt still reports its stored rows and then fails with a message
// saying how far it got.
func finishImport(cmd *cobra.Command, container string, result *model.ImportResult, err error, interrupts interface{ WasInterrupted() bool }) error {
	if err == nil {
		printImportResult(cmd, container, result)
		return nil
	}
	if !errors.Is(err, context.Canceled) || !interrupts.WasInterrupted() {
		return err
	}

	processed := 0
	if result != nil {
		printImportResult(cmd, container, result)
		processed = result.SuccessCount + result.ErrorCount
	}
	return common.NewUserError(fmt.Sprintf("import interrupted after %d rows", processed), err)
}

func printImportResult(cmd *cobra.Command, container string, result *model.ImportResult) {
	printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Imported %d transactions into %s", result.SuccessCount, container)))
	if result.ErrorCount == 0 {
		return
	}

	printLine(cmd, cli.FormatWarning(fmt.Sprintf("%d rows failed", result.ErrorCount)))
	for _, msg := range result.Errors {
		printLine(cmd, "  "+msg)
	}
}
