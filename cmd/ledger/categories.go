package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ledgerbook/internal/cli"
	"github.com/Veraticus/ledgerbook/internal/model"
	"github.com/Veraticus/ledgerbook/internal/service"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage reporting categories",
		Long:  `List, add and delete the income and expense categories used by reports.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLedger(cmd, func(ctx context.Context, store service.Ledger) error {
				categories, err := store.ListCategories(ctx)
				if err != nil {
					return fmt.Errorf("failed to get categories: %w", err)
				}

				rows := make([][]string, 0, len(categories))
				for _, c := range categories {
					def := ""
					if c.IsDefault {
						def = "yes"
					}
					rows = append(rows, []string{c.Name, string(c.Type), def})
				}
				printLine(cmd, cli.RenderTable([]string{"Name", "Type", "Default"}, rows))
				return nil
			})
		},
	}
}

func addCategoryCmd() *cobra.Command {
	var categoryType string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, func(ctx context.Context, store service.Ledger) error {
				category, err := store.CreateCategory(ctx, args[0], model.CategoryType(categoryType))
				if err != nil {
					return fmt.Errorf("failed to create category: %w", err)
				}
				printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Created %s category %q", category.Type, category.Name)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&categoryType, "type", string(model.CategoryTypeExpense), "Category type (income, expense)")

	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a category",
		Long:  `Delete a user-created category. Default categories are protected. Transactions keep their label.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, func(ctx context.Context, store service.Ledger) error {
				if err := store.DeleteCategory(ctx, args[0]); err != nil {
					return fmt.Errorf("failed to delete category: %w", err)
				}
				printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Deleted category %q", args[0])))
				return nil
			})
		},
	}
}
