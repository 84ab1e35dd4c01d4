package storage

import (
	"context"
	"log/slog"

	"github.com/Veraticus/ledgerbook/internal/common"
	"github.com/Veraticus/ledgerbook/internal/model"
	"github.com/Veraticus/ledgerbook/internal/period"
)

// Flow queries exclude transfer legs: a transfer nets to zero and is not
// income or expense. A category label without a matching row is an expense.
const categoryTotalsQuery = `
	SELECT t.category, SUM(ABS(t.amount)) AS total
	FROM transactions t
	LEFT JOIN categories c ON c.name = t.category
	WHERE t.container_id = ?
	  AND t.transfer_id IS NULL
	  AND t.date BETWEEN ? AND ?
	  AND COALESCE(c.category_type, 'expense') = ?
	GROUP BY t.category
	ORDER BY total DESC, t.category ASC`

// MonthlyBalance returns the flow balance of the current month.
func (s *SQLiteStorage) MonthlyBalance(ctx context.Context, containerID int64) (int64, error) {
	return s.BalanceForMonth(ctx, containerID, period.Current(s.clock()))
}

// BalanceForMonth returns the sum of non-transfer transaction amounts in a
// "YYYY-MM" month.
func (s *SQLiteStorage) BalanceForMonth(ctx context.Context, containerID int64, month string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateID(containerID, "container_id"); err != nil {
		return 0, err
	}
	start, end, err := period.MonthRange(month)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return flowBalance(ctx, s.db, containerID, start, end)
}

// AllTimeBalance returns the sum of every non-transfer transaction amount in
// a container.
func (s *SQLiteStorage) AllTimeBalance(ctx context.Context, containerID int64) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateID(containerID, "container_id"); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var balance int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE container_id = ? AND transfer_id IS NULL`, containerID).Scan(&balance)
	if err != nil {
		return 0, common.NewStorageError("get all-time balance", err)
	}
	return balance, nil
}

// CategoryTotals returns the absolute spending per expense category for a
// month, largest first. An empty month means the current month.
func (s *SQLiteStorage) CategoryTotals(ctx context.Context, containerID int64, month string) ([]model.CategoryTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(containerID, "container_id"); err != nil {
		return nil, err
	}
	if month == "" {
		month = period.Current(s.clock())
	}
	start, end, err := period.MonthRange(month)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return categoryTotals(ctx, s.db, containerID, start, end, model.CategoryTypeExpense)
}

// ProfitAndLoss builds the income and expense report for a month.
func (s *SQLiteStorage) ProfitAndLoss(ctx context.Context, containerID int64, month string) (*model.ProfitLossReport, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(containerID, "container_id"); err != nil {
		return nil, err
	}
	start, end, err := period.MonthRange(month)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := requireContainer(ctx, s.db, containerID); err != nil {
		return nil, err
	}

	income, err := categoryTotals(ctx, s.db, containerID, start, end, model.CategoryTypeIncome)
	if err != nil {
		return nil, err
	}
	expense, err := categoryTotals(ctx, s.db, containerID, start, end, model.CategoryTypeExpense)
	if err != nil {
		return nil, err
	}

	report := &model.ProfitLossReport{
		StartDate:    start,
		EndDate:      end,
		Income:       income,
		Expense:      expense,
		TotalIncome:  sumTotals(income),
		TotalExpense: sumTotals(expense),
	}
	report.NetIncome = report.TotalIncome - report.TotalExpense

	slog.Debug("Built profit and loss",
		"container_id", containerID,
		"month", month,
		"income", report.TotalIncome,
		"expense", report.TotalExpense)
	return report, nil
}

// BalanceSheet snapshots every account of a container as of the last second
// of a month. Transfer legs count toward account balances.
func (s *SQLiteStorage) BalanceSheet(ctx context.Context, containerID int64, month string) (*model.BalanceSheetReport, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(containerID, "container_id"); err != nil {
		return nil, err
	}
	_, end, err := period.MonthRange(month)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := requireContainer(ctx, s.db, containerID); err != nil {
		return nil, err
	}

	balances, err := accountBalancesAsOf(ctx, s.db, containerID, end)
	if err != nil {
		return nil, err
	}

	report := &model.BalanceSheetReport{AsOf: end}
	for _, b := range balances {
		switch b.Type.Section() {
		case "assets":
			report.Assets = append(report.Assets, b)
			report.TotalAssets += b.Balance
		case "liabilities":
			report.Liabilities = append(report.Liabilities, b)
			report.TotalLiabilities += b.Balance
		default:
			report.Equity = append(report.Equity, b)
			report.TotalEquity += b.Balance
		}
	}

	slog.Debug("Built balance sheet", "container_id", containerID, "as_of", end, "accounts", len(balances))
	return report, nil
}

func flowBalance(ctx context.Context, q queryable, containerID int64, start, end string) (int64, error) {
	var balance int64
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE container_id = ?
		  AND transfer_id IS NULL
		  AND date BETWEEN ? AND ?`, containerID, start, end).Scan(&balance)
	if err != nil {
		return 0, common.NewStorageError("get monthly balance", err)
	}
	return balance, nil
}

func categoryTotals(ctx context.Context, q queryable, containerID int64, start, end string, categoryType model.CategoryType) ([]model.CategoryTotal, error) {
	rows, err := q.QueryContext(ctx, categoryTotalsQuery, containerID, start, end, string(categoryType))
	if err != nil {
		return nil, common.NewStorageError("query category totals", err)
	}
	defer func() { _ = rows.Close() }()

	var totals []model.CategoryTotal
	for rows.Next() {
		var ct model.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total); err != nil {
			return nil, common.NewStorageError("scan category total", err)
		}
		totals = append(totals, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewStorageError("iterate category totals", err)
	}
	return totals, nil
}

func sumTotals(lines []model.CategoryTotal) int64 {
	var total int64
	for _, l := range lines {
		total += l.Total
	}
	return total
}
