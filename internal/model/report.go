package model

// CategoryTotal is the sum of absolute amounts for one category label.
type CategoryTotal struct {
	Category string
	Total    int64
}

// ProfitLossLine is one category line of a profit and loss report.
type ProfitLossLine = CategoryTotal

// ProfitLossReport summarises income and expense for one calendar month.
// Totals are non-negative and NetIncome is TotalIncome - TotalExpense.
type ProfitLossReport struct {
	StartDate    string
	EndDate      string
	Income       []ProfitLossLine
	Expense      []ProfitLossLine
	TotalIncome  int64
	TotalExpense int64
	NetIncome    int64
}

// BalanceSheetReport is a point-in-time snapshot of every account in a
// container as of the last second of a month.
type BalanceSheetReport struct {
	AsOf             string
	Assets           []AccountBalance
	Liabilities      []AccountBalance
	Equity           []AccountBalance
	TotalAssets      int64
	TotalLiabilities int64
	TotalEquity      int64
}

// MonthlySummary bundles the reports for one container and month.
type MonthlySummary struct {
	ProfitLoss     *ProfitLossReport
	BalanceSheet   *BalanceSheetReport
	Month          string
	CategoryTotals []CategoryTotal
	FlowBalance    int64
}
