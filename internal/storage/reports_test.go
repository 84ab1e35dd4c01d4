package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Veraticus/ledgerbook/internal/common"
	"github.com/Veraticus/ledgerbook/internal/model"
	"github.com/Veraticus/ledgerbook/internal/period"
)

type reportFixture struct {
	store     *SQLiteStorage
	container int64
	checking  *model.Account
	visa      *model.Account
	owner     *model.Account
}

// newReportFixture builds a container with activity in February, March and
// April 2024 and one March transfer from checking to the credit card.
func newReportFixture(t *testing.T) (*reportFixture, func()) {
	t.Helper()
	store, cleanup := createTestStorage(t)
	container := defaultContainerID(t, store)

	f := &reportFixture{
		store:     store,
		container: container,
		checking:  createTestAccount(t, store, container, "Checking", model.AccountTypeAsset, 100000),
		visa:      createTestAccount(t, store, container, "Visa", model.AccountTypeLiability, -20000),
		owner:     createTestAccount(t, store, container, "Owner", model.AccountTypeEquity, 0),
	}

	rows := []struct {
		date string
		txn  model.Transaction
	}{
		{"2024-02-15", model.Transaction{AccountID: f.checking.ID, Amount: -9999, Category: "Shopping"}},
		{"2024-03-01", model.Transaction{AccountID: f.checking.ID, Amount: 300000, Category: "Income"}},
		{"2024-03-05", model.Transaction{AccountID: f.checking.ID, Amount: -4550, Category: "Food & Dining"}},
		{"2024-03-10", model.Transaction{AccountID: f.visa.ID, Amount: -2000, Category: "Food & Dining"}},
		{"2024-03-12", model.Transaction{AccountID: f.visa.ID, Amount: -1500, Category: "Gadgets"}},
		{"2024-04-01", model.Transaction{AccountID: f.checking.ID, Amount: -777, Category: "Shopping"}},
	}
	for _, r := range rows {
		r.txn.ContainerID = container
		importOn(t, store, r.txn, r.date)
	}

	// Stamped with the test clock, 2024-03-20.
	if _, err := store.CreateTransfer(context.Background(), model.TransferRequest{
		ContainerID: container, FromAccountID: f.checking.ID, ToAccountID: f.visa.ID, Amount: 5000,
	}); err != nil {
		cleanup()
		t.Fatalf("CreateTransfer() error = %v", err)
	}

	return f, cleanup
}

func TestSQLiteStorage_FlowBalances(t *testing.T) {
	f, cleanup := newReportFixture(t)
	defer cleanup()
	ctx := context.Background()

	march, err := f.store.BalanceForMonth(ctx, f.container, "2024-03")
	if err != nil {
		t.Fatalf("BalanceForMonth() error = %v", err)
	}
	if want := int64(300000 - 4550 - 2000 - 1500); march != want {
		t.Errorf("BalanceForMonth(2024-03) = %d, want %d", march, want)
	}

	current, err := f.store.MonthlyBalance(ctx, f.container)
	if err != nil {
		t.Fatalf("MonthlyBalance() error = %v", err)
	}
	if current != march {
		t.Errorf("MonthlyBalance() = %d, want the clock month's %d", current, march)
	}

	allTime, err := f.store.AllTimeBalance(ctx, f.container)
	if err != nil {
		t.Fatalf("AllTimeBalance() error = %v", err)
	}
	if want := march - 9999 - 777; allTime != want {
		t.Errorf("AllTimeBalance() = %d, want %d", allTime, want)
	}

	if _, err := f.store.BalanceForMonth(ctx, f.container, "March"); !errors.Is(err, common.ErrValidation) {
		t.Errorf("BalanceForMonth(bad month) error = %v, want ErrValidation", err)
	}
}

func TestSQLiteStorage_CategoryTotals(t *testing.T) {
	f, cleanup := newReportFixture(t)
	defer cleanup()
	ctx := context.Background()

	want := []model.CategoryTotal{
		{Category: "Food & Dining", Total: 6550},
		{Category: "Gadgets", Total: 1500},
	}

	for _, month := range []string{"2024-03", ""} {
		got, err := f.store.CategoryTotals(ctx, f.container, month)
		if err != nil {
			t.Fatalf("CategoryTotals(%q) error = %v", month, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("CategoryTotals(%q) = %+v, want %+v", month, got, want)
		}
	}

	empty, err := f.store.CategoryTotals(ctx, f.container, "2023-01")
	if err != nil {
		t.Fatalf("CategoryTotals() error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("CategoryTotals(quiet month) = %+v, want none", empty)
	}
}

func TestSQLiteStorage_ProfitAndLoss(t *testing.T) {
	f, cleanup := newReportFixture(t)
	defer cleanup()
	ctx := context.Background()

	report, err := f.store.ProfitAndLoss(ctx, f.container, "2024-03")
	if err != nil {
		t.Fatalf("ProfitAndLoss() error = %v", err)
	}

	if report.StartDate != "2024-03-01 00:00:00" || report.EndDate != "2024-03-31 23:59:59" {
		t.Errorf("period = %s..%s", report.StartDate, report.EndDate)
	}
	wantIncome := []model.ProfitLossLine{{Category: "Income", Total: 300000}}
	if !reflect.DeepEqual(report.Income, wantIncome) {
		t.Errorf("Income = %+v, want %+v", report.Income, wantIncome)
	}
	if report.TotalIncome != 300000 || report.TotalExpense != 8050 {
		t.Errorf("totals = %d/%d, want 300000/8050", report.TotalIncome, report.TotalExpense)
	}
	if report.NetIncome != report.TotalIncome-report.TotalExpense {
		t.Errorf("NetIncome = %d, want %d", report.NetIncome, report.TotalIncome-report.TotalExpense)
	}
	for _, line := range append(report.Income, report.Expense...) {
		if line.Category == model.TransferCategory {
			t.Error("transfer legs must not appear in profit and loss")
		}
	}

	if _, err := f.store.ProfitAndLoss(ctx, 404, "2024-03"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("ProfitAndLoss(missing container) error = %v, want ErrNotFound", err)
	}
	if _, err := f.store.ProfitAndLoss(ctx, f.container, "2024-3-1"); !errors.Is(err, period.ErrInvalidPeriod) {
		t.Errorf("ProfitAndLoss(bad month) error = %v, want ErrInvalidPeriod", err)
	}
}

func TestSQLiteStorage_BalanceSheet(t *testing.T) {
	f, cleanup := newReportFixture(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		name            string
		month           string
		wantAssets      int64
		wantLiabilities int64
	}{
		{
			name:            "before the transfer",
			month:           "2024-02",
			wantAssets:      100000 - 9999,
			wantLiabilities: -20000,
		},
		{
			name:            "end of march includes the transfer legs",
			month:           "2024-03",
			wantAssets:      100000 - 9999 + 300000 - 4550 - 5000,
			wantLiabilities: -20000 - 2000 - 1500 + 5000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := f.store.BalanceSheet(ctx, f.container, tt.month)
			if err != nil {
				t.Fatalf("BalanceSheet() error = %v", err)
			}
			if report.TotalAssets != tt.wantAssets {
				t.Errorf("TotalAssets = %d, want %d", report.TotalAssets, tt.wantAssets)
			}
			if report.TotalLiabilities != tt.wantLiabilities {
				t.Errorf("TotalLiabilities = %d, want %d", report.TotalLiabilities, tt.wantLiabilities)
			}
			if len(report.Assets) != 1 || len(report.Liabilities) != 1 || len(report.Equity) != 1 {
				t.Errorf("buckets = %d/%d/%d accounts, want 1/1/1",
					len(report.Assets), len(report.Liabilities), len(report.Equity))
			}
		})
	}
}

func TestSQLiteStorage_BalanceSheetBucketsUnknownTypesAsEquity(t *testing.T) {
	f, cleanup := newReportFixture(t)
	defer cleanup()
	ctx := context.Background()

	legacy := createTestAccount(t, f.store, f.container, "Old Loan", model.AccountTypeOther, 4200)
	if _, err := f.store.db.Exec(`UPDATE accounts SET account_type = 'loan' WHERE id = ?`, legacy.ID); err != nil {
		t.Fatalf("failed to write legacy account type: %v", err)
	}

	report, err := f.store.BalanceSheet(ctx, f.container, "2024-03")
	if err != nil {
		t.Fatalf("BalanceSheet() error = %v", err)
	}
	if report.TotalEquity != 4200 {
		t.Errorf("TotalEquity = %d, want 4200", report.TotalEquity)
	}
	names := make([]string, 0, len(report.Equity))
	for _, b := range report.Equity {
		names = append(names, b.Name)
	}
	if !reflect.DeepEqual(names, []string{"Old Loan", "Owner"}) {
		t.Errorf("equity accounts = %v", names)
	}
}
