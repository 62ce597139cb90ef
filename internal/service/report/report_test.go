package report

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/nahidfarms/poultrypro/internal/domain/models"
	"github.com/nahidfarms/poultrypro/internal/service/ledger"
)

func testFlock() models.Flock {
	return models.Flock{
		ID:           "f1",
		BatchName:    "Winter Broilers",
		Breed:        "Cobb 500",
		StartDate:    "2026-01-10",
		InitialCount: 500,
		CurrentCount: 480,
		MortalityLogs: []models.MortalityLog{
			{ID: "m1", Date: "2026-01-20", Count: 20},
		},
	}
}

func testTransactions() []models.Transaction {
	return []models.Transaction{
		{ID: "t1", Type: models.TransactionExpense, Category: models.CategoryFeed, Amount: decimal.RequireFromString("1200.50"), FlockID: "f1"},
		{ID: "t2", Type: models.TransactionExpense, Category: models.CategoryMedicine, Amount: decimal.NewFromInt(300), FlockID: "f1"},
		{ID: "t3", Type: models.TransactionExpense, Category: models.CategoryLabor, Amount: decimal.NewFromInt(150), FlockID: "f1"},
		{ID: "t4", Type: models.TransactionIncome, Category: models.CategorySales, Amount: decimal.NewFromInt(4000), FlockID: "f1"},
		// Other flock and unattributed entries must not leak into the report.
		{ID: "t5", Type: models.TransactionExpense, Category: models.CategoryFeed, Amount: decimal.NewFromInt(999), FlockID: "f2"},
		{ID: "t6", Type: models.TransactionIncome, Category: models.CategorySales, Amount: decimal.NewFromInt(999)},
	}
}

func TestBuildAttributesCostsByCategory(t *testing.T) {
	rep := Build(testFlock(), testTransactions())

	require.Equal(t, "Winter Broilers", rep.BatchName)
	require.Equal(t, 20, rep.TotalMortality)
	require.True(t, rep.FeedCost.Equal(decimal.RequireFromString("1200.50")))
	require.True(t, rep.MedicineCost.Equal(decimal.NewFromInt(300)))
	require.True(t, rep.OtherExpense.Equal(decimal.NewFromInt(150)))
	require.True(t, rep.TotalExpense.Equal(decimal.RequireFromString("1650.50")))
	require.True(t, rep.Income.Equal(decimal.NewFromInt(4000)))
	require.True(t, rep.NetProfit.Equal(decimal.RequireFromString("2349.50")))
}

func TestBuildTotalsReconcileWithLedgerSums(t *testing.T) {
	flock := testFlock()
	txs := testTransactions()
	rep := Build(flock, txs)

	var attributed []models.Transaction
	for _, tx := range txs {
		if tx.FlockID == flock.ID {
			attributed = append(attributed, tx)
		}
	}
	income, expense, balance := ledger.Summarize(attributed)

	require.True(t, rep.Income.Equal(income))
	require.True(t, rep.TotalExpense.Equal(expense))
	require.True(t, rep.NetProfit.Equal(balance))
}

func TestBuildEmptyLedger(t *testing.T) {
	rep := Build(testFlock(), nil)

	require.True(t, rep.TotalExpense.IsZero())
	require.True(t, rep.Income.IsZero())
	require.True(t, rep.NetProfit.IsZero())
}

func TestRenderContainsTotals(t *testing.T) {
	text := Render(Build(testFlock(), testTransactions()))

	require.True(t, strings.Contains(text, "Winter Broilers"))
	require.True(t, strings.Contains(text, "480 of 500 alive, 20 lost"))
	require.True(t, strings.Contains(text, "1650.50"))
	require.True(t, strings.Contains(text, "2349.50"))
}

type fakeSheets struct {
	rows [][]interface{}
	err  error
}

func (f *fakeSheets) WriteRow(_ context.Context, _ string, values []interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, values)
	return nil
}

func TestExportWritesOneRow(t *testing.T) {
	sheet := &fakeSheets{}
	svc := NewService(sheet, nil)

	require.NoError(t, svc.Export(context.Background(), Build(testFlock(), testTransactions())))
	require.Len(t, sheet.rows, 1)
	require.Equal(t, "Winter Broilers", sheet.rows[0][0])
}

func TestExportWithoutSheetIsNoop(t *testing.T) {
	svc := NewService(nil, nil)
	require.NoError(t, svc.Export(context.Background(), models.BatchReport{}))
}
