package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func txn(date string, amount any, category string) Transaction {
	return TransactionFromRecord(Record{
		ID: "rec" + date + category,
		Fields: map[string]any{
			FieldDate:     date,
			FieldAmount:   amount,
			FieldCategory: category,
		},
	})
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

var june2025 = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestAggregate_JuneScenario(t *testing.T) {
	txns := []Transaction{
		txn("2025-06-01", 1000.0, ""),
		txn("2025-06-05", -200.0, "Food"),
		txn("2025-05-01", -50.0, "Food"),
	}

	res := Aggregate(txns, june2025, DefaultWindowMonths)

	assertDec(t, "1000", res.CurrentMonthIncome)
	assertDec(t, "750", res.OverallBalance)

	cur, ok := res.Current()
	require.True(t, ok)
	assert.Equal(t, YearMonth{2025, time.June}, cur.Month)
	assertDec(t, "1000", cur.Income)
	assertDec(t, "200", cur.Expense)
	assertDec(t, "800", cur.Remaining)

	june := res.Breakdown(YearMonth{2025, time.June})
	require.Len(t, june, 1)
	assert.Equal(t, "Food", june[0].Name)
	assertDec(t, "200", june[0].Amount)

	may := res.Breakdown(YearMonth{2025, time.May})
	require.Len(t, may, 1)
	assert.Equal(t, "Food", may[0].Name)
	assertDec(t, "50", may[0].Amount)
}

func TestAggregate_UnparseableAmountExcluded(t *testing.T) {
	txns := []Transaction{
		txn("2025-06-02", "abc", "Food"),
		txn("2025-06-03", 10.0, "Gift"),
		txn("not a date", -30.0, "Food"),
	}

	res := Aggregate(txns, june2025, 3)

	assertDec(t, "10", res.CurrentMonthIncome)
	assertDec(t, "10", res.OverallBalance)
	cur, _ := res.Current()
	assertDec(t, "0", cur.Expense)
	assert.Empty(t, res.CategoryBreakdown)
}

func TestAggregate_EmptyInput(t *testing.T) {
	res := Aggregate(nil, june2025, DefaultWindowMonths)

	assertDec(t, "0", res.CurrentMonthIncome)
	assertDec(t, "0", res.OverallBalance)
	require.Len(t, res.MonthlyTable, DefaultWindowMonths)
	for _, b := range res.MonthlyTable {
		assert.True(t, b.Income.IsZero())
		assert.True(t, b.Expense.IsZero())
		assert.True(t, b.Remaining.IsZero())
	}
	assert.Empty(t, res.CategoryBreakdown)
}

func TestCurrentMonthIncome_ExcludesOtherMonthsAndNonPositive(t *testing.T) {
	txns := []Transaction{
		txn("2025-06-10", 100.0, "Income"),
		txn("2025-06-11", 0.0, "Income"),
		txn("2025-06-12", -40.0, "Food"),
		txn("2024-06-10", 500.0, "Income"), // same month, other year
		txn("2025-07-01", 70.0, "Income"),
	}

	assertDec(t, "100", CurrentMonthIncome(txns, june2025))
}

func TestOverallBalance_SumsAllValid(t *testing.T) {
	txns := []Transaction{
		txn("2020-01-01", 10.25, "A"),
		txn("2030-12-31", -0.25, "B"),
		txn("2025-06-01", "12,50", "C"),
		txn("", 99.0, "D"),
	}

	assertDec(t, "22.5", OverallBalance(txns))
}

func TestWindow_EndsAtReferenceMonth(t *testing.T) {
	ref := time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)

	got := Window(ref, 6)

	want := []YearMonth{
		{2024, time.September}, {2024, time.October}, {2024, time.November},
		{2024, time.December}, {2025, time.January}, {2025, time.February},
	}
	assert.Equal(t, want, got)
	assert.Nil(t, Window(ref, 0))
}

func TestMonthlyTable_ZeroAmountCountsNowhere(t *testing.T) {
	txns := []Transaction{
		txn("2025-06-01", 0.0, "Other"),
		txn("2025-06-02", 0.005, "Income"),
		txn("2025-06-03", -0.005, "Food"),
	}

	table := MonthlyTable(txns, june2025, 1)

	require.Len(t, table, 1)
	assertDec(t, "0.01", table[0].Income)
	assertDec(t, "0.01", table[0].Expense)
	assertDec(t, "0", table[0].Remaining)
}

func TestMonthlyTable_RoundsHalfAwayFromZero(t *testing.T) {
	txns := []Transaction{
		txn("2025-06-01", 10.125, "Income"),
		txn("2025-06-02", -3.333, "Food"),
		txn("2025-06-03", -1.112, "Food"),
	}

	table := MonthlyTable(txns, june2025, 1)

	require.Len(t, table, 1)
	b := table[0]
	assertDec(t, "10.13", b.Income)
	assertDec(t, "4.45", b.Expense)
	assertDec(t, "5.68", b.Remaining)
	assert.False(t, b.Expense.IsNegative())
	assert.True(t, b.Remaining.Equal(Round2(b.Income.Sub(b.Expense))))
}

func TestMonthlyTable_OutsideWindowIgnored(t *testing.T) {
	txns := []Transaction{
		txn("2024-12-31", -100.0, "Food"),
		txn("2025-01-01", -20.0, "Food"),
	}

	table := MonthlyTable(txns, june2025, 6)

	require.Len(t, table, 6)
	assert.Equal(t, YearMonth{2025, time.January}, table[0].Month)
	assertDec(t, "20", table[0].Expense)
	for _, b := range table[1:] {
		assert.True(t, b.Expense.IsZero())
	}
}

func TestCategoryBreakdown_OnlyExpensesAndDefaultCategory(t *testing.T) {
	txns := []Transaction{
		txn("2025-06-01", -12.5, ""),
		txn("2025-06-02", -7.5, "   "),
		txn("2025-06-03", 300.0, "Food"),
		txn("2025-06-04", -5.0, "Food"),
	}

	got := CategoryBreakdownByMonth(txns)[YearMonth{2025, time.June}]

	require.Len(t, got, 2)
	assert.Equal(t, DefaultCategory, got[0].Name)
	assertDec(t, "20", got[0].Amount)
	assert.Equal(t, "Food", got[1].Name)
	assertDec(t, "5", got[1].Amount)
}

func TestCategoryBreakdown_TiesSortedByName(t *testing.T) {
	txns := []Transaction{
		txn("2025-06-01", -10.0, "Zoo"),
		txn("2025-06-01", -10.0, "Art"),
		txn("2025-06-01", -30.0, "Rent"),
	}

	got := CategoryBreakdownByMonth(txns)[YearMonth{2025, time.June}]

	names := make([]string, len(got))
	for i, ca := range got {
		names[i] = ca.Name
	}
	assert.Equal(t, []string{"Rent", "Art", "Zoo"}, names)
}

func TestYearMonth_Label(t *testing.T) {
	assert.Equal(t, "June 2025", YearMonth{2025, time.June}.Label())
	assert.Equal(t, "December 2024", YearMonth{2025, time.January}.AddMonths(-1).Label())
}
