package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultWindowMonths is the size of the rolling monthly table.
const DefaultWindowMonths = 6

// MonthBucket holds the totals of one calendar month. Expense is a positive
// magnitude. All values are rounded to two decimals.
type MonthBucket struct {
	Month     YearMonth
	Income    decimal.Decimal
	Expense   decimal.Decimal
	Remaining decimal.Decimal
}

// CategoryAmount is the expense magnitude of one category.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// AggregateResult is the full read model derived from a transaction list.
type AggregateResult struct {
	Reference          YearMonth
	CurrentMonthIncome decimal.Decimal
	OverallBalance     decimal.Decimal
	// MonthlyTable is ordered oldest first; the last entry is the reference month.
	MonthlyTable      []MonthBucket
	CategoryBreakdown map[YearMonth][]CategoryAmount
}

// Aggregate runs every aggregation over txns. It never fails: invalid
// transactions are skipped and empty input yields zero values.
func Aggregate(txns []Transaction, ref time.Time, windowMonths int) AggregateResult {
	return AggregateResult{
		Reference:          MonthOf(ref),
		CurrentMonthIncome: CurrentMonthIncome(txns, ref),
		OverallBalance:     OverallBalance(txns),
		MonthlyTable:       MonthlyTable(txns, ref, windowMonths),
		CategoryBreakdown:  CategoryBreakdownByMonth(txns),
	}
}

// CurrentMonthIncome sums the positive amounts dated in ref's month.
func CurrentMonthIncome(txns []Transaction, ref time.Time) decimal.Decimal {
	month := MonthOf(ref)
	total := decimal.Zero
	for _, t := range txns {
		if !t.Valid() || !month.Contains(t.Date) {
			continue
		}
		if amt := t.Amount.Decimal; amt.IsPositive() {
			total = total.Add(amt)
		}
	}
	return total
}

// OverallBalance sums every valid amount regardless of date.
func OverallBalance(txns []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		if t.Valid() {
			total = total.Add(t.Amount.Decimal)
		}
	}
	return total
}

// Window returns windowMonths consecutive months ending at ref's month,
// oldest first.
func Window(ref time.Time, windowMonths int) []YearMonth {
	if windowMonths <= 0 {
		return nil
	}
	last := MonthOf(ref)
	out := make([]YearMonth, windowMonths)
	for i := range out {
		out[i] = last.AddMonths(i - windowMonths + 1)
	}
	return out
}

// MonthlyTable computes income, expense and remaining for each month of the
// window. Zero amounts count towards neither side.
func MonthlyTable(txns []Transaction, ref time.Time, windowMonths int) []MonthBucket {
	months := Window(ref, windowMonths)
	if len(months) == 0 {
		return nil
	}
	type totals struct{ income, expense decimal.Decimal }
	acc := make(map[YearMonth]*totals, len(months))
	for _, m := range months {
		acc[m] = &totals{income: decimal.Zero, expense: decimal.Zero}
	}
	for _, t := range txns {
		if !t.Valid() {
			continue
		}
		bucket, ok := acc[MonthOf(t.Date.Time)]
		if !ok {
			continue
		}
		amt := t.Amount.Decimal
		switch amt.Sign() {
		case 1:
			bucket.income = bucket.income.Add(amt)
		case -1:
			bucket.expense = bucket.expense.Add(amt.Abs())
		}
	}
	out := make([]MonthBucket, 0, len(months))
	for _, m := range months {
		b := acc[m]
		out = append(out, MonthBucket{
			Month:     m,
			Income:    Round2(b.income),
			Expense:   Round2(b.expense),
			Remaining: Round2(b.income.Sub(b.expense)),
		})
	}
	return out
}

// CategoryBreakdownByMonth groups every expense by month and category.
// Each month's list is sorted by descending amount, then by name.
func CategoryBreakdownByMonth(txns []Transaction) map[YearMonth][]CategoryAmount {
	acc := map[YearMonth]map[string]decimal.Decimal{}
	for _, t := range txns {
		if !t.Valid() || !t.Amount.Decimal.IsNegative() {
			continue
		}
		m := MonthOf(t.Date.Time)
		cats, ok := acc[m]
		if !ok {
			cats = map[string]decimal.Decimal{}
			acc[m] = cats
		}
		name := t.CategoryName()
		cats[name] = cats[name].Add(t.Amount.Decimal.Abs())
	}
	out := make(map[YearMonth][]CategoryAmount, len(acc))
	for m, cats := range acc {
		list := make([]CategoryAmount, 0, len(cats))
		for name, amt := range cats {
			list = append(list, CategoryAmount{Name: name, Amount: Round2(amt)})
		}
		sortCategoryAmounts(list)
		out[m] = list
	}
	return out
}

func sortCategoryAmounts(list []CategoryAmount) {
	sort.Slice(list, func(i, j int) bool {
		if c := list[i].Amount.Cmp(list[j].Amount); c != 0 {
			return c > 0
		}
		return list[i].Name < list[j].Name
	})
}

// Breakdown returns the category list for a month, or nil.
func (r AggregateResult) Breakdown(m YearMonth) []CategoryAmount {
	return r.CategoryBreakdown[m]
}

// Current returns the bucket of the reference month. The second result is
// false when the table is empty.
func (r AggregateResult) Current() (MonthBucket, bool) {
	if len(r.MonthlyTable) == 0 {
		return MonthBucket{}, false
	}
	return r.MonthlyTable[len(r.MonthlyTable)-1], true
}
