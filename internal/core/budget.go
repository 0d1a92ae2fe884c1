package core

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// BudgetLine compares a category's allocation with what was spent in a month.
type BudgetLine struct {
	Name       string
	Allocated  decimal.Decimal
	Spent      decimal.Decimal
	Percent    decimal.Decimal
	OverBudget bool
}

// BudgetUsage joins the budget categories with a month's expense breakdown.
// The Income category is skipped. Categories keep their input order.
func BudgetUsage(categories []BudgetCategory, breakdown []CategoryAmount) []BudgetLine {
	spent := make(map[string]decimal.Decimal, len(breakdown))
	for _, ca := range breakdown {
		spent[ca.Name] = ca.Amount
	}
	out := make([]BudgetLine, 0, len(categories))
	for _, c := range categories {
		if c.Name == IncomeCategory {
			continue
		}
		s := spent[c.Name]
		line := BudgetLine{
			Name:      c.Name,
			Allocated: c.Allocated,
			Spent:     s,
			Percent:   decimal.Zero,
		}
		if c.Allocated.IsPositive() {
			line.Percent = Round2(s.Div(c.Allocated).Mul(hundred))
			line.OverBudget = s.GreaterThan(c.Allocated)
		} else {
			line.OverBudget = s.IsPositive()
		}
		out = append(out, line)
	}
	return out
}

// OverBudget filters the lines whose spending exceeds the allocation.
func OverBudget(lines []BudgetLine) []BudgetLine {
	var out []BudgetLine
	for _, l := range lines {
		if l.OverBudget {
			out = append(out, l)
		}
	}
	return out
}

// CategoryNames returns the category names in order, for form selects.
func CategoryNames(categories []BudgetCategory) []string {
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		out = append(out, c.Name)
	}
	return out
}

// DailyPoint is the running expense total at the end of a day.
type DailyPoint struct {
	Day    int
	Amount decimal.Decimal
}

// CumulativeDailyExpenses returns the running sum of expense magnitudes for
// each day of the month.
func CumulativeDailyExpenses(txns []Transaction, month YearMonth) []DailyPoint {
	days := month.Days()
	daily := make([]decimal.Decimal, days+1)
	for _, t := range txns {
		if !t.Valid() || !t.Amount.Decimal.IsNegative() || !month.Contains(t.Date) {
			continue
		}
		d := t.Date.Day()
		daily[d] = daily[d].Add(t.Amount.Decimal.Abs())
	}
	out := make([]DailyPoint, 0, days)
	running := decimal.Zero
	for day := 1; day <= days; day++ {
		running = running.Add(daily[day])
		out = append(out, DailyPoint{Day: day, Amount: Round2(running)})
	}
	return out
}

// MonthOptions lists the n months preceding ref's month, oldest first.
// The current month is always displayed, so it is not an option.
func MonthOptions(ref time.Time, n int) []YearMonth {
	if n <= 0 {
		return nil
	}
	current := MonthOf(ref)
	out := make([]YearMonth, n)
	for i := range out {
		out[i] = current.AddMonths(i - n)
	}
	return out
}
