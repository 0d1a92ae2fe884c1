package http

import (
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/core"
	"finboard/internal/services"
	"finboard/internal/store"
)

// Wire shapes of the JSON API. Amounts are fixed two-decimal strings and
// months carry their "Month Year" label.

type transactionDTO struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Amount      *string `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Pending     bool    `json:"pending"`
}

type pageDTO struct {
	Items      []transactionDTO `json:"items"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
	Total      int              `json:"total"`
}

type monthDTO struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Label string `json:"label"`
}

type monthRowDTO struct {
	Month     monthDTO `json:"month"`
	Income    string   `json:"income"`
	Expense   string   `json:"expense"`
	Remaining string   `json:"remaining"`
}

type categoryAmountDTO struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

type budgetLineDTO struct {
	Name       string `json:"name"`
	Allocated  string `json:"allocated"`
	Spent      string `json:"spent"`
	Percent    string `json:"percent"`
	OverBudget bool   `json:"over_budget"`
}

type dailyPointDTO struct {
	Day    int    `json:"day"`
	Amount string `json:"amount"`
}

type categoryDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Allocated string `json:"allocated"`
}

type statusDTO struct {
	Loaded  bool       `json:"loaded"`
	Failed  bool       `json:"failed"`
	Message string     `json:"message,omitempty"`
	At      *time.Time `json:"at,omitempty"`
}

type dashboardDTO struct {
	Month              monthDTO                       `json:"month"`
	CurrentMonthIncome string                         `json:"current_month_income"`
	OverallBalance     string                         `json:"overall_balance"`
	MonthlyTable       []monthRowDTO                  `json:"monthly_table"`
	CategoryBreakdown  map[string][]categoryAmountDTO `json:"category_breakdown"`
	Budget             []budgetLineDTO                `json:"budget"`
	Daily              []dailyPointDTO                `json:"daily"`
	CompareMonths      []monthDTO                     `json:"compare_months"`
	Categories         []string                       `json:"categories"`
	Status             statusDTO                      `json:"status"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func toMonth(m core.YearMonth) monthDTO {
	return monthDTO{Year: m.Year, Month: int(m.Month), Label: m.Label()}
}

func toTransaction(t core.Transaction) transactionDTO {
	dto := transactionDTO{
		ID:          t.ID,
		Date:        t.Date.String(),
		Category:    t.CategoryName(),
		Description: t.Description,
		Pending:     t.IsPending(),
	}
	if t.Amount.Valid {
		a := money(t.Amount.Decimal)
		dto.Amount = &a
	}
	return dto
}

func toPage(p store.Page) pageDTO {
	items := make([]transactionDTO, 0, len(p.Items))
	for _, t := range p.Items {
		items = append(items, toTransaction(t))
	}
	return pageDTO{
		Items:      items,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
		Total:      p.Total,
	}
}

func toBudget(lines []core.BudgetLine) []budgetLineDTO {
	out := make([]budgetLineDTO, 0, len(lines))
	for _, l := range lines {
		out = append(out, budgetLineDTO{
			Name:       l.Name,
			Allocated:  money(l.Allocated),
			Spent:      money(l.Spent),
			Percent:    money(l.Percent),
			OverBudget: l.OverBudget,
		})
	}
	return out
}

func toDaily(points []core.DailyPoint) []dailyPointDTO {
	out := make([]dailyPointDTO, 0, len(points))
	for _, p := range points {
		out = append(out, dailyPointDTO{Day: p.Day, Amount: money(p.Amount)})
	}
	return out
}

func toCategories(cats []core.BudgetCategory) []categoryDTO {
	out := make([]categoryDTO, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryDTO{ID: c.ID, Name: c.Name, Allocated: money(c.Allocated)})
	}
	return out
}

func toStatus(s services.FetchStatus) statusDTO {
	dto := statusDTO{Loaded: s.Loaded, Failed: s.Failed, Message: s.Message}
	if !s.At.IsZero() {
		at := s.At
		dto.At = &at
	}
	return dto
}

func toDashboard(month core.YearMonth, d services.Dashboard) dashboardDTO {
	agg := d.Aggregate

	rows := make([]monthRowDTO, 0, len(agg.MonthlyTable))
	for _, b := range agg.MonthlyTable {
		rows = append(rows, monthRowDTO{
			Month:     toMonth(b.Month),
			Income:    money(b.Income),
			Expense:   money(b.Expense),
			Remaining: money(b.Remaining),
		})
	}

	breakdown := make(map[string][]categoryAmountDTO, len(agg.CategoryBreakdown))
	for m, list := range agg.CategoryBreakdown {
		items := make([]categoryAmountDTO, 0, len(list))
		for _, c := range list {
			items = append(items, categoryAmountDTO{Name: c.Name, Amount: money(c.Amount)})
		}
		breakdown[m.Label()] = items
	}

	compare := make([]monthDTO, 0, len(d.CompareMonths))
	for _, m := range d.CompareMonths {
		compare = append(compare, toMonth(m))
	}

	categories := d.Categories
	if categories == nil {
		categories = []string{}
	}

	return dashboardDTO{
		Month:              toMonth(month),
		CurrentMonthIncome: money(agg.CurrentMonthIncome),
		OverallBalance:     money(agg.OverallBalance),
		MonthlyTable:       rows,
		CategoryBreakdown:  breakdown,
		Budget:             toBudget(d.Budget),
		Daily:              toDaily(d.Daily),
		CompareMonths:      compare,
		Categories:         categories,
		Status:             toStatus(d.Status),
	}
}
