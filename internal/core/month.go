package core

import (
	"fmt"
	"time"
)

// YearMonth is a calendar month. It is the internal key of every monthly
// aggregate; Label produces the display form.
type YearMonth struct {
	Year  int
	Month time.Month
}

// MonthOf returns the calendar month containing t, in t's location.
func MonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// Label formats the month as "June 2025".
func (ym YearMonth) Label() string {
	return fmt.Sprintf("%s %d", ym.Month.String(), ym.Year)
}

// AddMonths returns the month n months later (n may be negative).
func (ym YearMonth) AddMonths(n int) YearMonth {
	t := time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return MonthOf(t)
}

// Contains reports whether d falls inside the month.
func (ym YearMonth) Contains(d Date) bool {
	return !d.IsZero() && d.Year() == ym.Year && d.Month() == ym.Month
}

// Before reports whether ym is earlier than o.
func (ym YearMonth) Before(o YearMonth) bool {
	if ym.Year != o.Year {
		return ym.Year < o.Year
	}
	return ym.Month < o.Month
}

// Days returns the number of days in the month.
func (ym YearMonth) Days() int {
	return time.Date(ym.Year, ym.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseYearMonth builds a month from numeric parts, rejecting months outside 1-12.
func ParseYearMonth(year, month int) (YearMonth, error) {
	if month < 1 || month > 12 {
		return YearMonth{}, fmt.Errorf("invalid month: %d", month)
	}
	if year < 1 {
		return YearMonth{}, fmt.Errorf("invalid year: %d", year)
	}
	return YearMonth{Year: year, Month: time.Month(month)}, nil
}
