package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultCategory is used for transactions without a category label.
	DefaultCategory = "Other"
	// IncomeCategory is the reserved category name excluded from budget comparisons.
	IncomeCategory = "Income"
	// TempIDPrefix marks identifiers of records that are not persisted remotely yet.
	TempIDPrefix = "tmp_"

	maxDescriptionLen = 200
)

type (
	Date struct {
		time.Time
	}

	Transaction struct {
		ID          string // remote ID, or TempIDPrefix + suffix while an add is pending
		Date        Date
		Amount      decimal.NullDecimal // positive = income, negative = expense
		Category    string
		Description string
	}

	BudgetCategory struct {
		ID        string
		Name      string
		Allocated decimal.Decimal
	}

	// TransactionPatch holds the edited fields of a transaction.
	// Nil fields are left untouched.
	TransactionPatch struct {
		Date        *Date
		Amount      *decimal.Decimal
		Category    *string
		Description *string
	}
)

var (
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrEmptyCategory     = errors.New("empty category")
	ErrEmptyName         = errors.New("empty category name")
	ErrNegativeAllocated = errors.New("allocated amount must not be negative")
	ErrDescriptionLength = errors.New("description too long (max 200 characters)")

	ErrNotFound         = errors.New("not found")
	ErrFetchFailed      = errors.New("fetch failed")
	ErrMutationFailed   = errors.New("mutation failed")
	ErrMutationInFlight = errors.New("mutation already in flight")
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z",
	"2006/01/02",
}

// NewDate creates a new Date from year, month, day
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts plain calendar dates as well as the ISO timestamps some
// tabular APIs return for date columns. Only the calendar part is kept.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t.Year(), t.Month(), t.Day()), nil
		}
	}
	return Date{}, ErrInvalidDate
}

// String formats the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Valid reports whether the transaction can take part in aggregation.
func (t Transaction) Valid() bool {
	return !t.Date.IsZero() && t.Amount.Valid
}

// CategoryName returns the trimmed category, or DefaultCategory when empty.
func (t Transaction) CategoryName() string {
	c := strings.TrimSpace(t.Category)
	if c == "" {
		return DefaultCategory
	}
	return c
}

// IsPending reports whether the record is a local add awaiting persistence.
func (t Transaction) IsPending() bool {
	return strings.HasPrefix(t.ID, TempIDPrefix)
}

// Key identifies the record within a store. Records without any identifier
// fall back to date and category.
func (t Transaction) Key() string {
	if t.ID != "" {
		return t.ID
	}
	return t.Date.String() + "-" + t.Category
}

// Apply returns a copy of t with the patch fields applied.
func (t Transaction) Apply(p TransactionPatch) Transaction {
	out := t
	if p.Date != nil {
		out.Date = *p.Date
	}
	if p.Amount != nil {
		out.Amount = decimal.NewNullDecimal(*p.Amount)
	}
	if p.Category != nil {
		out.Category = strings.TrimSpace(*p.Category)
	}
	if p.Description != nil {
		out.Description = strings.TrimSpace(*p.Description)
	}
	return out
}

// Validate checks a transaction about to be written to the remote store.
func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Amount.Valid {
		return ErrInvalidAmount
	}
	if len(t.Description) > maxDescriptionLen {
		return ErrDescriptionLength
	}
	return nil
}

// Equal compares every field, including the exact decimal amount.
func (t Transaction) Equal(o Transaction) bool {
	if t.ID != o.ID || !t.Date.Equal(o.Date.Time) || t.Category != o.Category || t.Description != o.Description {
		return false
	}
	if t.Amount.Valid != o.Amount.Valid {
		return false
	}
	return !t.Amount.Valid || t.Amount.Decimal.Equal(o.Amount.Decimal)
}

func (c BudgetCategory) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.Allocated.IsNegative() {
		return ErrNegativeAllocated
	}
	return nil
}
