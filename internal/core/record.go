package core

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Column names used by the remote tables.
const (
	FieldDate        = "Date"
	FieldAmount      = "Amount"
	FieldCategory    = "Category"
	FieldDescription = "Description"
	FieldName        = "Name"
)

// Record is a row as returned by the remote store: an identifier plus the
// loosely typed column values.
type Record struct {
	ID     string
	Fields map[string]any
}

// TransactionFromRecord maps a remote row to a Transaction. Unparseable dates
// and amounts are left invalid rather than rejected so the record can still
// be listed; aggregation skips it.
func TransactionFromRecord(r Record) Transaction {
	t := Transaction{
		ID:          r.ID,
		Category:    strings.TrimSpace(fieldString(r.Fields, FieldCategory)),
		Description: strings.TrimSpace(fieldString(r.Fields, FieldDescription)),
	}
	if d, err := ParseDate(fieldString(r.Fields, FieldDate)); err == nil {
		t.Date = d
	}
	if amt, ok := ParseAmount(fieldValue(r.Fields, FieldAmount)); ok {
		t.Amount = decimal.NewNullDecimal(amt)
	}
	return t
}

// Fields renders the writable columns of a transaction. Amounts are sent
// as exact JSON numbers.
func (t Transaction) Fields() map[string]any {
	f := map[string]any{
		FieldDate:        t.Date.String(),
		FieldCategory:    t.CategoryName(),
		FieldDescription: t.Description,
	}
	if t.Amount.Valid {
		f[FieldAmount] = json.Number(t.Amount.Decimal.String())
	}
	return f
}

// CategoryFromRecord maps a remote row to a BudgetCategory. A missing or
// unparseable allocation is treated as zero.
func CategoryFromRecord(r Record) BudgetCategory {
	c := BudgetCategory{
		ID:   r.ID,
		Name: strings.TrimSpace(fieldString(r.Fields, FieldName)),
	}
	if c.Name == "" {
		c.Name = strings.TrimSpace(fieldString(r.Fields, FieldCategory))
	}
	if amt, ok := ParseAmount(fieldValue(r.Fields, FieldAmount)); ok {
		c.Allocated = amt
	}
	return c
}

// Fields renders the writable columns of a category.
func (c BudgetCategory) Fields() map[string]any {
	return map[string]any{
		FieldName:   c.Name,
		FieldAmount: json.Number(c.Allocated.String()),
	}
}

// fieldValue looks a column up by its exact name, then by its lower-case form.
func fieldValue(fields map[string]any, name string) any {
	if fields == nil {
		return nil
	}
	if v, ok := fields[name]; ok {
		return v
	}
	return fields[strings.ToLower(name)]
}

func fieldString(fields map[string]any, name string) string {
	switch v := fieldValue(fields, name).(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
