package core

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"2025-06-01", NewDate(2025, time.June, 1), true},
		{"2025-06-01T23:30:00.000Z", NewDate(2025, time.June, 1), true},
		{"2025-06-01T10:00:00+02:00", NewDate(2025, time.June, 1), true},
		{"2025/06/01", NewDate(2025, time.June, 1), true},
		{"06/01/2025", Date{}, false},
		{"", Date{}, false},
		{"2025-13-01", Date{}, false},
	}
	for i, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok && (err != nil || !got.Equal(tc.want.Time)) {
			t.Fatalf("case %d expected %v, got %v (err=%v)", i, tc.want, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Date:     NewDate(2025, time.January, 1),
		Amount:   decimal.NewNullDecimal(dec("-5")),
		Category: "Food",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Amount: decimal.NewNullDecimal(dec("1"))}, // zero date
		{Date: NewDate(2025, time.January, 1)},     // no amount
		{Date: NewDate(2025, time.January, 1), Amount: decimal.NewNullDecimal(dec("1")), Description: strings.Repeat("x", 201)},
	}
	for i, tr := range bads {
		if err := tr.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionKeyAndPending(t *testing.T) {
	withID := Transaction{ID: "rec123"}
	if withID.Key() != "rec123" || withID.IsPending() {
		t.Fatalf("unexpected key/pending for remote record: %q %v", withID.Key(), withID.IsPending())
	}
	pending := Transaction{ID: TempIDPrefix + "abc"}
	if !pending.IsPending() {
		t.Fatalf("expected temp record to be pending")
	}
	anon := Transaction{Date: NewDate(2025, time.March, 2), Category: "Food"}
	if anon.Key() != "2025-03-02-Food" {
		t.Fatalf("unexpected composite key %q", anon.Key())
	}
}

func TestTransactionApply(t *testing.T) {
	orig := Transaction{
		ID:          "rec1",
		Date:        NewDate(2025, time.June, 1),
		Amount:      decimal.NewNullDecimal(dec("-10")),
		Category:    "Food",
		Description: "lunch",
	}
	amt := dec("-12.5")
	cat := " Dining "
	got := orig.Apply(TransactionPatch{Amount: &amt, Category: &cat})

	if got.ID != "rec1" || !got.Date.Equal(orig.Date.Time) || got.Description != "lunch" {
		t.Fatalf("untouched fields changed: %+v", got)
	}
	if got.Category != "Dining" || !got.Amount.Decimal.Equal(amt) {
		t.Fatalf("patch not applied: %+v", got)
	}
	if !orig.Amount.Decimal.Equal(dec("-10")) || orig.Category != "Food" {
		t.Fatalf("original mutated: %+v", orig)
	}
}

func TestBudgetCategoryValidate(t *testing.T) {
	if err := (BudgetCategory{Name: "Food", Allocated: dec("100")}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (BudgetCategory{Name: " ", Allocated: dec("100")}).Validate(); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if err := (BudgetCategory{Name: "Food", Allocated: dec("-1")}).Validate(); err == nil {
		t.Fatalf("expected error for negative allocation")
	}
}
