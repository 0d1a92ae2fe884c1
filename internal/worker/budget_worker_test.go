package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/amqp"
	"finboard/internal/core"
)

type fakeLoader struct {
	calls int
	err   error
}

func (f *fakeLoader) Refresh(context.Context) error {
	f.calls++
	return f.err
}

type fakeBudget struct {
	months []core.YearMonth
	lines  []core.BudgetLine
}

func (f *fakeBudget) Budget(m core.YearMonth) []core.BudgetLine {
	f.months = append(f.months, m)
	return f.lines
}

func TestHandleMutation_CommittedChecksEventMonth(t *testing.T) {
	loader := &fakeLoader{}
	budget := &fakeBudget{lines: []core.BudgetLine{
		{Name: "Food", Allocated: decimal.NewFromInt(100), Spent: decimal.NewFromInt(150), OverBudget: true},
		{Name: "Rent", Allocated: decimal.NewFromInt(1000), Spent: decimal.NewFromInt(900)},
	}}
	w := NewBudgetWorker(loader, budget, nil)

	evt := amqp.NewMutationEvent("add", amqp.StateCommitted, "rec1")
	evt.Date = "2025-03-14"
	if err := w.HandleMutation(context.Background(), evt); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if loader.calls != 1 {
		t.Fatalf("expected one refresh, got %d", loader.calls)
	}
	if len(budget.months) != 1 || budget.months[0] != (core.YearMonth{Year: 2025, Month: time.March}) {
		t.Fatalf("unexpected months checked: %v", budget.months)
	}
}

func TestHandleMutation_RolledBackIsIgnored(t *testing.T) {
	loader := &fakeLoader{}
	w := NewBudgetWorker(loader, &fakeBudget{}, nil)

	if err := w.HandleMutation(context.Background(), amqp.NewMutationEvent("edit", amqp.StateRolledBack, "rec1")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if loader.calls != 0 {
		t.Fatalf("rolled back event should not refresh")
	}
}

func TestHandleMutation_RefreshErrorRequeues(t *testing.T) {
	w := NewBudgetWorker(&fakeLoader{err: errors.New("down")}, &fakeBudget{}, nil)
	if err := w.HandleMutation(context.Background(), amqp.NewMutationEvent("add", amqp.StateCommitted, "rec1")); err == nil {
		t.Fatal("expected error so the message is requeued")
	}
}

func TestCheck_ReturnsOverBudgetLines(t *testing.T) {
	budget := &fakeBudget{lines: []core.BudgetLine{
		{Name: "Food", OverBudget: true},
		{Name: "Rent"},
		{Name: "Fun", OverBudget: true},
	}}
	w := NewBudgetWorker(&fakeLoader{}, budget, nil)
	w.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

	over, err := w.Check(context.Background(), core.YearMonth{Year: 2025, Month: time.June})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(over) != 2 || over[0].Name != "Food" || over[1].Name != "Fun" {
		t.Fatalf("unexpected over-budget lines: %+v", over)
	}
}
