// Package worker consumes mutation events and watches the budget.
package worker

import (
	"context"
	"fmt"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/core"
	applog "finboard/internal/log"
)

type refresher interface {
	Refresh(ctx context.Context) error
}

type budgetSource interface {
	Budget(month core.YearMonth) []core.BudgetLine
}

// BudgetWorker reloads the remote tables after each committed mutation and
// logs every category of the affected month that went over budget.
type BudgetWorker struct {
	loader refresher
	budget budgetSource
	logger *applog.Logger
	now    func() time.Time
}

func NewBudgetWorker(loader refresher, budget budgetSource, logger *applog.Logger) *BudgetWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &BudgetWorker{
		loader: loader,
		budget: budget,
		logger: logger.WithComponent(applog.ComponentWorker),
		now:    time.Now,
	}
}

// HandleMutation processes one event. Rolled back mutations changed nothing
// remotely and are acknowledged without work.
func (w *BudgetWorker) HandleMutation(ctx context.Context, evt *amqp.MutationEvent) error {
	if evt.State != amqp.StateCommitted {
		w.logger.DebugContext(ctx, "Skipping mutation event",
			applog.FieldState, evt.State,
			applog.FieldTransactionID, evt.TransactionID)
		return nil
	}

	month := w.CurrentMonth()
	if d, err := core.ParseDate(evt.Date); err == nil {
		month = core.MonthOf(d.Time)
	}

	over, err := w.Check(ctx, month)
	if err != nil {
		return err
	}
	w.logger.InfoContext(ctx, "Processed mutation event",
		applog.FieldOperation, evt.Operation,
		applog.FieldTransactionID, evt.TransactionID,
		applog.FieldMonth, month.Label(),
		"over_budget", len(over))
	return nil
}

// CurrentMonth is the month containing now.
func (w *BudgetWorker) CurrentMonth() core.YearMonth {
	return core.MonthOf(w.now())
}

// Check refreshes the data and returns the over-budget lines of month.
func (w *BudgetWorker) Check(ctx context.Context, month core.YearMonth) ([]core.BudgetLine, error) {
	if err := w.loader.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	over := core.OverBudget(w.budget.Budget(month))
	for _, line := range over {
		w.logger.WarnContext(ctx, "Category over budget",
			applog.FieldMonth, month.Label(),
			applog.FieldCategory, line.Name,
			"allocated", line.Allocated.StringFixed(2),
			"spent", line.Spent.StringFixed(2),
			"percent", line.Percent.StringFixed(2))
	}
	return over, nil
}
