package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"finboard/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "finboard.db"), nil)
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository_CreateListUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	empty, err := repo.Empty(ctx)
	if err != nil || !empty {
		t.Fatalf("expected empty repo, got %v err=%v", empty, err)
	}

	rec, err := repo.CreateTransaction(ctx, map[string]any{
		core.FieldDate:     "2025-06-05",
		core.FieldAmount:   -200.1,
		core.FieldCategory: "Food",
	})
	if err != nil || rec.ID == "" {
		t.Fatalf("create: rec=%+v err=%v", rec, err)
	}
	if _, err := repo.CreateTransaction(ctx, map[string]any{core.FieldDate: "bad", core.FieldAmount: "abc"}); err != nil {
		t.Fatalf("create with bad data should still store the row: %v", err)
	}

	list, err := repo.ListTransactions(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("list: %+v err=%v", list, err)
	}
	first := core.TransactionFromRecord(list[0])
	if !first.Amount.Decimal.Equal(decimal.RequireFromString("-200.1")) || first.Category != "Food" {
		t.Fatalf("unexpected first transaction: %+v", first)
	}
	if second := core.TransactionFromRecord(list[1]); second.Valid() {
		t.Fatalf("bad row should map to an invalid transaction: %+v", second)
	}

	upd, err := repo.UpdateTransaction(ctx, rec.ID, map[string]any{core.FieldDescription: "groceries"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	got := core.TransactionFromRecord(upd)
	if got.Description != "groceries" || got.Category != "Food" || got.Date.String() != "2025-06-05" {
		t.Fatalf("update did not merge: %+v", got)
	}
}

func TestSQLiteRepository_UpdateMissing(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.UpdateTransaction(context.Background(), "nope", map[string]any{})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteRepository_Categories(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i, c := range []core.BudgetCategory{
		{Name: "Rent", Allocated: decimal.RequireFromString("1000")},
		{Name: "Food", Allocated: decimal.RequireFromString("150.50")},
	} {
		if err := repo.SaveCategory(ctx, c, i); err != nil {
			t.Fatalf("save %s: %v", c.Name, err)
		}
	}
	if err := repo.SaveCategory(ctx, core.BudgetCategory{Name: "Rent", Allocated: decimal.RequireFromString("1100")}, 0); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.SaveCategory(ctx, core.BudgetCategory{Name: ""}, 3); err == nil {
		t.Fatal("expected validation error")
	}

	recs, err := repo.ListCategories(ctx)
	if err != nil || len(recs) != 2 {
		t.Fatalf("list categories: %+v err=%v", recs, err)
	}
	rent := core.CategoryFromRecord(recs[0])
	if rent.Name != "Rent" || !rent.Allocated.Equal(decimal.RequireFromString("1100")) {
		t.Fatalf("unexpected first category: %+v", rent)
	}
	if food := core.CategoryFromRecord(recs[1]); food.Name != "Food" {
		t.Fatalf("unexpected second category: %+v", food)
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	repo := newTestRepo(t)
	if err := RunMigrations(repo.db); err != nil {
		t.Fatalf("second migration run: %v", err)
	}
}
