package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/core"
)

func tx(id string, day int, amount string) core.Transaction {
	return core.Transaction{
		ID:       id,
		Date:     core.NewDate(2025, time.June, day),
		Amount:   decimal.NewNullDecimal(decimal.RequireFromString(amount)),
		Category: "Food",
	}
}

func TestTransactionStore_PrependSwapRemove(t *testing.T) {
	s := NewTransactionStore(tx("rec1", 1, "-1"), tx("rec2", 2, "-2"))
	v0 := s.Version()

	s.Prepend(tx("tmp_a", 3, "-3"))
	require.Equal(t, 3, s.Len())
	assert.Equal(t, "tmp_a", s.Snapshot()[0].ID)

	ok := s.Swap("tmp_a", tx("rec3", 3, "-3"))
	require.True(t, ok)
	assert.Equal(t, "rec3", s.Snapshot()[0].ID)
	_, found := s.Get("tmp_a")
	assert.False(t, found)

	assert.False(t, s.Swap("missing", tx("x", 1, "1")))
	assert.True(t, s.Remove("rec2"))
	assert.False(t, s.Remove("rec2"))
	assert.Equal(t, []string{"rec3", "rec1"}, ids(s.Snapshot()))
	assert.Greater(t, s.Version(), v0)
}

func TestTransactionStore_SnapshotIsCopy(t *testing.T) {
	s := NewTransactionStore(tx("rec1", 1, "-1"))
	snap := s.Snapshot()
	snap[0].Category = "changed"

	got, _ := s.Get("rec1")
	assert.Equal(t, "Food", got.Category)
}

func TestTransactionStore_ReplaceKeepsPending(t *testing.T) {
	s := NewTransactionStore(tx("rec1", 1, "-1"))
	s.Prepend(tx(core.TempIDPrefix+"x", 5, "-5"))

	s.Replace([]core.Transaction{tx("rec7", 7, "-7"), tx("rec8", 8, "-8")})

	assert.Equal(t, []string{core.TempIDPrefix + "x", "rec7", "rec8"}, ids(s.Snapshot()))
}

func TestTransactionStore_Commit(t *testing.T) {
	pending := core.TempIDPrefix + "x"

	t.Run("swaps in place", func(t *testing.T) {
		s := NewTransactionStore(tx("rec1", 1, "-1"))
		s.Prepend(tx(pending, 5, "-5"))

		s.Commit(pending, tx("rec5", 5, "-5"))

		assert.Equal(t, []string{"rec5", "rec1"}, ids(s.Snapshot()))
	})

	t.Run("refresh already loaded the record", func(t *testing.T) {
		s := NewTransactionStore(tx("rec1", 1, "-1"))
		s.Prepend(tx(pending, 5, "-5"))
		s.Replace([]core.Transaction{tx("rec1", 1, "-1"), tx("rec5", 5, "-5")})

		s.Commit(pending, tx("rec5", 5, "-5"))

		assert.Equal(t, []string{"rec1", "rec5"}, ids(s.Snapshot()))
	})

	t.Run("pending record gone", func(t *testing.T) {
		s := NewTransactionStore(tx("rec1", 1, "-1"))

		s.Commit(pending, tx("rec5", 5, "-5"))

		assert.Equal(t, []string{"rec5", "rec1"}, ids(s.Snapshot()))
	})
}

func TestSnapshotVersion(t *testing.T) {
	s := NewTransactionStore(tx("rec1", 1, "-1"))
	s.Prepend(tx("rec2", 2, "-2"))

	items, v := s.SnapshotVersion()
	assert.Len(t, items, 2)
	assert.Equal(t, s.Version(), v)

	cats := NewCategoryStore()
	cats.Replace([]core.BudgetCategory{{Name: "Food"}})
	list, cv := cats.SnapshotVersion()
	assert.Len(t, list, 1)
	assert.Equal(t, uint64(1), cv)
}

func TestTransactionStore_Page(t *testing.T) {
	var items []core.Transaction
	for i := 1; i <= 25; i++ {
		items = append(items, tx(fmt.Sprintf("rec%02d", i), i, "-1"))
	}
	items = append(items, core.Transaction{ID: "nodate"})
	s := NewTransactionStore(items...)

	first := s.Page(1, 20)
	assert.Equal(t, 2, first.TotalPages)
	assert.Equal(t, 26, first.Total)
	require.Len(t, first.Items, 20)
	assert.Equal(t, "rec25", first.Items[0].ID)
	assert.Equal(t, "rec06", first.Items[19].ID)

	last := s.Page(99, 20)
	assert.Equal(t, 2, last.Page)
	require.Len(t, last.Items, 6)
	assert.Equal(t, "nodate", last.Items[5].ID)

	assert.Equal(t, 1, s.Page(0, 20).Page)
	assert.Equal(t, DefaultPageSize, s.Page(1, 0).PageSize)
}

func TestTransactionStore_PageEmpty(t *testing.T) {
	p := NewTransactionStore().Page(3, 20)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 0, p.TotalPages)
	assert.Empty(t, p.Items)
}

func TestCategoryStore(t *testing.T) {
	s := NewCategoryStore()
	s.Replace([]core.BudgetCategory{{Name: "Food"}, {Name: "Rent"}})

	assert.Equal(t, []string{"Food", "Rent"}, s.Names())
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, uint64(1), s.Version())
}

func ids(items []core.Transaction) []string {
	out := make([]string, len(items))
	for i, t := range items {
		out[i] = t.ID
	}
	return out
}
