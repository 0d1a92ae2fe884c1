package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"finboard/internal/core"
	"finboard/internal/store"
)

func newTestLoader(rem *fakeRemote) (*Loader, *store.TransactionStore, *store.CategoryStore) {
	txns := store.NewTransactionStore()
	cats := store.NewCategoryStore()
	return NewLoader(rem, txns, cats, LoaderConfig{Timeout: time.Second}, nil), txns, cats
}

func TestLoaderRefresh(t *testing.T) {
	rem := &fakeRemote{
		txns: []core.Record{
			{ID: "rec1", Fields: map[string]any{"Date": "2025-06-01", "Amount": 1000.0}},
			{ID: "rec2", Fields: map[string]any{"Date": "2025-06-05", "Amount": "abc", "Category": "Food"}},
		},
		cats: []core.Record{{ID: "c1", Fields: map[string]any{"Name": "Food", "Amount": 150.0}}},
	}
	l, txns, cats := newTestLoader(rem)

	if err := l.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if txns.Len() != 2 || cats.Len() != 1 {
		t.Fatalf("unexpected store sizes: %d %d", txns.Len(), cats.Len())
	}
	if bad, _ := txns.Get("rec2"); bad.Amount.Valid {
		t.Fatalf("unparseable amount should stay invalid: %+v", bad)
	}
	st := l.Status()
	if !st.Loaded || st.Failed || st.At.IsZero() {
		t.Fatalf("unexpected status: %+v", st)
	}
}

func TestLoaderRefreshFailureKeepsLastGoodData(t *testing.T) {
	rem := &fakeRemote{txns: []core.Record{{ID: "rec1", Fields: map[string]any{"Date": "2025-06-01", "Amount": 5.0}}}}
	l, txns, _ := newTestLoader(rem)
	if err := l.Refresh(context.Background()); err != nil {
		t.Fatalf("first refresh: %v", err)
	}

	rem.mu.Lock()
	rem.listErr = errRemote
	rem.mu.Unlock()

	err := l.Refresh(context.Background())
	if !errors.Is(err, core.ErrFetchFailed) || !errors.Is(err, errRemote) {
		t.Fatalf("expected fetch failure, got %v", err)
	}
	if txns.Len() != 1 {
		t.Fatalf("store should keep last good data, has %d records", txns.Len())
	}
	st := l.Status()
	if !st.Failed || st.Message == "" {
		t.Fatalf("expected failed status with message, got %+v", st)
	}
}

func TestLoader_StartStop(t *testing.T) {
	rem := &fakeRemote{}
	l, _, _ := newTestLoader(rem)
	l.config.Interval = 10 * time.Millisecond

	if l.IsRunning() {
		t.Fatal("loader should not be running initially")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := l.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := l.Start(ctx); err == nil {
		t.Fatal("expected error when starting a running loader")
	}

	deadline := time.Now().Add(time.Second)
	for {
		rem.mu.Lock()
		calls := rem.listCalls
		rem.mu.Unlock()
		if calls >= 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected periodic refreshes, got %d", calls)
		}
		time.Sleep(5 * time.Millisecond)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := l.Stop(stopCtx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if l.IsRunning() {
		t.Fatal("loader should not be running after stop")
	}
}

func TestLoader_StopNotRunning(t *testing.T) {
	l, _, _ := newTestLoader(&fakeRemote{})
	if err := l.Stop(context.Background()); err != nil {
		t.Errorf("Stop should not error when not running: %v", err)
	}
}

func TestDefaultLoaderConfig(t *testing.T) {
	cfg := DefaultLoaderConfig()
	if cfg.Interval != 5*time.Minute || cfg.Timeout != DefaultRemoteTimeout {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}
