package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"finboard/internal/core"
	applog "finboard/internal/log"
	"finboard/internal/remote"
	"finboard/internal/store"
)

// FetchStatus describes the outcome of the latest load.
type FetchStatus struct {
	Loaded  bool      // at least one load has been attempted
	Failed  bool      // the latest load failed; stores hold older data
	Message string    // human readable reason when Failed
	At      time.Time // when the latest load finished
}

// LoaderConfig holds configuration for the loader
type LoaderConfig struct {
	// Interval between background refreshes. Zero disables the loop.
	Interval time.Duration
	// Timeout bounds each fetch.
	Timeout time.Duration
}

// DefaultLoaderConfig returns sensible defaults
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		Interval: 5 * time.Minute,
		Timeout:  DefaultRemoteTimeout,
	}
}

type sourceReader interface {
	remote.TransactionReader
	remote.CategoryReader
}

// Loader fills the stores from the remote backend.
type Loader struct {
	src    sourceReader
	txns   *store.TransactionStore
	cats   *store.CategoryStore
	config LoaderConfig
	logger *applog.Logger
	group  singleflight.Group
	now    func() time.Time

	statusMu sync.RWMutex
	status   FetchStatus

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewLoader(src sourceReader, txns *store.TransactionStore, cats *store.CategoryStore, config LoaderConfig, logger *applog.Logger) *Loader {
	if logger == nil {
		logger = applog.Discard()
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultRemoteTimeout
	}
	return &Loader{
		src:    src,
		txns:   txns,
		cats:   cats,
		config: config,
		logger: logger.WithComponent(applog.ComponentLoader),
		now:    time.Now,
	}
}

// Refresh fetches both tables concurrently and replaces the stores only when
// both reads succeed. Concurrent callers share one fetch.
func (l *Loader) Refresh(ctx context.Context) error {
	_, err, _ := l.group.Do("refresh", func() (any, error) {
		return nil, l.load(ctx)
	})
	return err
}

func (l *Loader) load(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, l.config.Timeout)
	defer cancel()

	var txRecs, catRecs []core.Record
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txRecs, err = l.src.ListTransactions(gctx)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		catRecs, err = l.src.ListCategories(gctx)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		l.setStatus(FetchStatus{Loaded: true, Failed: true, Message: err.Error(), At: l.now()})
		l.logger.ErrorContext(ctx, "refresh failed", applog.FieldOperation, applog.OpRefresh, applog.FieldError, err)
		return fmt.Errorf("%w: %w", core.ErrFetchFailed, err)
	}

	txns := make([]core.Transaction, 0, len(txRecs))
	for _, r := range txRecs {
		txns = append(txns, core.TransactionFromRecord(r))
	}
	cats := make([]core.BudgetCategory, 0, len(catRecs))
	for _, r := range catRecs {
		cats = append(cats, core.CategoryFromRecord(r))
	}
	l.txns.Replace(txns)
	l.cats.Replace(cats)
	l.setStatus(FetchStatus{Loaded: true, At: l.now()})

	l.logger.InfoContext(ctx, "refreshed",
		applog.FieldOperation, applog.OpRefresh,
		"transactions", len(txns),
		"categories", len(cats))
	return nil
}

func (l *Loader) Status() FetchStatus {
	l.statusMu.RLock()
	defer l.statusMu.RUnlock()
	return l.status
}

func (l *Loader) setStatus(s FetchStatus) {
	l.statusMu.Lock()
	l.status = s
	l.statusMu.Unlock()
}

// Start loads once and then refreshes every Interval. Returns an error if
// already running.
func (l *Loader) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return fmt.Errorf("loader is already running")
	}
	l.running = true
	l.stopCh = make(chan struct{})
	l.doneCh = make(chan struct{})
	l.mu.Unlock()

	go l.runLoop(ctx)

	l.logger.InfoContext(ctx, "Loader started", "interval", l.config.Interval)
	return nil
}

// Stop signals the loop and waits for it to finish or ctx to expire.
func (l *Loader) Stop(ctx context.Context) error {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return nil
	}
	stopCh, doneCh := l.stopCh, l.doneCh
	l.running = false
	l.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		l.logger.InfoContext(ctx, "Loader stopped gracefully")
		return nil
	case <-ctx.Done():
		l.logger.WarnContext(ctx, "Loader stop timed out")
		return ctx.Err()
	}
}

func (l *Loader) IsRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

func (l *Loader) runLoop(ctx context.Context) {
	defer close(l.doneCh)

	// errors are recorded in the status
	_ = l.Refresh(ctx)

	if l.config.Interval <= 0 {
		select {
		case <-l.stopCh:
		case <-ctx.Done():
		}
		return
	}

	ticker := time.NewTicker(l.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = l.Refresh(ctx)
		}
	}
}
