package services

import (
	"fmt"
	"time"

	"finboard/internal/cache"
	"finboard/internal/core"
	"finboard/internal/store"
)

const (
	dashboardCacheSize = 64
	dashboardCacheTTL  = 5 * time.Minute
	// months offered for the daily comparison chart
	comparisonMonths = 6
)

// Dashboard is the read model behind the dashboard page.
type Dashboard struct {
	Aggregate     core.AggregateResult
	Budget        []core.BudgetLine
	Daily         []core.DailyPoint
	CompareMonths []core.YearMonth
	Categories    []string
	Status        FetchStatus
}

type statusSource interface {
	Status() FetchStatus
}

// DashboardService computes read models from the stores. Results are cached
// per store version so repeated reads between writes are free.
type DashboardService struct {
	txns         *store.TransactionStore
	cats         *store.CategoryStore
	status       statusSource
	windowMonths int
	cache        *cache.LRUCache[Dashboard]
	now          func() time.Time
}

func NewDashboardService(txns *store.TransactionStore, cats *store.CategoryStore, status statusSource, windowMonths int) *DashboardService {
	if windowMonths <= 0 {
		windowMonths = core.DefaultWindowMonths
	}
	return &DashboardService{
		txns:         txns,
		cats:         cats,
		status:       status,
		windowMonths: windowMonths,
		cache:        cache.NewLRUCache[Dashboard](dashboardCacheSize, dashboardCacheTTL),
		now:          time.Now,
	}
}

// Cache exposes the read-model cache so it can be registered for cleanup.
func (s *DashboardService) Cache() *cache.LRUCache[Dashboard] {
	return s.cache
}

// Current builds the dashboard for the month containing now.
func (s *DashboardService) Current() Dashboard {
	return s.ForMonth(core.MonthOf(s.now()))
}

// ForMonth builds the dashboard with month as the reference month.
func (s *DashboardService) ForMonth(month core.YearMonth) Dashboard {
	txns, tv := s.txns.SnapshotVersion()
	cats, cv := s.cats.SnapshotVersion()
	key := fmt.Sprintf("%d:%d:%04d-%02d", tv, cv, month.Year, month.Month)
	d, ok := s.cache.Get(key)
	if !ok {
		d = s.build(txns, cats, month)
		s.cache.Set(key, d)
	}
	if s.status != nil {
		d.Status = s.status.Status()
	}
	return d
}

// Budget returns the budget usage lines for month.
func (s *DashboardService) Budget(month core.YearMonth) []core.BudgetLine {
	return s.ForMonth(month).Budget
}

func (s *DashboardService) build(txns []core.Transaction, cats []core.BudgetCategory, month core.YearMonth) Dashboard {
	ref := time.Date(month.Year, month.Month, 1, 0, 0, 0, 0, time.UTC)

	agg := core.Aggregate(txns, ref, s.windowMonths)
	return Dashboard{
		Aggregate:     agg,
		Budget:        core.BudgetUsage(cats, agg.Breakdown(month)),
		Daily:         core.CumulativeDailyExpenses(txns, month),
		CompareMonths: core.MonthOptions(ref, comparisonMonths),
		Categories:    core.CategoryNames(cats),
	}
}

// Daily returns the cumulative expense series for month.
func (s *DashboardService) Daily(month core.YearMonth) []core.DailyPoint {
	return core.CumulativeDailyExpenses(s.txns.Snapshot(), month)
}
