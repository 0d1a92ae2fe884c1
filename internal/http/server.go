package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"finboard/internal/core"
	applog "finboard/internal/log"
	"finboard/internal/middleware/ratelimit"
	"finboard/internal/middleware/security"
	"finboard/internal/middleware/trace"
	"finboard/internal/services"
	"finboard/internal/store"
)

// mutator is the optimistic write path used by the transaction handlers.
type mutator interface {
	Add(ctx context.Context, t core.Transaction) (core.Transaction, error)
	Edit(ctx context.Context, id string, p core.TransactionPatch) (core.Transaction, error)
}

// loader reloads the stores and reports the latest fetch outcome.
type loader interface {
	Refresh(ctx context.Context) error
	Status() services.FetchStatus
}

// Deps are the collaborators the server is built from.
type Deps struct {
	Mutations    mutator
	Loader       loader
	Dashboard    *services.DashboardService
	Transactions *store.TransactionStore
	Categories   *store.CategoryStore
	PageSize     int
	RateLimit    ratelimit.Config
	Logger       *applog.Logger
}

// Server is the JSON API server.
type Server struct {
	http.Server

	mutations    mutator
	loader       loader
	dashboard    *services.DashboardService
	transactions *store.TransactionStore
	categories   *store.CategoryStore
	pageSize     int
	logger       *applog.Logger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	started      time.Time
	now          func() time.Time
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	pageSize := deps.PageSize
	if pageSize <= 0 {
		pageSize = store.DefaultPageSize
	}

	s := &Server{
		mutations:    deps.Mutations,
		loader:       deps.Loader,
		dashboard:    deps.Dashboard,
		transactions: deps.Transactions,
		categories:   deps.Categories,
		pageSize:     pageSize,
		logger:       logger,
		rateLimiter:  ratelimit.NewLimiter(deps.RateLimit),
		started:      time.Now(),
		now:          time.Now,
	}
	s.securityDetector = security.NewDetector(logger)
	s.traceMiddleware = trace.NewMiddleware(s.securityDetector.ClientIP, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.Handle("GET /api/dashboard", s.api(s.handleDashboard))
	mux.Handle("GET /api/budget", s.api(s.handleBudget))
	mux.Handle("GET /api/daily", s.api(s.handleDaily))
	mux.Handle("GET /api/categories", s.api(s.handleCategories))
	mux.Handle("GET /api/transactions", s.api(s.handleListTransactions))
	mux.Handle("POST /api/transactions", s.api(s.handleCreateTransaction))
	mux.Handle("PATCH /api/transactions/{id}", s.api(s.handleEditTransaction))
	mux.Handle("POST /api/refresh", s.api(s.handleRefresh))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var h http.Handler = mux
	h = headers.Middleware(h)
	h = s.securityDetector.Middleware(h)
	h = s.traceMiddleware.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// api applies per-client rate limiting to an API handler.
func (s *Server) api(h http.HandlerFunc) http.Handler {
	onLimit := func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(r, http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
	}
	return s.rateLimiter.Middleware(s.securityDetector.ClientIP, onLimit)(h)
}

// Shutdown stops background goroutines and drains the HTTP server.
// Safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
