package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	applog "finboard/internal/log"
	"finboard/internal/middleware/trace"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady reports ready once the first load has been attempted. A failed
// load still counts: the dashboard then serves last known data with a flag.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	code := http.StatusOK

	fetch := s.loader.Status()
	checks := map[string]any{
		"loaded":       fetch.Loaded,
		"fetch_failed": fetch.Failed,
		"transactions": s.transactions.Len(),
		"categories":   s.categories.Len(),
	}
	if !fetch.Loaded {
		status = "not_ready"
		code = http.StatusServiceUnavailable
	}

	NewJSONResponse().Status(code).Body(map[string]any{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics exposes counters in a Prometheus-like text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.traceMiddleware.GetMetrics()

	var b strings.Builder
	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_server_errors_total", "counter", "Requests answered with a 5xx status", traceMetrics.FailedRequests)
	metric("rate_limit_rejections_total", "counter", "Requests refused by the rate limiter", s.rateLimiter.Rejected())
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", s.rateLimiter.ActiveClients())
	metric("suspicious_requests_total", "counter", "Requests blocked as probes", s.securityDetector.Blocked())
	metric("dashboard_cache_entries", "gauge", "Cached dashboard read models", s.dashboard.Cache().Size())
	metric("transactions_loaded", "gauge", "Transactions held in memory", s.transactions.Len())
	metric("categories_loaded", "gauge", "Budget categories held in memory", s.categories.Len())
	metric("uptime_seconds", "gauge", "Application uptime in seconds", int64(time.Since(s.started).Seconds()))

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(b.String()))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	month, err := ParseMonthParams(r.URL.Query(), s.now())
	if err != nil {
		ErrorResponse(r, http.StatusBadRequest, err.Error()).Write(w)
		return
	}
	NewJSONResponse().Body(toDashboard(month, s.dashboard.ForMonth(month))).Write(w)
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	month, err := ParseMonthParams(r.URL.Query(), s.now())
	if err != nil {
		ErrorResponse(r, http.StatusBadRequest, err.Error()).Write(w)
		return
	}
	NewJSONResponse().Body(map[string]any{
		"month": toMonth(month),
		"lines": toBudget(s.dashboard.Budget(month)),
	}).Write(w)
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	month, err := ParseMonthParams(r.URL.Query(), s.now())
	if err != nil {
		ErrorResponse(r, http.StatusBadRequest, err.Error()).Write(w)
		return
	}
	NewJSONResponse().Body(map[string]any{
		"month":  toMonth(month),
		"points": toDaily(s.dashboard.Daily(month)),
	}).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(toCategories(s.categories.Snapshot())).Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	page := s.transactions.Page(ParsePage(r.URL.Query()), s.pageSize)
	NewJSONResponse().Body(toPage(page)).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		errorFor(r, err).Write(w)
		return
	}
	t, err := parseNewTransaction(p, s.now())
	if err != nil {
		errorFor(r, err).Write(w)
		return
	}

	created, err := s.mutations.Add(r.Context(), t)
	if err != nil {
		s.logMutationError(r, applog.OpAdd, "", err)
		errorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+created.ID).
		Body(toTransaction(created)).
		Write(w)
}

func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		errorFor(r, err).Write(w)
		return
	}
	patch, err := parsePatch(p)
	if err != nil {
		errorFor(r, err).Write(w)
		return
	}

	updated, err := s.mutations.Edit(r.Context(), id, patch)
	if err != nil {
		s.logMutationError(r, applog.OpEdit, id, err)
		errorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(toTransaction(updated)).Write(w)
}

// handleRefresh reloads both lists. A failed fetch is reported but the
// stores keep serving the previous data.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.loader.Refresh(r.Context()); err != nil {
		s.logger.WarnContext(r.Context(), "Refresh failed", applog.FieldError, err)
		errorFor(r, err).Write(w)
		return
	}
	NewJSONResponse().Body(map[string]any{
		"status":       toStatus(s.loader.Status()),
		"transactions": s.transactions.Len(),
		"categories":   s.categories.Len(),
	}).Write(w)
}

func (s *Server) logMutationError(r *http.Request, op, id string, err error) {
	if statusFor(err) < http.StatusInternalServerError {
		return
	}
	s.logger.ErrorContext(r.Context(), "Mutation failed",
		applog.FieldOperation, op,
		applog.FieldTransactionID, id,
		applog.FieldRequestID, trace.GetRequestID(r.Context()),
		applog.FieldError, err)
}
