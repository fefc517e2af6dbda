// Package http serves the JSON API over the services of internal/services.
package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/services"
	"budget/internal/storage"
)

// Deps are the services the API is built on.
type Deps struct {
	Users     *services.Service[core.User]
	Bills     *services.Service[core.Bill]
	Expenses  *services.ExpenseService
	Incomes   *services.Service[core.Income]
	Months    *services.Service[core.Month]
	Pokemon   *services.PokemonService
	Dashboard *services.DashboardService

	// Ready backs /readyz. Nil means always ready.
	Ready func(ctx context.Context) error
}

// NewDeps wires the services over repo.
func NewDeps(repo *storage.SQLiteRepository, expenses *services.ExpenseService, pokemon *services.PokemonService) Deps {
	return Deps{
		Users:     services.NewService(repo.Users),
		Bills:     services.NewService(repo.Bills),
		Expenses:  expenses,
		Incomes:   services.NewService(repo.Incomes),
		Months:    services.NewService(repo.Months),
		Pokemon:   pokemon,
		Dashboard: services.NewDashboardService(repo.Queries),
		Ready:     repo.Ping,
	}
}

// Options tune the server.
type Options struct {
	RateLimit    int // requests per client per minute, 0 disables
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Server struct {
	http.Server

	deps        Deps
	logger      *log.Logger
	rateLimiter *rateLimiter
	metrics     *securityMetrics
	now         func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps, opts Options, logger *log.Logger) (*Server, error) {
	logger = logger.WithComponent(log.ComponentHTTP)
	s := &Server{
		deps:        deps,
		logger:      logger,
		rateLimiter: newRateLimiter(opts.RateLimit),
		metrics:     &securityMetrics{},
		now:         time.Now,
	}

	mux, err := s.routes()
	if err != nil {
		s.rateLimiter.stop()
		return nil, err
	}

	var handler http.Handler = mux
	handler = s.withSecurity(handler)
	handler = log.AccessLog(handler)
	handler = log.RequestIDMiddleware(handler)
	handler = log.Middleware(logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      opts.WriteTimeout,
	}
	return s, nil
}

func (s *Server) routes() (*http.ServeMux, error) {
	d := s.deps
	if d.Users == nil || d.Bills == nil || d.Expenses == nil || d.Incomes == nil ||
		d.Months == nil || d.Pokemon == nil || d.Dashboard == nil {
		return nil, errors.New("http: incomplete service dependencies")
	}

	registry := storage.DefaultRegistry()
	tables := make(map[string]storage.Table)
	for _, alias := range []string{"user", "bill", "expense", "income", "month", "pokemon"} {
		t, err := registry.Table(alias)
		if err != nil {
			return nil, err
		}
		tables[alias] = t
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mountResource(mux, "users", tables["user"], d.Users)
	mountResource(mux, "bills", tables["bill"], d.Bills)
	mountResource(mux, "expenses", tables["expense"], d.Expenses.Service)
	mountResource(mux, "incomes", tables["income"], d.Incomes)
	mountResource(mux, "months", tables["month"], d.Months)
	mountResource(mux, "pokemon", tables["pokemon"], d.Pokemon.Service)

	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("GET /api/expenses/{id}/months", s.handleExpenseSchedule)
	mux.HandleFunc("GET /api/pokemon/order/{order}", s.handlePokemonByOrder)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/dashboard/charts", s.handleDashboardCharts)
	return mux, nil
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
		s.logger.Info("HTTP server stopped",
			"rate_limit_hits", atomic.LoadInt64(&s.metrics.rateLimitHits),
			"suspicious_requests", atomic.LoadInt64(&s.metrics.suspiciousRequests))
	})
	return shutdownErr
}
