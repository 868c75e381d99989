// Package http exposes the JSON API: registration, login, and the expense
// endpoints, guarded by Bearer-token auth and per-IP rate limiting.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"divvy/internal/auth"
	"divvy/internal/cache"
	"divvy/internal/core"
	"divvy/internal/middleware/ratelimit"
	"divvy/internal/middleware/trace"
	"divvy/internal/services"
)

// ExpenseAPI is the slice of the expense service the handlers need.
type ExpenseAPI interface {
	CreateExpense(ctx context.Context, in services.CreateExpenseInput) (*core.Expense, error)
	GetUserExpenses(ctx context.Context, email string) ([]core.UserExpenseRow, error)
	ListAllExpenses(ctx context.Context, page, pageSize int) ([]core.Expense, error)
	BalanceSheetCSV(ctx context.Context, email string) (string, error)
}

type Server struct {
	http.Server
	authenticator *auth.PasswordAuthenticator
	jwt           *auth.JWTManager
	expenses      ExpenseAPI
	limiter       *ratelimit.Limiter

	// listingCache keeps recent allExpense pages; purged on every create.
	listingCache     *cache.LRUCache[[]core.Expense]
	defaultPageSize  int
	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, authenticator *auth.PasswordAuthenticator, jwt *auth.JWTManager, expenses ExpenseAPI, defaultPageSize int) *Server {
	if defaultPageSize <= 0 {
		defaultPageSize = 10
	}
	s := &Server{
		authenticator:    authenticator,
		jwt:              jwt,
		expenses:         expenses,
		limiter:          ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		listingCache:     cache.NewLRUCache[[]core.Expense](100, 30*time.Second),
		defaultPageSize:  defaultPageSize,
		stopCacheCleanup: make(chan struct{}),
	}
	go s.startCacheCleanup()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	// Registration and login are the unauthenticated surface; rate limit them.
	limited := s.limiter.Middleware(clientIP, nil)
	mux.Handle("/api/auth/register", limited(http.HandlerFunc(s.handleRegister)))
	mux.Handle("/api/auth/login", limited(http.HandlerFunc(s.handleLogin)))
	mux.HandleFunc("/api/auth/logout", s.requireAuth(s.handleLogout))
	mux.HandleFunc("/api/auth/check-auth", s.requireAuth(s.handleCheckAuth))

	mux.HandleFunc("/api/expense/create", s.requireAuth(s.handleCreateExpense))
	mux.HandleFunc("/api/expense/userExpense", s.requireAuth(s.handleUserExpenses))
	mux.HandleFunc("/api/expense/allExpense", s.requireAuth(s.handleAllExpenses))
	mux.HandleFunc("/api/expense/user/balance-sheet", s.requireAuth(s.handleBalanceSheet))

	traced := trace.NewMiddleware(clientIP)
	s.Server = http.Server{
		Addr:    addr,
		Handler: traced.Middleware(mux),
	}

	return s
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.listingCache.CleanExpired(); cleaned > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops the server and its background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
