package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/cashledger/internal/adapter/http/handler"
	"github.com/iho/cashledger/internal/adapter/http/middleware"
	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/infrastructure/metrics"
	"github.com/iho/cashledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	TransactionHandler *handler.TransactionHandler
	VaultHandler       *handler.VaultHandler
	CompanyHandler     *handler.CompanyHandler
	ImportHandler      *handler.ImportHandler
	AuthHandler        *handler.AuthHandler
	HealthHandler      *handler.HealthHandler

	// Identity puts the acting user in the request context. With token
	// auth it is middleware.AuthMiddleware, otherwise StaticIdentity.
	Identity func(http.Handler) http.Handler
	// AuthRequired rejects anonymous reads too.
	AuthRequired bool

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	Metrics          *metrics.Metrics
	MetricsHandler   http.Handler
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Identity != nil {
			r.Use(cfg.Identity)
		}
		if cfg.AuthRequired {
			r.Use(middleware.RequireRole(domain.RoleViewer))
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotency := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
			r.Use(idempotency.Wrap)
		}

		operator := middleware.RequireRole(domain.RoleOperator)
		admin := middleware.RequireRole(domain.RoleAdmin)

		r.Get("/me", cfg.AuthHandler.GetCurrentUser)

		// Transactions
		r.Route("/transactions", func(r chi.Router) {
			r.With(operator).Post("/", cfg.TransactionHandler.Create)
			r.Get("/", cfg.TransactionHandler.List)
			r.Get("/recent", cfg.TransactionHandler.Recent)
			r.With(admin).Post("/delete", cfg.TransactionHandler.DeleteBatch)
			r.Get("/{id}", cfg.TransactionHandler.Get)
			r.With(operator).Patch("/{id}", cfg.TransactionHandler.Update)
			r.With(admin).Delete("/{id}", cfg.TransactionHandler.Delete)
		})

		// Vault
		r.Get("/vault", cfg.VaultHandler.Get)
		r.With(admin).Patch("/vault", cfg.VaultHandler.Update)

		// Views
		r.Get("/summary", cfg.CompanyHandler.Summary)
		r.Get("/denominations", cfg.CompanyHandler.Denominations)
		r.Route("/companies", func(r chi.Router) {
			r.Get("/", cfg.CompanyHandler.List)
			r.Get("/{company}/transactions", cfg.CompanyHandler.Transactions)
			r.Get("/{company}/report", cfg.CompanyHandler.Report)
		})

		r.Get("/exports/transactions.csv", cfg.TransactionHandler.ExportCSV)
		r.With(operator).Post("/imports", cfg.ImportHandler.Import)
	})

	return r
}
