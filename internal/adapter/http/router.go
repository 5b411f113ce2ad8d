package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/assetvault/internal/adapter/http/handler"
	"github.com/iho/assetvault/internal/adapter/http/middleware"
	"github.com/iho/assetvault/internal/infrastructure/metrics"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AssetHandler   *handler.AssetHandler
	LedgerHandler  *handler.LedgerHandler
	AdminHandler   *handler.AdminHandler
	CustodyHandler *handler.CustodyHandler
	HealthHandler  *handler.HealthHandler

	// Optional
	Stream         http.Handler
	MetricsHandler http.Handler
	Metrics        *metrics.Metrics
	TokenVerifier  middleware.TokenVerifier
	Idempotency    *middleware.IdempotencyMiddleware
	RateLimiter    *middleware.RateLimiter
	Logger         zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	r.Use(middleware.Authenticate(cfg.TokenVerifier))
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Idempotency != nil {
			r.Use(cfg.Idempotency.Wrap)
		}

		if cfg.Stream != nil {
			r.Handle("/stream", cfg.Stream)
		}

		// Assets
		r.Route("/assets", func(r chi.Router) {
			r.Get("/", cfg.AssetHandler.List)
			r.Get("/{id}", cfg.AssetHandler.Get)
			r.Get("/{id}/price", cfg.AssetHandler.Price)
			r.Get("/{id}/usd", cfg.AssetHandler.USDValue)

			r.With(middleware.RequirePrincipal).Post("/", cfg.AssetHandler.Create)
			r.With(middleware.RequirePrincipal).Put("/{id}/status", cfg.AssetHandler.SetStatus)
		})

		// Ledger
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePrincipal)
			r.Post("/deposits", cfg.LedgerHandler.Deposit)
			r.Post("/withdrawals", cfg.LedgerHandler.Withdraw)
			r.Get("/me/balances/{assetID}", cfg.LedgerHandler.MyBalance)
		})

		r.Route("/users/{user}", func(r chi.Router) {
			r.Get("/balances", cfg.LedgerHandler.UserBalances)
			r.Get("/balances/{assetID}", cfg.LedgerHandler.UserBalance)
			r.Get("/transactions", cfg.LedgerHandler.History)
		})

		r.Route("/vault", func(r chi.Router) {
			r.Get("/tvl", cfg.LedgerHandler.TVL)
			r.Get("/capacity", cfg.LedgerHandler.Capacity)
			r.Get("/status", cfg.AdminHandler.Status)
			r.Get("/reconciliation", cfg.AdminHandler.Reconciliation)
		})

		// Governance
		r.Get("/roles/{principal}", cfg.AdminHandler.Roles)
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequirePrincipal)
			r.Post("/pause", cfg.AdminHandler.Pause)
			r.Post("/unpause", cfg.AdminHandler.Unpause)
			r.Post("/roles/grant", cfg.AdminHandler.GrantRole)
			r.Post("/roles/revoke", cfg.AdminHandler.RevokeRole)
			r.Post("/roles/renounce", cfg.AdminHandler.RenounceRole)
		})

		// Local custodian
		if cfg.CustodyHandler != nil {
			r.Route("/custody", func(r chi.Router) {
				r.Get("/wallets/{user}/{assetID}", cfg.CustodyHandler.Wallet)
				r.With(middleware.RequirePrincipal).Post("/fund", cfg.CustodyHandler.Fund)
				r.With(middleware.RequirePrincipal).Post("/approve", cfg.CustodyHandler.Approve)
			})
		}
	})

	return r
}
