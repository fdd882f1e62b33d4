package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	hrest "solarcredits-service/internal/handler/http"
	wshandler "solarcredits-service/internal/handler/ws"
	"solarcredits-service/shared/auth/middleware"
	"solarcredits-service/shared/response"
)

type Handlers struct {
	Wallet       *hrest.WalletHandler
	Verification *hrest.VerificationHandler
	Marketplace  *hrest.MarketplaceHandler
	Credit       *hrest.CreditHandler
	Transaction  *hrest.TransactionHandler
	WS           *wshandler.WSHandler
}

// SetupRoutes configures the HTTP routes for the service. rdb may be nil to disable rate limiting.
func SetupRoutes(r chi.Router, h Handlers, auth *middleware.AuthMiddleware, rdb redis.Cmdable) chi.Router {
	// ---- Global Middleware ----
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-CSRF-Token",
		},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if rdb != nil {
		r.Use(middleware.RateLimiter(rdb, 100, time.Minute, 10*time.Minute, "global"))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// ---- Public ----
		r.Get("/marketplace/listings", h.Marketplace.ListListings)
		r.Get("/marketplace/listings/{id}", h.Marketplace.GetListing)
		r.Get("/esg/calculate", h.Credit.Calculate)

		// ---- Authenticated ----
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)
			if rdb != nil {
				// keyed by user id, which only exists after auth
				r.Use(middleware.RateLimiter(rdb, 60, time.Minute, 10*time.Minute, "user"))
			}

			r.Route("/wallet", func(r chi.Router) {
				r.Get("/", h.Wallet.GetState)
				r.Post("/connect", h.Wallet.Connect)
				r.Post("/disconnect", h.Wallet.Disconnect)
				r.Post("/refresh", h.Wallet.Refresh)
				r.Post("/switch-network", h.Wallet.SwitchNetwork)
				r.Post("/send", h.Wallet.Send)
				r.Post("/token/transfer", h.Wallet.TransferToken)
				r.Post("/token/approve", h.Wallet.ApproveToken)
			})

			r.Route("/verifications", func(r chi.Router) {
				r.Post("/", h.Verification.Upload)
				r.Get("/", h.Verification.List)
				r.Get("/stats", h.Verification.Stats)
				r.Get("/{id}", h.Verification.Get)
			})

			r.Post("/marketplace/listings/{id}/buy", h.Marketplace.Buy)

			r.Route("/credits", func(r chi.Router) {
				r.Get("/", h.Credit.List)
				r.Post("/mint", h.Credit.Mint)
				r.Post("/retire", h.Credit.Retire)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", h.Transaction.List)
				r.Post("/", h.Transaction.Add)

				// WebSocket endpoint
				r.Get("/ws", h.WS.HandleTransactions)
			})
		})
	})
	return r
}
