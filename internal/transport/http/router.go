package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-payments-api/internal/application/ledger"
	"github.com/go-payments-api/internal/application/order"
	"github.com/go-payments-api/internal/application/payment"
	"github.com/go-payments-api/internal/config"
	"github.com/go-payments-api/internal/pkg/rates"
	"github.com/go-payments-api/internal/transport/http/handler"
	appmiddleware "github.com/go-payments-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var identityMw func(http.Handler) http.Handler
	if deps.Verifier != nil {
		identityMw = appmiddleware.Identity(deps.Verifier)
	} else {
		identityMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to the public payment endpoints.
	paymentRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	ledgerSvc := ledger.NewService(deps.CreditGrantRepo)
	orderSvc := order.NewService(deps.OrderRepo, deps.Gateway, rates.NewStatic(), cfg.GatewayTimeout)
	paymentSvc := payment.NewService(deps.OrderRepo, deps.VerificationRepo, ledgerSvc, deps.Signer)

	healthH := handler.NewHealthHandler()
	paymentH := handler.NewPaymentHandler(orderSvc, paymentSvc, ledgerSvc)

	r.Get("/health-check/{action}", healthH.Ping)

	r.Route("/api", func(r chi.Router) {
		r.Use(identityMw)

		r.Route("/payments/{provider}", func(r chi.Router) {
			r.With(paymentRL.Limit).Post("/create-order", paymentH.CreateOrder)
			r.With(paymentRL.Limit).Post("/verify", paymentH.Verify)
			r.Get("/checkout/{orderID}", paymentH.Checkout)
		})

		// Identity-required routes
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.RequireIdentity)

			r.Get("/credits", paymentH.Credits)
		})
	})

	return r
}
