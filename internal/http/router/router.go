package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"courier-dispatch/internal/auth"
	"courier-dispatch/internal/http/handlers"
	mw "courier-dispatch/internal/http/middleware"
	"courier-dispatch/internal/http/middleware/ratelimit"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/metrics"
)

// Deps is everything the router mounts. RateLimit, HTTPMetrics and
// MetricsHandler are optional.
type Deps struct {
	Base     *handlers.Handlers
	Orders   *handlers.OrderHandler
	Matching *handlers.MatchingHandler
	Offers   *handlers.OfferHandler
	Couriers *handlers.CourierHandler

	Tokens         mw.TokenParser
	RateLimit      *ratelimit.Middleware
	HTTPMetrics    *metrics.HTTP
	MetricsHandler http.Handler
	Logger         logx.Logger
	Timeout        time.Duration
}

// New constructs a chi-based http.Handler with base middleware and routes.
func New(d Deps) http.Handler {
	if d.Timeout <= 0 {
		d.Timeout = 5 * time.Second
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(d.Timeout))
	r.Use(mw.Observability(d.Logger, d.HTTPMetrics))
	r.Use(mw.Authenticate(d.Tokens, d.Logger))
	if d.RateLimit != nil {
		r.Use(d.RateLimit.Handler())
	}

	r.Get("/ping", d.Base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(d.Base.HealthcheckHead))
	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}
	r.NotFound(d.Base.NotFound)
	r.MethodNotAllowed(d.Base.MethodNotAllowed)

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireIdentity(d.Logger))

		r.Post("/matching/find", d.Matching.Find)
		r.Get("/orders/{id}", d.Orders.GetByID)
		r.Patch("/orders/{id}/status", d.Orders.UpdateStatus)
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireRole(auth.RoleClient, d.Logger))

		r.Post("/orders", d.Orders.Create)
		r.Get("/orders/client/{client_id}", d.Orders.ListByClient)
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireRole(auth.RoleCourier, d.Logger))

		r.Get("/offers", d.Offers.List)
		r.Get("/orders/courier/{courier_id}", d.Orders.ListByCourier)
		r.Post("/orders/{id}/accept", d.Orders.Accept)
		r.Post("/orders/{id}/reject", d.Orders.Reject)
		r.Put("/couriers/{id}/location", d.Couriers.UpdateLocation)
		r.Put("/couriers/{id}/availability", d.Couriers.SetAvailability)
	})

	return r
}
