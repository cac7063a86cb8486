package router

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Product      *handler.ProductHandler
	Cart         *handler.CartHandler
	Subscription *handler.SubscriptionHandler
	Order        *handler.OrderHandler
}

// Options configures cross-cutting middleware.
type Options struct {
	APIKey  string
	Metrics *metrics.Metrics
	Online  func() bool
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Applied in order: Recovery -> Logging -> Metrics -> CORS -> APIKeyAuth
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.InstrumentHandler)
	}
	r.Use(middleware.CORS)
	r.Use(middleware.APIKeyAuth(opts.APIKey, logger, middleware.PublicPaths...))
	if opts.Online != nil {
		r.Use(middleware.Connectivity(opts.Online))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Product.List)
			r.Post("/refresh", h.Product.Refresh)
			r.Post("/more", h.Product.LoadMore)
			r.Get("/{id}", h.Product.GetByID)
		})

		r.Get("/cache", h.Product.CacheStatus)
		r.Delete("/cache", h.Product.ClearCache)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.Get)
			r.Delete("/", h.Cart.Clear)
			r.Post("/items", h.Cart.Add)
			r.Delete("/items/{id}", h.Cart.Remove)
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Get("/plans", h.Subscription.Plans)
			r.Get("/locations", h.Subscription.Locations)
			r.Post("/summary", h.Subscription.Summary)
			r.Post("/confirm", h.Subscription.Confirm)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.Order.Create)
			r.Get("/{id}", h.Order.GetByID)
		})
	})

	return r
}
