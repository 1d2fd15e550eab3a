package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions configures the middleware stack.
type RouterOptions struct {
	Tokens             TokenProvider
	Gatherer           prometheus.Gatherer
	CORSAllowedOrigins []string
	// RateLimitPerMinute caps requests per client IP; 0 disables it.
	RateLimitPerMinute int
}

// NewRouter wires the handler into a chi router.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogger)
	r.Use(chimw.Recoverer)

	origins := opts.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.Healthz)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		if opts.RateLimitPerMinute > 0 {
			r.Use(httprate.Limit(
				opts.RateLimitPerMinute,
				time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
					writeMessage(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
				}),
			))
		}

		r.Get("/usecase1", h.LatestBatch)
		r.Get("/history/{accountId}", h.History)

		r.Group(func(r chi.Router) {
			r.Use(RequireToken(opts.Tokens))
			r.Get("/contract", h.ListContracts)
			r.Post("/submit-dropdown", h.SubmitDropdown)
			r.Post("/chatbot", h.Chatbot)
		})
	})

	return r
}
