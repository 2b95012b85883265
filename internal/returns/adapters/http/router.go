package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Logger      *slog.Logger
	Metrics     *Metrics
	CORSOrigins []string
}

// NewRouter mounts h behind CORS, recovery, logging and metrics middleware. Metrics and
// logging run inside chi so they can see the matched route pattern.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders: []string{ReplayedHeader},
		MaxAge:         300,
	}))
	r.Use(func(next http.Handler) http.Handler {
		return WithMetrics(next, opts.Metrics)
	})
	r.Use(func(next http.Handler) http.Handler {
		return WithRequestLogging(next, opts.Logger)
	})
	r.Use(func(next http.Handler) http.Handler {
		return WithRecovery(next, opts.Logger, opts.Metrics)
	})

	h.Register(r)
	return r
}
