// Package api serves the collection views as JSON over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/Sternrassler/bgg-stats/pkg/logging"
	"github.com/Sternrassler/bgg-stats/pkg/metrics"
	"github.com/Sternrassler/bgg-stats/pkg/stats"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"
)

// Service is the collection backend behind the routes.
type Service interface {
	Fetch(ctx context.Context, username string) (*stats.FetchResult, error)
	Compare(ctx context.Context, n int, usernames ...string) (stats.Comparison, error)
	TopN() int
}

// Config holds router settings.
type Config struct {
	// RateLimitPerMinute limits /api requests per client IP. 0 disables it.
	RateLimitPerMinute int
}

// Handler serves the JSON API.
type Handler struct {
	svc    Service
	logger zerolog.Logger
}

// NewRouter builds the HTTP routes:
//
//	GET /health
//	GET /metrics
//	GET /api/categories/{username}
//	GET /api/mechanics/{username}
//	GET /api/release_year/{username}
//	GET /api/radar/{username}
//	GET /api/versus/{username1}/{username2}
//
// The per-user views accept ?top=N.
func NewRouter(svc Service, cfg Config) http.Handler {
	h := &Handler{
		svc:    svc,
		logger: logging.NewLogger("api"),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(h.requestLogger)

	r.Get("/health", h.health)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimitPerMinute > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute))
		}
		r.Get("/categories/{username}", h.aggregate(stats.FacetCategories))
		r.Get("/mechanics/{username}", h.aggregate(stats.FacetMechanics))
		r.Get("/release_year/{username}", h.releaseYear)
		r.Get("/radar/{username}", h.radar)
		r.Get("/versus/{username1}/{username2}", h.versus)
	})

	return r
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		h.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}
