// Package api mounts the HTTP surface of the blog service.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/blogware/simple-blog/internal/auth"
	"github.com/blogware/simple-blog/internal/metrics"
	"github.com/blogware/simple-blog/pkg/simpleblog"
)

// Config carries the router's tunables.
type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter assembles the full route tree with middleware. Background work
// owned by the router, such as the rate limiter's idle sweep, stops when ctx
// is done.
func NewRouter(ctx context.Context, service simpleblog.Service, tokens *auth.Manager, m *metrics.Metrics, cfg Config) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	if m != nil {
		r.Use(m.Middleware)
	}
	r.Use(Authenticator(tokens))
	if cfg.RateLimitRPS > 0 {
		r.Use(newRateLimiter(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	if m != nil {
		r.Handle("/metrics", m.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", NewAuthHandler(service, tokens).Routes())
		r.Mount("/posts", NewPostHandler(service).Routes())
		r.Mount("/accounts", NewAccountHandler(service).Routes())
		r.Mount("/images", NewImageHandler(service).Routes())
	})

	return r
}
