package server

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"PosBoard/pkg/kit"
)

const createLimitWindow = 60 * time.Second

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	StaticDir       string
	CreateRateLimit int
}

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if s.Log == nil {
		s.Log = deps.Log
	}

	r := chi.NewRouter()

	setupMiddleware(r, deps)
	setupMetrics(r, deps)
	setupRoutes(r, s, deps)

	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func setupRoutes(r *chi.Mux, s *Server, deps HTTPDeps) {
	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)

	r.Get("/events", s.events)
	r.Get("/ws", s.websocket)

	r.Route("/api", func(api chi.Router) {
		api.Get("/orders", s.listOrders)
		if deps.CreateRateLimit > 0 {
			limiter := kit.NewIPRateLimiter(deps.CreateRateLimit, createLimitWindow)
			api.With(limiter.Middleware).Post("/orders", s.createOrder)
		} else {
			api.Post("/orders", s.createOrder)
		}
		api.Put("/orders/{id}", s.updateOrder)
		api.Delete("/orders/{id}", s.deleteOrder)

		api.Get("/stats", s.getStats)
		api.Delete("/stats", s.resetStats)
		api.Post("/stats/rebuild", s.rebuildStats)
	})

	if deps.StaticDir != "" {
		if fi, err := os.Stat(deps.StaticDir); err == nil && fi.IsDir() {
			r.Handle("/*", http.FileServer(http.Dir(deps.StaticDir)))
		} else {
			deps.Log.Warn("static dir not found, UI disabled", zap.String("dir", deps.StaticDir))
		}
	}
}
