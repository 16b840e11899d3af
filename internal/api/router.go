package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"collection-route-service/internal/api/handlers"
	"collection-route-service/internal/platform/obs"
	"collection-route-service/internal/ports"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(repo ports.ScenarioRepository, solver ports.Solver, cache ports.ResultCache) http.Handler {
	obs.RegisterDefault()

	mux := http.NewServeMux()

	locHandler := &handlers.LocationHandler{Repo: repo}
	solveHandler := &handlers.SolveHandler{
		Repo:   repo,
		Solver: solver,
		Cache:  cache,
	}

	// Solving is CPU-bound, so admission is throttled ahead of the handler.
	limiter := rate.NewLimiter(rate.Limit(5), 10)

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/locations", locHandler.List)
	mux.Handle("/solve", rateLimitMiddleware(limiter, http.HandlerFunc(solveHandler.Solve)))
	mux.Handle("/metrics", promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{}))

	return loggingMiddleware(mux)
}
