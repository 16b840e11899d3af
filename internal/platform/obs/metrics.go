package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	// SolveRuns counts optimization runs by terminal status.
	SolveRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "solve_runs_total", Help: "Optimization runs by outcome."},
		[]string{"status"},
	)
	// SolveDuration records end-to-end optimization durations in seconds.
	SolveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "solve_duration_seconds",
			Help:    "End-to-end optimization duration in seconds.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
	)
	// ModelSize records the number of decision variables per built model.
	ModelSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "solve_model_variables",
			Help:    "Decision variables per built model.",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000},
		},
	)
	// HTTPRequests counts requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
)

var regOnce sync.Once

// RegisterDefault registers all collectors on the service registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(SolveRuns)
		Registry.MustRegister(SolveDuration)
		Registry.MustRegister(ModelSize)
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
