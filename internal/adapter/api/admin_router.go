package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/V4T54L/yapli/internal/adapter/api/handler"
)

// NewAdminRouter creates the router for operational endpoints: dependency
// health and Prometheus metrics.
func NewAdminRouter(gatherer prometheus.Gatherer, checks map[string]handler.HealthCheck, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	health := handler.NewHealthHandler(checks, 2*time.Second, logger)

	r.Get("/health", health.Ready)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}
