package http

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/nadscarim/task-management/internal/infrastructure/http/handlers"
)

// Operational lists what the unauthenticated operational routes report on.
type Operational struct {
	// Checks are pinged by the readiness probe, keyed by dependency name.
	Checks map[string]handlers.Pinger
	// Gatherer backs /metrics; nil means the default registry.
	Gatherer prometheus.Gatherer
}

// RegisterOperational mounts the health probes, the Prometheus scrape
// endpoint and the Swagger UI on e.
func RegisterOperational(e *echo.Echo, op Operational) {
	gatherer := op.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(op.Checks)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
