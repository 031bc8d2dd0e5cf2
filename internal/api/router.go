package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/nadscarim/task-management/internal/api/handler"
	"github.com/nadscarim/task-management/internal/api/metrics"
	"github.com/nadscarim/task-management/internal/api/middleware"
	"github.com/nadscarim/task-management/internal/core/domain"
	"github.com/nadscarim/task-management/internal/core/ports"
	ophttp "github.com/nadscarim/task-management/internal/infrastructure/http"
	"github.com/nadscarim/task-management/internal/infrastructure/http/handlers"
	"github.com/nadscarim/task-management/pkg/logger"
)

// Dependencies is everything the router needs to serve requests.
type Dependencies struct {
	Auth     ports.AuthService
	Tasks    ports.TaskService
	Verifier ports.TokenVerifier
	Cookies  handler.CookieConfig
	// Checks feed the readiness probe.
	Checks map[string]handlers.Pinger
	Logger zerolog.Logger

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(logger.RequestLogger(deps.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		// Any origin is echoed back so cookies can travel cross-site.
		AllowOriginFunc:  func(string) (bool, error) { return true, nil },
		AllowCredentials: true,
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  metrics.Namespace(),
		Subsystem:  metrics.HTTPSubsystem,
		Registerer: deps.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Operational routes (no auth required) ---
	ophttp.RegisterOperational(e, ophttp.Operational{
		Checks:   deps.Checks,
		Gatherer: deps.Gatherer,
	})

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Cookies, deps.Logger)
	auth := e.Group("/api/v1/auth")
	auth.GET("/me", authHandler.Me)
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout)

	// --- Task routes (access token required) ---
	taskHandler := handler.NewTaskHandler(deps.Tasks)
	tasks := e.Group("/api/v1/tasks",
		middleware.Authenticate(deps.Verifier),
		middleware.RequireRole(domain.RoleUser, domain.RoleAdmin),
	)
	tasks.GET("", taskHandler.List)
	tasks.POST("", taskHandler.Create)
	tasks.GET("/:id", taskHandler.Get)
	tasks.PUT("/:id", taskHandler.Update)

	return e
}
