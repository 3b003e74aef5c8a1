package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/bizledger/records-api/docs" // swagger document
	"github.com/bizledger/records-api/internal/api/handler"
	"github.com/bizledger/records-api/internal/api/middleware"
	"github.com/bizledger/records-api/internal/core/policy"
	"github.com/bizledger/records-api/internal/core/ports"
)

// Deps are the collaborators the router wires into handlers and middleware.
type Deps struct {
	Logger        zerolog.Logger
	Authenticator ports.Authenticator
	Auth          ports.AuthService
	Customers     ports.CustomerService
	Users         ports.UserService
	Dashboard     ports.DashboardService

	// Checks are the readiness probes, keyed by dependency name.
	Checks map[string]handler.Check

	// Registerer and Gatherer default to the prometheus globals.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}
	log := d.Logger

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "records",
		Registerer: d.Registerer,
	}))
	e.Use(requestLogger(log))

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authenticate := middleware.Authenticate(d.Authenticator, log)
	adminOnly := middleware.RequireEndpoint(policy.AdminOnly, log)
	staffOnly := middleware.RequireEndpoint(policy.StaffOnly, log)
	selfOnly := middleware.RequireEndpoint(policy.SelfOnly, log)

	api := e.Group("/api")

	// --- Auth ---
	authHandler := handler.NewAuthHandler(d.Auth)
	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)
	auth.GET("/profile", authHandler.Profile, authenticate, selfOnly)
	auth.POST("/logout", authHandler.Logout, authenticate, selfOnly)

	// --- Customers ---
	customerHandler := handler.NewCustomerHandler(d.Customers)
	customers := api.Group("/customers", authenticate, staffOnly)
	customers.GET("", customerHandler.List)
	customers.POST("", customerHandler.Create)
	customers.GET("/:id", customerHandler.Get)
	customers.PUT("/:id", customerHandler.Update)
	customers.DELETE("/:id", customerHandler.Delete)

	// --- Users ---
	userHandler := handler.NewUserHandler(d.Users)
	users := api.Group("/users", authenticate)
	users.GET("", userHandler.List, adminOnly)
	users.POST("", userHandler.Create, adminOnly)
	users.GET("/:id", userHandler.Get, selfOnly)
	users.PUT("/:id", userHandler.Update, selfOnly)
	users.DELETE("/:id", userHandler.Delete, adminOnly)

	// --- Dashboard ---
	dashboardHandler := handler.NewDashboardHandler(d.Dashboard)
	dashboard := api.Group("/dashboard", authenticate, staffOnly)
	dashboard.GET("/stats", dashboardHandler.Stats)
	dashboard.GET("/recent-customers", dashboardHandler.RecentCustomers)

	return e
}

// requestLogger writes one line per request through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
