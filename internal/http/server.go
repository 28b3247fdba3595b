// Package http assembles the gin router of the OpsPilot API, the /metrics
// server and the health endpoints.
package http

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/opspilot/platform/internal/auth/domain"
	authHTTP "github.com/opspilot/platform/internal/auth/http"
	"github.com/opspilot/platform/internal/config"
	employeeHTTP "github.com/opspilot/platform/internal/employee/http"
	"github.com/opspilot/platform/internal/metrics"
	workItemHTTP "github.com/opspilot/platform/internal/workitem/http"
)

// ServiceName is reported by GET /api/health.
const ServiceName = "OpsPilot Operations Core"

const readinessTimeout = 2 * time.Second

// Server is the public API server.
type Server struct {
	db     *sql.DB
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates the server. SetupRouter must be called before Start.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Handlers groups the route handlers mounted by SetupRouter.
type Handlers struct {
	Auth     *authHTTP.AuthHandler
	Employee *employeeHTTP.EmployeeHandler
	WorkItem *workItemHTTP.WorkItemHandler
}

// SetupRouter builds the middleware chain and registers every route.
//
// Only cfg.TrustedProxies may set the client IP through forwarding headers.
//
// Middleware order: panic recovery, request id, request logging, HTTP metrics,
// CORS, bearer authentication, route authorization. Authorization runs for
// every request, so route handlers can assume the policy has been applied.
// ctx bounds the background work of the credential rate limiter.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	authenticator authHTTP.Authenticator,
	handlers Handlers,
	metricsProvider *metrics.Provider,
) {
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		s.logger.Error("invalid trusted proxies, using peer address only", slog.Any("error", err))
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(recoveryMiddleware(s.logger))
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}
	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.Use(authHTTP.AuthenticationMiddleware(authenticator, s.logger))
	router.Use(authHTTP.AuthorizationMiddleware(authDomain.DefaultPolicy(cfg.PublicPaths()), s.logger))

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	api := router.Group("/api")
	api.GET("/health", s.apiHealthHandler)

	credentials := api.Group("/auth")
	if cfg.RateLimitLoginEnabled {
		credentials.Use(authHTTP.CredentialRateLimitMiddleware(
			ctx,
			cfg.RateLimitLoginRequestsPerSec,
			cfg.RateLimitLoginBurst,
			s.logger,
		))
	}
	credentials.POST("/login", handlers.Auth.LoginHandler)
	credentials.POST("/register", handlers.Auth.RegisterHandler)

	api.GET("/me", handlers.Auth.MeHandler)

	workItems := api.Group("/workitems")
	{
		workItems.POST("", handlers.WorkItem.CreateHandler)
		workItems.GET("/my", handlers.WorkItem.ListMineHandler)
		workItems.GET("/my/paginated", handlers.WorkItem.ListMinePageHandler)
		workItems.PUT("/:id", handlers.WorkItem.UpdateHandler)
		workItems.PUT("/:id/status", handlers.WorkItem.UpdateStatusHandler)
	}

	admin := api.Group("/admin")
	{
		admin.GET("/employees", handlers.Employee.ListHandler)
		admin.GET("/employees/operators", handlers.Employee.ListOperatorsHandler)
		admin.GET("/employees/:id", handlers.Employee.GetHandler)
		admin.PUT("/employees/:id/active", handlers.Employee.SetActiveHandler)

		admin.GET("/workitems", handlers.WorkItem.ListAllHandler)
		admin.PUT("/workitems/:id/assign", handlers.WorkItem.AssignHandler)
		admin.GET("/dashboard", handlers.WorkItem.DashboardHandler)
	}

	if !cfg.IsProduction() {
		registerDebugRoutes(router)
	}

	s.router = router
}

// registerDebugRoutes mounts the pprof handlers under /debug/pprof.
func registerDebugRoutes(router *gin.Engine) {
	debug := router.Group("/debug/pprof")
	debug.GET("/", gin.WrapF(pprof.Index))
	debug.GET("/cmdline", gin.WrapF(pprof.Cmdline))
	debug.GET("/profile", gin.WrapF(pprof.Profile))
	debug.GET("/symbol", gin.WrapF(pprof.Symbol))
	debug.POST("/symbol", gin.WrapF(pprof.Symbol))
	debug.GET("/trace", gin.WrapF(pprof.Trace))
	debug.GET("/:name", gin.WrapF(pprof.Index))
}

// GetHandler returns the router, for tests.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return errors.New("router is not configured")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports liveness.
// GET /health
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// apiHealthHandler is the public service probe used by the frontend.
// GET /api/health
func (s *Server) apiHealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP", "service": ServiceName})
}

// readinessHandler reports 503 until the database answers a ping.
// GET /ready
func (s *Server) readinessHandler(c *gin.Context) {
	database := "ok"
	if s.db == nil {
		database = "error"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.WarnContext(c.Request.Context(), "readiness check failed", slog.Any("error", err))
			database = "error"
		}
	}

	status, code := "ready", http.StatusOK
	if database != "ok" {
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":     status,
		"components": gin.H{"database": database},
	})
}
