package api

import (
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/taskmanager/task-api/docs"
	"github.com/taskmanager/task-api/internal/api/handler"
	"github.com/taskmanager/task-api/internal/api/middleware"
	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

// Deps is everything the router needs. Services are already wired to their
// stores; the router only adds transport concerns.
type Deps struct {
	Auth   ports.AuthService
	Users  ports.UserService
	Tasks  ports.TaskService
	Tokens ports.TokenService
	Health []handler.DependencyCheck
	Logger zerolog.Logger
	Cookie handler.CookieConfig

	// AuthRateLimit is requests per second per client IP on the unauthenticated
	// auth routes. Zero disables the limiter.
	AuthRateLimit float64
	AuthRateBurst int
	CORSOrigins   []string

	// Registry receives the HTTP metrics. Nil uses the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomiddleware.BodyLimit("1M"))
	if len(d.CORSOrigins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
			AllowCredentials: true,
		}))
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "taskmanager",
		Subsystem:  "http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Cookie)
	userHandler := handler.NewUserHandler(d.Users)
	taskHandler := handler.NewTaskHandler(d.Tasks)
	healthHandler := handler.NewHealthHandler(d.Health...)
	authMiddleware := middleware.Auth(d.Tokens)

	// --- Operational routes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Session routes ---
	users := e.Group("/users")
	limited := users.Group("", authRateLimiter(d.AuthRateLimit, d.AuthRateBurst))
	limited.POST("/signup", authHandler.Signup)
	limited.POST("/login", authHandler.Login)
	limited.POST("/refresh-token", authHandler.RefreshToken)
	users.POST("/logout", authHandler.Logout)

	// --- Account routes ---
	account := users.Group("", authMiddleware)
	account.GET("/profile", userHandler.Profile)
	account.PUT("/profile", userHandler.UpdateOwnProfile)
	account.PUT("/profile/:id", userHandler.UpdateProfile)
	account.GET("", userHandler.List, middleware.RequireRoles(domain.RoleAdmin))
	account.DELETE("/:id", userHandler.Delete, middleware.RequireRoles(domain.RoleAdmin))

	// --- Task routes ---
	tasks := e.Group("/tasks", authMiddleware)
	tasks.POST("", taskHandler.Create)
	tasks.GET("", taskHandler.List)
	tasks.GET("/stats", taskHandler.Stats)
	tasks.GET("/:id", taskHandler.Get)
	tasks.PUT("/:id", taskHandler.Update)
	tasks.DELETE("/:id", taskHandler.Delete)

	return e
}

// authRateLimiter bounds signup, login and refresh per client IP. Rejections
// surface as ErrTooManyAttempts through the error handler.
func authRateLimiter(limit float64, burst int) echo.MiddlewareFunc {
	if limit <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if burst <= 0 {
		burst = max(1, int(math.Ceil(limit)))
	}
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(limit),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(_ echo.Context, _ string, _ error) error {
			return domain.ErrTooManyAttempts
		},
	})
}
