// Package server provides HTTP server setup and configuration.
package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/programmernewbie/multimodule-template/internal/config"
	"github.com/programmernewbie/multimodule-template/internal/handlers"
	"github.com/programmernewbie/multimodule-template/internal/metrics"
	"github.com/programmernewbie/multimodule-template/internal/middleware"
	"github.com/programmernewbie/multimodule-template/pkg/greeting"
)

const (
	// APIPrefix is the route group of the example API
	APIPrefix = "/api/example"

	healthPath  = APIPrefix + "/health"
	metricsPath = "/metrics"
)

// Dependencies holds all dependencies needed to create a server
type Dependencies struct {
	Config  *config.Config
	Greeter greeting.Greeter
	Logger  zerolog.Logger
	Metrics *metrics.Metrics // Optional: nil disables request metrics and /metrics
}

// New creates a new Gin router with all routes configured
func New(deps *Dependencies) *gin.Engine {
	// Release mode keeps gin's debug route dump out of the structured logs
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Only the listed proxies may set X-Forwarded-For; otherwise ClientIP,
	// and with it the rate limit key, is the socket peer
	if err := router.SetTrustedProxies(deps.Config.Server.TrustedProxies); err != nil {
		deps.Logger.Error().Err(err).Msg("Invalid trusted proxies, trusting none")
		_ = router.SetTrustedProxies(nil)
	}

	router.Use(gin.Recovery())

	// Request ID first so the logger and error bodies can see it
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(deps.Logger, healthPath, metricsPath))

	if deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{metricsPath})))

	exampleHandler := handlers.NewExampleHandler(deps.Greeter).WithMetrics(deps.Metrics)

	api := router.Group(APIPrefix)
	{
		// Health stays outside the limiter so probes always get 200
		api.GET("/health", exampleHandler.Health)

		greetings := api.Group("")
		greetings.Use(middleware.NewRateLimitMiddleware(deps.Config.RateLimit.RequestsPerMinute))
		{
			greetings.GET("/welcome", exampleHandler.Welcome)
			greetings.GET("/welcome-async", exampleHandler.WelcomeAsync)
		}
	}

	if deps.Metrics != nil && deps.Config.Metrics.Enabled {
		router.GET(metricsPath, middleware.MetricsHandler(deps.Metrics, deps.Config.Metrics.Token))
	}

	return router
}
