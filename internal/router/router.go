package router

import (
	"time"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/anonto42/nano-midea/followers/internal/handlers"
	"github.com/anonto42/nano-midea/followers/internal/validators"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Follows  handlers.FollowService
	Identity echo.MiddlewareFunc
	Health   map[string]handlers.HealthCheck
	CORS     eMiddleware.CORSConfig
	Logger   *zap.Logger
}

// New builds the API server.
func New(deps Dependencies) *echo.Echo {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()

	SetupMiddleware(e, deps)
	SetupRoutes(e, deps)
	return e
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, deps Dependencies) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORSWithConfig(deps.CORS))
	e.Use(requestLogger(deps.Logger))
}

// SetupRoutes registers the health check and the follower routes.
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	e.GET("/health", handlers.NewHealthHandler(deps.Health).Health)

	group := e.Group("/followers", deps.Identity)
	handlers.NewFollowHandler(deps.Follows, deps.Logger.With(zap.String("module", "handlers"))).RegisterFollowRoutes(group)
	deps.Logger.Info("follower routes configured")
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency.Round(time.Microsecond)),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			logger.Info("request", fields...)
			return nil
		},
	})
}
