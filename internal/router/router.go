package router

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/anonto42/pingup/backend/internal/handlers"
	"github.com/anonto42/pingup/backend/internal/middleware"
	"github.com/anonto42/pingup/backend/internal/services"
	"github.com/anonto42/pingup/backend/pkg/config"
	"github.com/anonto42/pingup/backend/pkg/logging"
	"github.com/anonto42/pingup/backend/pkg/webhook"
)

// Services bundles the engines the routes dispatch to
type Services struct {
	Users         *services.UserService
	Graph         *services.GraphService
	Posts         *services.PostService
	Stories       *services.StoryService
	Messages      *services.MessageService
	Notifications *services.NotificationService
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, cfg *config.Config) {
	e.HTTPErrorHandler = middleware.HTTPErrorHandler
	e.Use(eMiddleware.RequestIDWithConfig(eMiddleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	e.Use(middleware.RequestLogger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORSWithConfig(eMiddleware.CORSConfig{
		AllowOrigins:     []string{cfg.ClientURL},
		AllowCredentials: true,
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization,
			middleware.HeaderClerkUserID, webhook.HeaderID, webhook.HeaderTimestamp, webhook.HeaderSignature,
		},
	}))
	e.Use(eMiddleware.BodyLimit(cfg.BodyLimit))
	if cfg.RateLimitRPS > 0 {
		e.Use(eMiddleware.RateLimiter(eMiddleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimitRPS))))
	}
	logging.Info().Str("client_url", cfg.ClientURL).Float64("rate_limit_rps", cfg.RateLimitRPS).Msg("global middleware configured")
}

// SetupRoutes configures all application routes
func SetupRoutes(e *echo.Echo, svc Services, resolve middleware.IdentityResolver, verifier *webhook.Verifier) {
	e.GET("/", handlers.Banner)
	e.GET("/health", handlers.HealthCheck)

	api := e.Group("/api", middleware.Identify(resolve))
	requireUser := middleware.RequireUser(svc.Users)

	users := api.Group("/users")
	handlers.NewWebhookHandler(svc.Users, verifier).RegisterWebhookRoutes(users)
	handlers.NewUserHandler(svc.Users).RegisterUserRoutes(users, requireUser)

	handlers.NewPostHandler(svc.Posts).RegisterPostRoutes(api.Group("/posts", requireUser))
	handlers.NewStoryHandler(svc.Stories).RegisterStoryRoutes(api.Group("/stories", requireUser))
	handlers.NewConnectionHandler(svc.Graph).RegisterConnectionRoutes(api.Group("/connections", requireUser))
	handlers.NewMessageHandler(svc.Messages).RegisterMessageRoutes(api.Group("/messages", requireUser))
	handlers.NewNotificationHandler(svc.Notifications).RegisterNotificationRoutes(api.Group("/notifications", requireUser))

	e.RouteNotFound("/*", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "Route not found")
	})
	logging.Info().Int("routes", len(e.Routes())).Msg("routes configured")
}
