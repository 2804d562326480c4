package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anonto42/pingup/backend/internal/middleware"
	"github.com/anonto42/pingup/backend/internal/repositories"
	"github.com/anonto42/pingup/backend/internal/router"
	"github.com/anonto42/pingup/backend/internal/services"
	"github.com/anonto42/pingup/backend/pkg/config"
	"github.com/anonto42/pingup/backend/pkg/firebase"
	"github.com/anonto42/pingup/backend/pkg/logging"
	"github.com/anonto42/pingup/backend/pkg/storage"
	"github.com/anonto42/pingup/backend/pkg/webhook"
	"github.com/anonto42/pingup/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logging.Init(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize databases")
	}
	defer db.CloseDB()

	media, err := storage.New(ctx, cfg.Media)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize media store")
	}
	logging.Info().Str("store", media.Name()).Msg("media store ready")

	resolve := middleware.HeaderIdentity()
	if cfg.AuthMode == config.AuthModeFirebase {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to initialize Firebase")
		}
		resolve = middleware.FirebaseIdentity(firebaseApp.AuthClient)
	}

	var verifier *webhook.Verifier
	if cfg.ClerkWebhookSecret != "" {
		if verifier, err = webhook.NewVerifier(cfg.ClerkWebhookSecret); err != nil {
			logging.Fatal().Err(err).Msg("invalid CLERK_WEBHOOK_SECRET")
		}
	} else {
		logging.Warn().Msg("CLERK_WEBHOOK_SECRET not set, webhook deliveries will be rejected")
	}

	// --- Repositories and services ---
	userRepo := repositories.NewMongoUserRepository(db.Database)
	postRepo := repositories.NewMongoPostRepository(db.Database)
	storyRepo := repositories.NewMongoStoryRepository(db.Database)
	messageRepo := repositories.NewMongoMessageRepository(db.Database)
	notificationRepo := repositories.NewPostgresNotificationRepository(db.Postgres)

	clock := services.RealClock{}
	notifier := services.NewNotifier(notificationRepo)
	storyService := services.NewStoryService(storyRepo, userRepo, media, clock)
	svc := router.Services{
		Users:         services.NewUserService(userRepo, postRepo, media, notifier),
		Graph:         services.NewGraphService(userRepo, notifier),
		Posts:         services.NewPostService(postRepo, userRepo, media, notifier, clock),
		Stories:       storyService,
		Messages:      services.NewMessageService(messageRepo, userRepo, media, notifier, clock),
		Notifications: services.NewNotificationService(notificationRepo, userRepo, clock),
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	router.SetupMiddleware(e, cfg)
	router.SetupRoutes(e, svc, resolve, verifier)

	go services.NewStorySweeper(storyService, cfg.StorySweepInterval).Run(ctx)

	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logging.Info().Str("port", cfg.MetricsPort).Msg("metrics server listening")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	go func() {
		logging.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("server shutdown failed")
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("metrics server shutdown failed")
	}
}
