package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"familycircle/internal/authstate"
	"familycircle/internal/config"
	"familycircle/internal/database"
	"familycircle/internal/handlers"
	"familycircle/internal/logger"
	"familycircle/internal/repository"
	"familycircle/internal/service"
	"familycircle/internal/storage"
)

func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.Initialize(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	blobs, err := storage.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize blob storage")
	}

	userRepo := repository.NewUserRepository(db)
	circleRepo := repository.NewCircleRepository(db)
	postRepo := repository.NewPostRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	eventRepo := repository.NewEventRepository(db)

	emailService, err := service.NewEmailService(cfg.SESRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize email service")
	}

	authService := service.NewAuthService(userRepo, cfg.SessionDuration)

	var runner service.Runner = service.SequentialRunner{}
	if cfg.SignupRollback {
		runner = service.CompensatingRunner{}
	}
	provisionService := service.NewProvisionService(userRepo, circleRepo, blobs, runner)
	cleanupService := service.NewCleanupService(
		authService, userRepo, circleRepo, postRepo, taskRepo, eventRepo, blobs,
	)

	circleService := service.NewCircleService(circleRepo)
	postService := service.NewPostService(postRepo)
	taskService := service.NewTaskService(taskRepo)
	eventService := service.NewEventService(eventRepo)

	// The bridge mirrors session changes into an observable state, the
	// same shape mobile clients consume via /api/auth/state.
	bridge := authstate.New(nil)
	unsubscribe := authService.SubscribeSessionChanges(bridge.Resolve)
	defer unsubscribe()
	bridge.Subscribe(func(s authstate.State) {
		log.Debug().Bool("loading", s.Loading).Bool("signed_in", s.User != nil).Msg("Auth state changed")
	})

	router := handlers.NewRouter(
		handlers.NewAuthHandler(authService, provisionService, emailService, cfg.UploadMaxSize),
		handlers.NewOAuthHandler(authService, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.AppBaseURL),
		handlers.NewAccountHandler(authService, cleanupService, blobs, cfg.UploadMaxSize),
		handlers.NewCircleHandler(circleService),
		handlers.NewPostHandler(postService),
		handlers.NewTaskHandler(taskService),
		handlers.NewEventHandler(eventService),
		authService,
	)

	mux := http.NewServeMux()
	router.RegisterRoutes(mux)

	// Locally stored blobs are served straight from disk.
	if local, ok := blobs.(*storage.LocalStore); ok {
		mux.Handle("GET /files/", http.StripPrefix("/files/", http.FileServer(http.Dir(local.Root()))))
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@hourly", func() {
		if err := authService.CleanupExpiredSessions(); err != nil {
			log.Error().Err(err).Msg("Session cleanup failed")
		}
		if err := authService.CleanupExpiredPasswordResetTokens(); err != nil {
			log.Error().Err(err).Msg("Reset token cleanup failed")
		}
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule cleanup job")
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handlers.Logging(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
