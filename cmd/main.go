package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brainbattle/arena-api/config"
	"github.com/brainbattle/arena-api/db"
	"github.com/brainbattle/arena-api/handlers"
	"github.com/brainbattle/arena-api/repositories"
	api "github.com/brainbattle/arena-api/routes"
	"github.com/brainbattle/arena-api/services"
	"github.com/brainbattle/arena-api/storage"
	"github.com/go-chi/chi/v5"
)

// @title           Arena Tournament API
// @version         1.0
// @description     REST API for managing eSports tournaments, team rosters and match schedules.
// @BasePath        /api
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	if err := db.Migrate(dbConn); err != nil {
		logger.Error("failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database migrations applied")

	var uploader storage.FileUploader
	if cfg.MediaConfigured() {
		uploader, err = storage.NewS3Uploader(storage.S3UploaderConfig{
			Endpoint:        cfg.MediaEndpoint,
			AccessKeyID:     cfg.MediaAccessKeyID,
			SecretAccessKey: cfg.MediaSecretAccessKey,
			BucketName:      cfg.MediaBucketName,
			PublicBaseURL:   cfg.MediaPublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize media storage", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("media storage initialized")
	} else {
		logger.Warn("media storage not configured, logo uploads disabled")
	}

	txBeginner := repositories.NewTxBeginner(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)

	tournamentService := services.NewTournamentService(txBeginner, tournamentRepo, teamRepo, matchRepo, uploader, time.Now)
	teamService := services.NewTeamService(txBeginner, teamRepo, tournamentRepo, matchRepo, uploader)
	matchService := services.NewMatchService(matchRepo, teamRepo, tournamentRepo, uploader, time.Now)
	bracketService := services.NewBracketService(txBeginner, tournamentRepo, teamRepo, matchRepo, uploader, time.Now)

	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	teamHandler := handlers.NewTeamHandler(teamService)
	matchHandler := handlers.NewMatchHandler(matchService, bracketService)

	router := chi.NewRouter()
	api.SetupRoutes(router, tournamentHandler, teamHandler, matchHandler, cfg.CORSOrigins)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
	}
	logger.Info("application exited")
}
