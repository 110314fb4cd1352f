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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/pinclub/pin-engine/brackets"
	"github.com/pinclub/pin-engine/config"
	"github.com/pinclub/pin-engine/db"
	"github.com/pinclub/pin-engine/handlers"
	"github.com/pinclub/pin-engine/repositories"
	"github.com/pinclub/pin-engine/routes"
	"github.com/pinclub/pin-engine/services"
	"github.com/pinclub/pin-engine/storage"
)

const seasonSweepInterval = time.Minute // How often expired seasons are closed

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

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
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Badge icons live in Cloudflare R2; the uploader is optional for
	// local development.
	var uploader storage.FileUploader
	if cfg.R2AccountID != "" {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 not configured, badge icon uploads disabled")
	}

	wsHub := brackets.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket hub started")

	txr := repositories.NewSQLTransactor(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	leagueRepo := repositories.NewPostgresLeagueRepository(dbConn)
	rankingRepo := repositories.NewPostgresRankingRepository(dbConn)
	rapidMatchRepo := repositories.NewPostgresRapidMatchRepository(dbConn)
	seasonRepo := repositories.NewPostgresSeasonRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	bracketMatchRepo := repositories.NewPostgresBracketMatchRepository(dbConn)
	logger.Info("repositories initialized")

	scoring := config.DefaultScoring()

	authService := services.NewAuthService(playerRepo)
	playerService := services.NewPlayerService(playerRepo)
	rankingService := services.NewRankingService(rankingRepo, playerRepo)
	leagueService := services.NewLeagueService(leagueRepo, rankingService)
	badgeService := services.NewBadgeService(uploader, config.DefaultRewards())
	rapidMatchService := services.NewRapidMatchService(
		txr,
		rapidMatchRepo,
		seasonRepo,
		playerRepo,
		rankingService,
		scoring[config.ModeRapid],
		wsHub,
		logger,
	)
	tournamentService := services.NewTournamentService(
		txr,
		tournamentRepo,
		bracketMatchRepo,
		leagueRepo,
		playerRepo,
		rankingService,
		brackets.NewSingleEliminationGenerator(),
		scoring[config.ModeSuper],
		wsHub,
		logger,
	)
	seasonService := services.NewSeasonService(
		txr,
		seasonRepo,
		rapidMatchRepo,
		playerRepo,
		rankingService,
		badgeService,
		wsHub,
		logger,
	)
	predictionService := services.NewPredictionService(playerRepo, rapidMatchRepo)
	logger.Info("services initialized")

	// Close seasons whose end date has passed, at startup and then on a
	// fixed interval.
	go func() {
		ticker := time.NewTicker(seasonSweepInterval)
		defer ticker.Stop()
		logger.Info("season sweep started", slog.Duration("interval", seasonSweepInterval))

		if err := seasonService.AutoCloseExpired(context.Background()); err != nil {
			logger.Error("season sweep: initial run failed", slog.Any("error", err))
		}
		for range ticker.C {
			if err := seasonService.AutoCloseExpired(context.Background()); err != nil {
				logger.Error("season sweep: periodic run failed", slog.Any("error", err))
			}
		}
	}()

	router := chi.NewRouter()
	routes.SetupRoutes(router, routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		Player:     handlers.NewPlayerHandler(playerService),
		League:     handlers.NewLeagueHandler(leagueService),
		RapidMatch: handlers.NewRapidMatchHandler(rapidMatchService),
		Tournament: handlers.NewTournamentHandler(tournamentService),
		Season:     handlers.NewSeasonHandler(seasonService),
		Prediction: handlers.NewPredictionHandler(predictionService),
		Badge:      handlers.NewBadgeHandler(badgeService),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, logger),
	}, cfg.JWTSecretKey)
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
		logger.Info("server stopped gracefully")
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
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
