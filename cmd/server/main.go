package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/yapli/internal/adapter/api"
	"github.com/V4T54L/yapli/internal/adapter/api/handler"
	"github.com/V4T54L/yapli/internal/adapter/metrics"
	"github.com/V4T54L/yapli/internal/adapter/repository/postgres"
	redisrepo "github.com/V4T54L/yapli/internal/adapter/repository/redis"
	"github.com/V4T54L/yapli/internal/pkg/config"
	"github.com/V4T54L/yapli/internal/pkg/logger"
	"github.com/V4T54L/yapli/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logger.New(cfg.LogLevel)
	slog.SetDefault(logger)

	m := metrics.New(prometheus.DefaultRegisterer)

	// --- Graceful Shutdown Context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database and Redis Connections ---
	// Both handles are created once and shared by every request.
	db, err := postgres.Open(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		logger.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisAddr)
	if err != nil {
		logger.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("could not connect to redis, live updates unavailable until it recovers", "error", err)
	}

	// --- Initialize Repositories ---
	userRepo := postgres.NewUserRepository(db)
	roomRepo := postgres.NewChatroomRepository(db)
	messageRepo := postgres.NewMessageRepository(db)
	broker := redisrepo.NewMessageBroker(redisClient, logger)

	// --- Initialize Use Cases ---
	services := api.Services{
		Names:      usecase.NewRoomNameUseCase(userRepo, roomRepo, logger),
		Rooms:      usecase.NewRoomUseCase(userRepo, roomRepo, nil, logger),
		Messages:   usecase.NewMessageUseCase(roomRepo, messageRepo, broker, logger),
		Auth:       usecase.NewAuthUseCase(userRepo, cfg.JWTSecret, cfg.JWTExpiry, logger),
		Subscriber: broker,
	}

	// --- Start Admin and Metrics Server ---
	checks := map[string]handler.HealthCheck{
		"postgres": db.PingContext,
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	}
	adminServer := &http.Server{
		Addr:    cfg.AdminServerAddr,
		Handler: api.NewAdminRouter(prometheus.DefaultGatherer, checks, logger),
	}

	go func() {
		logger.Info("starting admin & metrics server", "addr", adminServer.Addr)
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("admin & metrics server failed", "error", err)
		}
	}()

	// --- Initialize API Server ---
	apiServer := &http.Server{
		Addr:         cfg.APIServerAddr,
		Handler:      api.NewRouter(cfg, logger, m, services),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(_ net.Listener) context.Context { return ctx },
	}

	go func() {
		logger.Info("starting api server", "addr", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("api server failed", "error", err)
			stop() // Trigger shutdown on server error
		}
	}()

	// --- Wait for shutdown signal ---
	<-ctx.Done()
	logger.Info("shutting down servers...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("admin server shutdown failed", "error", err)
	}
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("api server shutdown failed", "error", err)
	}

	logger.Info("servers shut down gracefully")
}
