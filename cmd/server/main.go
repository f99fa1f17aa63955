package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Mugdhazope/hemut-qna/internal/auth"
	"github.com/Mugdhazope/hemut-qna/internal/broadcast"
	"github.com/Mugdhazope/hemut-qna/internal/config"
	"github.com/Mugdhazope/hemut-qna/internal/database"
	"github.com/Mugdhazope/hemut-qna/internal/logging"
	"github.com/Mugdhazope/hemut-qna/internal/qa"
	"github.com/Mugdhazope/hemut-qna/internal/redis"
	"github.com/Mugdhazope/hemut-qna/internal/server"
	"github.com/Mugdhazope/hemut-qna/internal/version"
	"github.com/Mugdhazope/hemut-qna/internal/websocket"
)

func setupConfig() *config.Config {
	// Best effort: absent .env is fine in production
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(ctx, db); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return db
}

func setupRedis(ctx context.Context, cfg *config.Config) *goredis.Client {
	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func runGracefulShutdown(srv *server.Server, registry *websocket.Registry, subscription *redis.Subscription) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		if subscription != nil {
			subscription.Close()
		}
		registry.Stop()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	build := version.Get()
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port,
		"version", build.Version, "commit", build.Commit)

	pool := setupDB(cfg)
	defer pool.Close()

	questionRepo := database.NewQuestionRepository(pool)
	userRepo := database.NewUserRepository(pool)

	authService := auth.NewService(userRepo, cfg.JWTSecret, time.Duration(cfg.TokenTTLMinutes)*time.Minute, clock)

	registry := websocket.NewRegistry(cfg.MaxClients, clock)

	// Redis is optional: without it, broadcasts stay instance-local.
	var (
		redisClient  *goredis.Client
		publisher    broadcast.Publisher
		subscription *redis.Subscription
	)
	if cfg.RedisURL != "" {
		redisClient = setupRedis(context.Background(), cfg)
		defer func() { _ = redisClient.Close() }()

		pubsub := redis.NewPubSub(redisClient)
		publisher = pubsub
		subscription = pubsub.Subscribe(context.Background())
	}

	coordinator := broadcast.NewCoordinator(registry, publisher)

	if subscription != nil {
		go func() {
			for data := range subscription.Ch {
				coordinator.Deliver(data)
			}
		}()
	}

	qaService := qa.NewService(questionRepo, authService, coordinator, clock)

	srv := server.NewServer(cfg, qaService, authService, registry, pool, redisClient)

	done := runGracefulShutdown(srv, registry, subscription)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
