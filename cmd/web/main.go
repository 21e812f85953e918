package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/mvalderrama/ecoquiz/internal/auth"
	"github.com/mvalderrama/ecoquiz/internal/config"
	"github.com/mvalderrama/ecoquiz/internal/database"
	"github.com/mvalderrama/ecoquiz/internal/logging"
	"github.com/mvalderrama/ecoquiz/internal/ratelimit"
	"github.com/mvalderrama/ecoquiz/internal/result"
	"github.com/mvalderrama/ecoquiz/internal/session"
	"github.com/mvalderrama/ecoquiz/internal/user"
	"github.com/mvalderrama/ecoquiz/internal/web"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	db, err := database.Open(cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Create tables on first run
	if err := database.InitSchema(context.Background(), db); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	userRepo := user.NewRepository(db)
	resultRepo := result.NewRepository(db)

	rateLimiter := ratelimit.NewLimiter(redisClient)

	sessionManager, err := session.NewManager(
		cfg.Session.Key,
		cfg.Session.Duration,
		!cfg.Server.IsDevelopment(), // secure cookies in production
	)
	if err != nil {
		return fmt.Errorf("failed to initialize session manager: %w", err)
	}
	sessionMW := session.NewMiddleware(sessionManager)

	authService := auth.NewService(userRepo, logger)

	renderer, err := web.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to initialize renderer: %w", err)
	}

	handler := web.NewHandler(authService, resultRepo, sessionManager, rateLimiter, renderer, logger)

	router := web.NewRouter(cfg, handler, sessionMW, logger)

	server := web.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initRedis initializes the Redis connection used by the rate limiter
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
