package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"optic-storefront/internal/config"
	"optic-storefront/internal/database"
	"optic-storefront/internal/logger"
	"optic-storefront/internal/repository"
	"optic-storefront/internal/server"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, stopSweeper context.CancelFunc, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown
	stopSweeper()

	// The server has 30 seconds to finish the requests it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	done <- true
}

func openRedis(cfg config.RedisConfig, log *zap.Logger) *redis.Client {
	if !cfg.Enabled() {
		log.Info("Redis not configured, rate limiting disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis", zap.String("addr", cfg.Addr()), zap.Error(err))
	}
	return client
}

func openDatabase(cfg *config.Config, log *zap.Logger) *sql.DB {
	if cfg.Snapshot.Driver != repository.DriverPostgres {
		return nil
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info("Database health check", zap.Any("health", database.Health(ctx, db)))

	if err := database.RunMigrations(db, log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	return db
}

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting optical storefront",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("backend", cfg.Backend.BaseURL),
		zap.String("snapshot_driver", cfg.Snapshot.Driver),
	)

	rdb := openRedis(cfg.Redis, log)
	db := openDatabase(cfg, log)

	snapshots, err := repository.OpenSnapshotRepository(cfg.Snapshot.Driver, db, rdb, cfg.Snapshot.Prefix, cfg.Snapshot.TTL)
	if err != nil {
		log.Fatal("Failed to open snapshot repository", zap.Error(err))
	}

	srv := server.NewServer(cfg, log, server.Dependencies{
		DB:        db,
		Redis:     rdb,
		Snapshots: snapshots,
	})

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go srv.Sessions().Run(sweepCtx, time.Minute, cfg.Server.SessionIdle)

	done := make(chan bool, 1)
	go gracefulShutdown(srv, log, stopSweeper, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	<-done
	log.Info("Graceful shutdown complete")
}
