package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"optic-storefront/internal/apiclient"
	"optic-storefront/internal/config"
	custommiddleware "optic-storefront/internal/middleware"
	"optic-storefront/internal/repository"
	"optic-storefront/internal/session"
	"optic-storefront/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies are the external resources the server uses. DB and Redis
// are nil when not configured.
type Dependencies struct {
	DB        *sql.DB
	Redis     *redis.Client
	Snapshots repository.SnapshotRepository
}

type Server struct {
	*http.Server
	config   *config.Config
	logger   *zap.Logger
	deps     Dependencies
	sessions *session.Manager
}

func NewServer(cfg *config.Config, logger *zap.Logger, deps Dependencies) *Server {
	client := apiclient.New(cfg.Backend.BaseURL, cfg.Backend.Timeout, logger.Named("apiclient"))
	sessions := session.NewManager(client, deps.Snapshots, cfg.Inventory.BulkConcurrency, logger.Named("session"))

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      NewRouter(cfg, logger, deps, sessions),
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:   cfg,
		logger:   logger,
		deps:     deps,
		sessions: sessions,
	}

	return server
}

// NewRouter builds the storefront router over sessions
func NewRouter(cfg *config.Config, logger *zap.Logger, deps Dependencies, sessions *session.Manager) http.Handler {
	router := chi.NewRouter()

	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.IsDevelopment()))

	transport.NewHealthHandler(healthChecks(deps), logger).RegisterRoutes(router)

	router.Group(func(r chi.Router) {
		r.Use(custommiddleware.SessionMiddleware(sessions, !cfg.Server.IsDevelopment(), logger))
		r.Use(custommiddleware.RateLimitMiddleware(deps.Redis, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         cfg.Snapshot.Prefix + ":ratelimit",
		}, logger))

		transport.NewProductHandler(logger).RegisterRoutes(r)
		transport.NewAuthHandler(logger).RegisterRoutes(r)
		transport.NewCartHandler(logger).RegisterRoutes(r)
		transport.NewOrderHandler(logger).RegisterRoutes(r)
		transport.NewAppointmentHandler(logger).RegisterRoutes(r)
		transport.NewQuotationHandler(logger).RegisterRoutes(r)
		transport.NewStaffHandler(cfg.Inventory.LowStockThreshold, logger).RegisterRoutes(r)
		transport.NewAdminHandler(logger).RegisterRoutes(r)
	})

	return router
}

func healthChecks(deps Dependencies) map[string]transport.HealthCheck {
	checks := map[string]transport.HealthCheck{}
	if deps.DB != nil {
		checks["database"] = deps.DB.PingContext
	}
	if deps.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return deps.Redis.Ping(ctx).Err()
		}
	}
	return checks
}

// Sessions returns the session manager
func (s *Server) Sessions() *session.Manager {
	return s.sessions
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.deps.Redis != nil {
		if err := s.deps.Redis.Close(); err != nil {
			s.logger.Error("Failed to close Redis connection", zap.Error(err))
		}
	}

	if s.deps.DB != nil {
		if err := s.deps.DB.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
