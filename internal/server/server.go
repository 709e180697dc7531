// Package server holds the application container: config, loggers and the
// connections every other layer shares, plus the HTTP server lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/deppfellow/post-api/internal/config"
	"github.com/deppfellow/post-api/internal/database"
	"github.com/deppfellow/post-api/internal/lib/events"
	"github.com/deppfellow/post-api/internal/lib/job"
	loggerPkg "github.com/deppfellow/post-api/internal/logger"
)

// Server is the shared-resource container. It is not the HTTP server
// itself; that is built by SetupHTTPServer.
type Server struct {
	Config        *config.Config
	Logger        *zerolog.Logger
	LoggerService *loggerPkg.LoggerService
	DB            *database.Database

	// Redis backs the post cache. It is nil when Redis was unreachable at
	// startup, which disables caching.
	Redis *redis.Client

	// Job is nil when the server runs without background workers.
	Job *job.JobService

	Publisher events.Publisher

	httpServer *http.Server
}

// New connects to every dependency and starts the background workers.
//
// The database is required. Redis and RabbitMQ failures are logged and the
// server keeps running: the cache falls back to Postgres and events are
// dropped.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	db, err := database.New(cfg, logger, loggerService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	redisClient := connectRedis(cfg, logger, loggerService)

	publisher := newPublisher(cfg, logger)

	jobService := job.NewJobService(logger, cfg, publisher)
	if err := jobService.Start(); err != nil {
		_ = publisher.Close()
		if redisClient != nil {
			_ = redisClient.Close()
		}
		db.Close()
		return nil, err
	}

	return &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		DB:            db,
		Redis:         redisClient,
		Job:           jobService,
		Publisher:     publisher,
	}, nil
}

// connectRedis returns a client for the configured address, or nil when
// the server does not answer a ping.
func connectRedis(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Address,
	})

	if loggerService.GetApplication() != nil {
		client.AddHook(nrredis.NewHook(client.Options()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error().Err(err).Str("address", cfg.Redis.Address).Msg("Failed to connect to Redis, post cache disabled")
		_ = client.Close()
		return nil
	}

	return client
}

func newPublisher(cfg *config.Config, logger *zerolog.Logger) events.Publisher {
	if cfg.Integration.RabbitMQURL == "" {
		logger.Info().Msg("RabbitMQ not configured, post events are dropped")
		return events.NoopPublisher{}
	}

	publisher, err := events.NewRabbitMQPublisher(cfg.Integration.RabbitMQURL)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to connect to RabbitMQ, post events are dropped")
		return events.NoopPublisher{}
	}

	logger.Info().Str("exchange", events.ExchangeName).Msg("connected to RabbitMQ")
	return publisher
}

// SetupHTTPServer wraps handler in an http.Server using the configured
// timeouts (seconds).
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start blocks serving HTTP until Shutdown.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests, then releases every dependency.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	if s.Job != nil {
		s.Job.Stop()
	}

	if s.Publisher != nil {
		if err := s.Publisher.Close(); err != nil {
			s.Logger.Warn().Err(err).Msg("failed to close event publisher")
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			s.Logger.Warn().Err(err).Msg("failed to close redis client")
		}
	}

	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}
