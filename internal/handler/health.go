package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/deppfellow/post-api/internal/middleware"
	"github.com/deppfellow/post-api/internal/server"
)

var (
	errNotConfigured = errors.New("not configured")
	errUnreachable   = errors.New("unreachable at startup")
)

// HealthHandler serves GET /status.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

type healthCheck struct {
	name     string
	required bool
	check    func(ctx context.Context) error
}

// CheckHealth reports each enabled dependency check. Only the database is
// required: a failing database answers 503, while Redis and RabbitMQ
// failures are reported but leave the service healthy since the post cache
// and events degrade gracefully.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	obs := h.server.Config.Observability

	timeout := 5 * time.Second
	if obs != nil && obs.HealthChecks.Timeout > 0 {
		timeout = obs.HealthChecks.Timeout
	}

	checks := map[string]any{}
	healthy := true

	for _, hc := range h.checks() {
		if obs != nil && !obs.HealthCheckEnabled(hc.name) {
			continue
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
		checkStart := time.Now()
		err := hc.check(ctx)
		cancel()
		elapsed := time.Since(checkStart)

		if err == nil {
			checks[hc.name] = map[string]any{
				"status":        "healthy",
				"response_time": elapsed.String(),
			}
			continue
		}

		if errors.Is(err, errNotConfigured) && !hc.required {
			checks[hc.name] = map[string]any{"status": "skipped"}
			continue
		}

		checks[hc.name] = map[string]any{
			"status":        "unhealthy",
			"response_time": elapsed.String(),
			"error":         err.Error(),
		}
		if hc.required {
			healthy = false
		}

		logger.Error().
			Err(err).
			Str("check", hc.name).
			Dur("response_time", elapsed).
			Msg("health check failed")

		if app := h.server.LoggerService.GetApplication(); app != nil {
			app.RecordCustomEvent("HealthCheckError", map[string]any{
				"check_type":       hc.name,
				"operation":        "health_check",
				"error_type":       hc.name + "_unhealthy",
				"response_time_ms": elapsed.Milliseconds(),
				"error_message":    err.Error(),
			})
		}
	}

	response := map[string]any{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	if !healthy {
		response["status"] = "unhealthy"
		logger.Warn().Dur("total_duration", time.Since(start)).Msg("health check failed")
		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().Dur("total_duration", time.Since(start)).Msg("health check passed")
	return c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) checks() []healthCheck {
	return []healthCheck{
		{
			name:     "database",
			required: true,
			check: func(ctx context.Context) error {
				if h.server.DB == nil || h.server.DB.Pool == nil {
					return errNotConfigured
				}
				return h.server.DB.Pool.Ping(ctx)
			},
		},
		{
			name: "redis",
			check: func(ctx context.Context) error {
				if h.server.Redis == nil {
					if h.server.Config.Redis.Address != "" {
						return errUnreachable
					}
					return errNotConfigured
				}
				return h.server.Redis.Ping(ctx).Err()
			},
		},
		{
			name: "rabbitmq",
			check: func(ctx context.Context) error {
				url := h.server.Config.Integration.RabbitMQURL
				if url == "" {
					return errNotConfigured
				}
				conn, err := amqp.DialConfig(url, amqp.Config{
					Dial: amqp.DefaultDial(time.Until(deadlineOr(ctx, time.Now().Add(5*time.Second)))),
				})
				if err != nil {
					return err
				}
				return conn.Close()
			},
		},
	}
}

func deadlineOr(ctx context.Context, fallback time.Time) time.Time {
	if deadline, ok := ctx.Deadline(); ok {
		return deadline
	}
	return fallback
}
