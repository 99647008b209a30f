package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/deppfellow/oracle-automation/internal/middleware"
	"github.com/deppfellow/oracle-automation/internal/server"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// HealthHandler answers GET /status for load balancers and monitors.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

type HealthCheck struct {
	Status       string `json:"status"`
	Dialect      string `json:"dialect,omitempty"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]HealthCheck `json:"checks"`
}

// CheckHealth pings the database within the health check timeout. It
// answers 200 when every check passes and 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := HealthResponse{
		Status:      statusHealthy,
		Timestamp:   time.Now().UTC(),
		Environment: h.server.Config.Primary.Env,
		Checks:      map[string]HealthCheck{},
	}

	if cfg := h.server.Config.Observability.HealthChecks; cfg.Enabled {
		ctx, cancel := context.WithTimeout(c.Request().Context(), cfg.Timeout)
		defer cancel()

		check := h.checkDatabase(ctx, &logger)
		response.Checks["database"] = check
		if check.Status != statusHealthy {
			response.Status = statusUnhealthy
		}
	}

	if response.Status != statusHealthy {
		return c.JSON(http.StatusServiceUnavailable, response)
	}
	return c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) checkDatabase(ctx context.Context, logger *zerolog.Logger) HealthCheck {
	start := time.Now()
	err := h.server.DB.Ping(ctx)
	elapsed := time.Since(start)

	check := HealthCheck{
		Status:       statusHealthy,
		Dialect:      h.server.DB.Dialect,
		ResponseTime: elapsed.String(),
	}

	if err == nil {
		logger.Debug().Dur("response_time", elapsed).Msg("database health check passed")
		return check
	}

	check.Status = statusUnhealthy
	check.Error = err.Error()

	logger.Error().Err(err).Dur("response_time", elapsed).Msg("database health check failed")

	if app := h.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("HealthCheckError", map[string]any{
			"check_type":       "database",
			"dialect":          h.server.DB.Dialect,
			"response_time_ms": elapsed.Milliseconds(),
			"error_message":    err.Error(),
		})
	}
	return check
}
