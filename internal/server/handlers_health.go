package server

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Mugdhazope/hemut-qna/internal/version"
)

// postgresHealthChecker is a minimal interface for PostgreSQL health checks,
// satisfied by *pgxpool.Pool.
type postgresHealthChecker interface {
	Ping(ctx context.Context) error
}

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := time.Since(s.startTime).Seconds()
	return c.JSON(200, map[string]any{
		"status": "ok",
		"uptime": uptime,
	})
}

func (s *Server) handleReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	checks := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"postgres", s.checkPostgres},
		{"redis", s.checkRedis},
	}

	for _, check := range checks {
		if err := check.fn(ctx); err != nil {
			return c.JSON(503, map[string]any{
				"status":       "unhealthy",
				"failed_check": check.name,
				"error":        err.Error(),
			})
		}
	}

	return c.JSON(200, map[string]string{"status": "ready"})
}

func (s *Server) handlePing(c echo.Context) error {
	return c.JSON(200, map[string]string{"status": "ok", "message": "pong"})
}

func (s *Server) handleVersion(c echo.Context) error {
	return c.JSON(200, version.Get())
}

func (s *Server) checkPostgres(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Server) checkRedis(ctx context.Context) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Ping(ctx).Err()
}
