package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const readinessTimeout = 2 * time.Second

type livenessResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type readinessResponse struct {
	Ready  bool                   `json:"ready"`
	Checks map[string]healthCheck `json:"checks"`
}

type healthCheck struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
}

func RegisterHealthRoutes(app fiber.Router, sqlDB *sql.DB, rdb *redis.Client) {
	app.Get("/livez", LivezHandler())
	app.Get("/readyz", ReadyzHandler(sqlDB, rdb))
}

func LivezHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(livenessResponse{
			Status:  "ok",
			Service: "outreach-engine",
		})
	}
}

// ReadyzHandler reports whether campaign reads and sends can proceed: the
// campaign store and the rate-limiter backend both have to answer.
func ReadyzHandler(sqlDB *sql.DB, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]healthCheck{
			"database": runCheck(func() error { return sqlDB.PingContext(ctx) }),
			"redis":    runCheck(func() error { return rdb.Ping(ctx).Err() }),
		}

		ready := true
		for _, check := range checks {
			if check.Status != "ok" {
				ready = false
			}
		}

		statusCode := fiber.StatusOK
		if !ready {
			statusCode = fiber.StatusServiceUnavailable
		}

		return c.Status(statusCode).JSON(readinessResponse{
			Ready:  ready,
			Checks: checks,
		})
	}
}

func runCheck(ping func() error) healthCheck {
	start := time.Now()
	err := ping()
	check := healthCheck{
		Status:    "ok",
		LatencyMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		check.Status = "down"
		check.Error = err.Error()
	}
	return check
}
