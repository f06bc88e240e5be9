package transport

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/unionhall/outreach-engine/internal/domain"
)

// ErrorHandler maps domain errors to HTTP responses with the
// {"error": "..."} envelope. Unrecognized errors get a generic 500
// body so internals never leak to callers.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "internal server error"

		var fiberErr *fiber.Error
		switch {
		case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrPrecondition):
			code = fiber.StatusBadRequest
			message = err.Error()
		case errors.Is(err, domain.ErrNotFound):
			code = fiber.StatusNotFound
			message = err.Error()
		case errors.Is(err, domain.ErrUnauthenticated):
			code = fiber.StatusUnauthorized
			message = err.Error()
		case errors.Is(err, domain.ErrForbidden):
			code = fiber.StatusForbidden
			message = err.Error()
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
			message = fiberErr.Message
		}

		if code >= fiber.StatusInternalServerError {
			logger.Error("request error",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err),
			)
		}

		return c.Status(code).JSON(fiber.Map{
			"error": message,
		})
	}
}
