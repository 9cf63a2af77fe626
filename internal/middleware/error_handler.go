package middleware

import (
	"errors"
	"log/slog"

	"katalog/internal/apperror"
	"katalog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders every error returned by a handler as the JSON envelope.
// Uncategorized errors are logged and reported as a generic server error.
// A body rejected by the transport for its size is reported like an
// oversize image.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code != fiber.StatusRequestEntityTooLarge {
			return c.Status(fe.Code).JSON(models.Envelope{Success: false, Message: fe.Message})
		}
		err = apperror.Validation(MsgTooLarge)
	}

	status := apperror.StatusCode(err)
	if status >= fiber.StatusInternalServerError {
		slog.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"kind", apperror.KindOf(err).String(),
			"error", err,
		)
	}
	return c.Status(status).JSON(models.Envelope{
		Success: false,
		Message: apperror.PublicMessage(err),
	})
}
