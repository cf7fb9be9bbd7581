package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/partyhoard/backend/internal/http/dto"
	"github.com/partyhoard/backend/internal/services"
	"go.uber.org/zap"
)

// respondError maps the domain error taxonomy to HTTP statuses in one place.
// The distinctions are user-actionable, so nothing gets collapsed into a
// generic 500 unless it really is an infrastructure failure.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrNotUndoable), errors.Is(err, services.ErrInsufficientFunds), errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: err.Error()})
	default:
		log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
}
