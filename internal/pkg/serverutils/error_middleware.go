package serverutils

import (
	"errors"

	"ideaforge-be/pkg/generation"

	"github.com/gofiber/fiber/v2"
)

// Sentinel errors services can return without knowing about HTTP.
var (
	ErrNotFound  = errors.New("resource not found or access denied")
	ErrForbidden = errors.New("operation not allowed")
)

// ErrorHandlerMiddleware converts domain errors into JSON error responses.
// Anything unrecognized becomes a 500 with a generic message.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		var providerErr *generation.ProviderError
		switch {
		case errors.Is(err, ErrNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(err.Error()))
		case errors.Is(err, ErrForbidden):
			return ctx.Status(fiber.StatusForbidden).JSON(ErrorResponse(err.Error()))
		case errors.Is(err, generation.ErrInvalidModule):
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(err.Error()))
		case errors.Is(err, generation.ErrMissingContext):
			return ctx.Status(fiber.StatusConflict).JSON(ErrorResponse(err.Error()))
		case errors.Is(err, generation.ErrQuotaExhausted):
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse(err.Error()))
		case errors.As(err, &providerErr):
			return ctx.Status(fiber.StatusBadGateway).JSON(ErrorResponse(err.Error()))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("Internal server error"))
	}
}
