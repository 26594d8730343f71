package serverutils

import (
	"ai-consultancy-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors escaping the controllers into
// the JSON envelope, mapping error kinds to HTTP statuses. No failure
// leaves the API without a body the client can display.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		if fiberErr, ok := err.(*fiber.Error); ok {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message, string(apperror.KindUnknown)))
		}

		kind := apperror.KindOf(err)
		return ctx.Status(statusFor(kind)).JSON(ErrorResponse(err.Error(), string(kind)))
	}
}

func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindConflict:
		return fiber.StatusConflict
	case apperror.KindConstraint:
		return fiber.StatusUnprocessableEntity
	case apperror.KindConfig:
		return fiber.StatusServiceUnavailable
	case apperror.KindAgent:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
