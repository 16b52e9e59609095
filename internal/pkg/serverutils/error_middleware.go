// FILE: internal/pkg/serverutils/error_middleware.go
package serverutils

import (
	"errors"

	"presto-copilot-be/internal/dto"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware translates errors returned by handlers into the
// response envelope. Typed domain errors carry their own status codes;
// anything unrecognized becomes a 500.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var throttled *dto.ThrottledError
		if errors.As(err, &throttled) {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(dto.ThrottledResponse{
				Success:   false,
				Code:      fiber.StatusTooManyRequests,
				Message:   "Too many requests. Wait a moment before asking again.",
				ErrorType: "throttled",
				Data: dto.ThrottledData{
					RetryAfterMs: throttled.RetryAfter.Milliseconds(),
				},
			})
		}

		var busy *dto.SessionBusyError
		if errors.As(err, &busy) {
			return ctx.Status(fiber.StatusConflict).JSON(ErrorResponse(fiber.StatusConflict, "A query is already running for this session"))
		}

		var notFound *dto.SessionNotFoundError
		if errors.As(err, &notFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(fiber.StatusNotFound, "Session not found or expired"))
		}

		var unknownStore *dto.UnknownStoreError
		if errors.As(err, &unknownStore) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(fiber.StatusBadRequest, unknownStore.Error()))
		}

		var unknownModel *dto.UnknownModelError
		if errors.As(err, &unknownModel) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(fiber.StatusBadRequest, unknownModel.Error()))
		}

		var resolution *dto.StoreResolutionError
		if errors.As(err, &resolution) {
			return ctx.Status(fiber.StatusBadGateway).JSON(ErrorResponse(fiber.StatusBadGateway, "Could not reach the document store service"))
		}

		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(fiber.StatusBadRequest, validationErrs.Error()))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
	}
}
