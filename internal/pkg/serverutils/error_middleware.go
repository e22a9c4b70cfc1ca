package serverutils

import (
	"errors"

	"docchat-be/internal/pkg/apperror"
	"docchat-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware translates the error taxonomy into HTTP statuses.
// Internal faults (decode, faulted writes) are logged with their cause but
// surface only a generic message.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		if appErr, ok := apperror.As(err); ok {
			switch appErr.Code {
			case apperror.CodeNotFound:
				return ctx.Status(fiber.StatusNotFound).
					JSON(ErrorResponse(appErr.Message, nil))
			case apperror.CodeValidationFailed:
				return ctx.Status(fiber.StatusBadRequest).
					JSON(ErrorResponse(appErr.Message, appErr.Fields))
			case apperror.CodeDecodeFailed, apperror.CodeWriteFaulted, apperror.CodeInternal:
				log.Error("HTTP", appErr.Message, map[string]interface{}{
					"code":  string(appErr.Code),
					"path":  ctx.Path(),
					"cause": errMessage(appErr.Err),
				})
				return ctx.Status(fiber.StatusInternalServerError).
					JSON(ErrorResponse("internal server error", nil))
			}
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).
				JSON(ErrorResponse(fiberErr.Message, nil))
		}

		log.Error("HTTP", "unhandled error", map[string]interface{}{
			"path":  ctx.Path(),
			"cause": err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse("internal server error", nil))
	}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
