package httpapi

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"go.uber.org/zap"
)

// errorBody is the single wire shape for every failure: a machine-readable
// code plus a human message. Upstream internals never appear here.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// NewErrorHandler renders the error taxonomy at the request boundary. Nothing
// is retried and nothing is fatal; every failure is scoped to one request.
func NewErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *fiber.Ctx, err error) error {
		var richErr *goerrors.Error
		if !goerrors.As(err, &richErr) {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return c.Status(fiberErr.Code).JSON(errorResponse{
					Error: errorBody{Code: "HTTP_ERROR", Message: fiberErr.Message},
				})
			}
			richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "internal server error").
				WithCode(goerrors.CodeInternal)
		}

		status := richErr.Code
		if status == 0 {
			status = http.StatusInternalServerError
		}

		code := richErr.TextCode
		if code == "" {
			code = "INTERNAL_ERROR"
		}

		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("code", code),
			zap.String("path", c.Path()),
			zap.Error(err),
		}
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", fields...)
		} else {
			logger.Debug("request rejected", fields...)
		}

		return c.Status(status).JSON(errorResponse{
			Error: errorBody{Code: code, Message: richErr.Message},
		})
	}
}
