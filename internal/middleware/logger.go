package middleware

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
)

type contextKey string

const loggerKey = contextKey("logger")

// Logger injects a request-scoped slog.Logger carrying the request ID into
// the request context. Place it after the RequestID middleware.
func Logger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := c.Response().Header().Get(echo.HeaderXRequestID)
		requestLogger := slog.Default().With("request_id", reqID)

		newCtx := context.WithValue(c.Request().Context(), loggerKey, requestLogger)
		c.SetRequest(c.Request().WithContext(newCtx))

		return next(c)
	}
}

// FromContext returns the request-scoped logger, or the default logger when
// the request did not pass through the Logger middleware.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
