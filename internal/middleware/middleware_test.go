package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	e := echo.New()
	e.POST("/login", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	}, RateLimiter(5))

	t.Run("allows requests within the limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("blocks requests exceeding the limit", func(t *testing.T) {
		clientIP := "192.0.2.2:1234"

		for i := 0; i < 5; i++ {
			req := httptest.NewRequest(http.MethodPost, "/login", nil)
			req.RemoteAddr = clientIP
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, "request %d should be allowed", i+1)
		}

		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = clientIP
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Contains(t, rec.Body.String(), "Too many requests")
	})
}

func TestLoggerInjectsRequestLogger(t *testing.T) {
	e := echo.New()
	e.Use(echomw.RequestID())
	e.Use(Logger)

	var got *slog.Logger
	e.GET("/", func(c echo.Context) error {
		got = FromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.NotNil(t, got)
	assert.NotEqual(t, slog.Default(), got, "handler should see a request-scoped logger")
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Equal(t, slog.Default(), FromContext(context.Background()))
}
