package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/parlorchat/parlor/internal/handlers"
	"github.com/parlorchat/parlor/internal/middleware"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	authHandler := handlers.NewAuthHandler(s.users, s.tokens)
	historyHandler := handlers.NewHistoryHandler(s.messages, s.Cfg.HistoryLimit)
	presenceHandler := handlers.NewPresenceHandler(s.registry)
	rateLimiter := middleware.RateLimiter(10)

	s.E.POST("/api/register", authHandler.RegisterPost, rateLimiter)
	s.E.POST("/api/login", authHandler.LoginPost, rateLimiter)

	s.E.GET("/api/messages", historyHandler.Get)
	s.E.GET("/api/presence", presenceHandler.Get)

	s.E.GET("/ws", s.gateway.Handler())

	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
}
