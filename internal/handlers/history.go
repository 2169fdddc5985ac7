package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/parlorchat/parlor/internal/domain"
	"github.com/parlorchat/parlor/internal/middleware"
)

// HistoryHandler serves recent messages over plain request/response HTTP
// for clients that are not holding a live connection.
type HistoryHandler struct {
	messages domain.MessageRepository
	limit    int
}

// NewHistoryHandler creates a HistoryHandler capped at limit messages.
func NewHistoryHandler(messages domain.MessageRepository, limit int) *HistoryHandler {
	return &HistoryHandler{messages: messages, limit: limit}
}

// Get returns the most recent messages, oldest first (GET /api/messages).
// An optional ?limit= query parameter may request fewer, never more.
func (h *HistoryHandler) Get(c echo.Context) error {
	limit := h.limit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		if n < limit {
			limit = n
		}
	}

	messages, err := h.messages.Recent(c.Request().Context(), limit)
	if err != nil {
		middleware.FromContext(c.Request().Context()).Error("Failed to fetch message history", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not load messages")
	}
	if messages == nil {
		messages = []*domain.Message{}
	}

	return c.JSON(http.StatusOK, messages)
}
