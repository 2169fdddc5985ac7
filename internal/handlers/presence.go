package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/parlorchat/parlor/internal/chat"
)

// PresenceHandler exposes the current presence registry over HTTP.
type PresenceHandler struct {
	registry *chat.Registry
}

// NewPresenceHandler creates a new PresenceHandler.
func NewPresenceHandler(registry *chat.Registry) *PresenceHandler {
	return &PresenceHandler{registry: registry}
}

// presenceResponse lists who is online. Users connected from several
// devices appear once per connection.
type presenceResponse struct {
	Count int      `json:"count"`
	Names []string `json:"names"`
}

// Get returns the online session count and names (GET /api/presence).
func (h *PresenceHandler) Get(c echo.Context) error {
	names := h.registry.Names()
	if names == nil {
		names = []string{}
	}
	return c.JSON(http.StatusOK, presenceResponse{Count: len(names), Names: names})
}
