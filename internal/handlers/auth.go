package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/parlorchat/parlor/internal/auth"
	"github.com/parlorchat/parlor/internal/domain"
	"github.com/parlorchat/parlor/internal/middleware"
)

// AuthHandler handles registration and login, minting the session tokens
// consumed by the WebSocket gateway's authenticate event.
type AuthHandler struct {
	users  domain.UserRepository
	tokens *auth.TokenService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users domain.UserRepository, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// tokenResponse is the success body shared by register and login.
type tokenResponse struct {
	Token string `json:"token"`
	ID    string `json:"id"`
	Name  string `json:"name"`
}

// RegisterPost creates a new user and returns a session token (POST /api/register).
func (h *AuthHandler) RegisterPost(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		middleware.FromContext(c.Request().Context()).Error("Failed to hash password", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create account")
	}

	user, err := h.users.Create(c.Request().Context(), &domain.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return echo.NewHTTPError(http.StatusConflict, "a user with this name already exists")
		}
		middleware.FromContext(c.Request().Context()).Error("Error creating user", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create account")
	}

	token, err := h.tokens.Issue(user.ID, user.Name)
	if err != nil {
		middleware.FromContext(c.Request().Context()).Error("Failed to issue token", "userID", user.ID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create account")
	}

	return c.JSON(http.StatusCreated, tokenResponse{Token: token, ID: user.ID, Name: user.Name})
}

// LoginPost checks credentials and returns a session token (POST /api/login).
func (h *AuthHandler) LoginPost(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.users.FindByName(c.Request().Context(), req.Name)
	if err != nil {
		middleware.FromContext(c.Request().Context()).Error("Error finding user", "name", req.Name, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}
	if user == nil {
		middleware.FromContext(c.Request().Context()).Warn("Failed login attempt", "name", req.Name)
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid name or password")
	}

	ok, err := auth.ComparePassword(req.Password, user.Password)
	if err != nil || !ok {
		middleware.FromContext(c.Request().Context()).Warn("Failed login attempt", "name", req.Name)
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid name or password")
	}

	token, err := h.tokens.Issue(user.ID, user.Name)
	if err != nil {
		middleware.FromContext(c.Request().Context()).Error("Failed to issue token", "userID", user.ID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}

	return c.JSON(http.StatusOK, tokenResponse{Token: token, ID: user.ID, Name: user.Name})
}
