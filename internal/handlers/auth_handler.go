package handlers

import (
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/config"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/dto"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	account, err := h.authService.Register(&req)
	if err != nil {
		return respondError(c, "register", err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.AuthResponse{
		Message: "Registration successful",
		User:    account,
	})
}

// Login sets the session cookie and also returns the token for clients
// that send it as a bearer header.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	account, token, err := h.authService.Login(&req)
	if err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		return respondError(c, "login", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.cfg.SessionTTL),
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(dto.AuthResponse{
		Message: "Login successful",
		User:    account,
		Token:   token,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if sessionID, ok := middleware.CurrentSession(c); ok {
		if err := h.authService.Logout(sessionID); err != nil {
			return respondError(c, "logout", err)
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(dto.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	return c.JSON(middleware.CurrentAccount(c))
}
