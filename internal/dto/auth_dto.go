package dto

import "github.com/ahmetcoskunkizilkaya/game-marketplace/internal/models"

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest accepts either an email or a username as the identifier.
type LoginRequest struct {
	EmailOrUsername string `json:"email_or_username"`
	Password        string `json:"password"`
}

type AuthResponse struct {
	Message string          `json:"message"`
	User    *models.Account `json:"user"`
	Token   string          `json:"token,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
	Annex     string `json:"annex"`
}
