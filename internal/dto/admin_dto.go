package dto

import "github.com/ahmetcoskunkizilkaya/game-marketplace/internal/models"

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

type UserListResponse struct {
	Users []models.Account `json:"users"`
	Total int64            `json:"total"`
	Pages int              `json:"pages"`
}

type UserDetailResponse struct {
	models.Account
	GamesCreated int64 `json:"games_created"`
}

type RoleChangedResponse struct {
	Message string          `json:"message"`
	User    *models.Account `json:"user"`
}

type PlatformStats struct {
	TotalUsers      int64 `json:"total_users"`
	TotalGames      int64 `json:"total_games"`
	TotalPlayers    int64 `json:"total_players"`
	TotalDevelopers int64 `json:"total_developers"`
	TotalAdmins     int64 `json:"total_admins"`
	TotalPurchases  int64 `json:"total_purchases"`
	TotalReviews    int64 `json:"total_reviews"`
}
