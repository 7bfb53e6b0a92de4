package dto

import "github.com/ahmetcoskunkizilkaya/game-marketplace/internal/models"

type CheckoutRequest struct {
	GameID uint `json:"game_id"`
}

type CheckoutResponse struct {
	Message string           `json:"message"`
	Order   *models.Purchase `json:"order"`
	Game    *models.Listing  `json:"game"`
}

// OrderView is a purchase together with its listing. Game is nil once the
// listing has been deleted.
type OrderView struct {
	models.Purchase
	Game *models.Listing `json:"game"`
}

type PurchaseHistoryResponse struct {
	Purchases []OrderView `json:"purchases"`
	Total     int         `json:"total"`
}

type LibraryResponse struct {
	Games []models.Listing `json:"games"`
	Total int              `json:"total"`
}
