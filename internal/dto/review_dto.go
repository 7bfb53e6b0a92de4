package dto

import "github.com/ahmetcoskunkizilkaya/game-marketplace/internal/models"

type CreateReviewRequest struct {
	Rating  *int   `json:"rating"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type UpdateReviewRequest struct {
	Rating  Optional[int]    `json:"rating"`
	Title   Optional[string] `json:"title"`
	Content Optional[string] `json:"content"`
}

type ReviewListResponse struct {
	Reviews       []models.Review `json:"reviews"`
	Total         int64           `json:"total"`
	Pages         int             `json:"pages"`
	AverageRating float64         `json:"average_rating"`
}

type HelpfulResponse struct {
	HelpfulCount int `json:"helpful_count"`
}
