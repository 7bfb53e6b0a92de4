package dto

import (
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/annex"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/models"
)

type CreateGameRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Genre       string   `json:"genre"`
	Price       *float64 `json:"price"`
}

// UpdateGameRequest carries only the fields the caller sent.
type UpdateGameRequest struct {
	Title       Optional[string]  `json:"title"`
	Description Optional[string]  `json:"description"`
	Genre       Optional[string]  `json:"genre"`
	Price       Optional[float64] `json:"price"`
}

type GameListResponse struct {
	Games       []models.Listing `json:"games"`
	Total       int64            `json:"total"`
	Pages       int              `json:"pages"`
	CurrentPage int              `json:"current_page"`
}

type MetadataRequest struct {
	Tags               []string               `json:"tags"`
	Screenshots        []string               `json:"screenshots"`
	Videos             []string               `json:"videos"`
	SystemRequirements map[string]interface{} `json:"system_requirements"`
	DeveloperNotes     string                 `json:"developer_notes"`
}

type MetadataSavedResponse struct {
	Message string `json:"message"`
	Stored  bool   `json:"stored"`
}

type TagSearchResponse struct {
	Results []annex.Metadata `json:"results"`
	Total   int              `json:"total"`
}
