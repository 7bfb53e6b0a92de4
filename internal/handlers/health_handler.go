package handlers

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/database"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/dto"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db    *gorm.DB
	annex *services.AnnexService
}

func NewHealthHandler(db *gorm.DB, annex *services.AnnexService) *HealthHandler {
	return &HealthHandler{db: db, annex: annex}
}

// Check always answers 200; a failing dependency is reported, not fatal.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(h.db); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	annexStatus := "disabled"
	if h.annex.Available() {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		annexStatus = "ok"
		if err := h.annex.Ping(ctx); err != nil {
			annexStatus = "unhealthy: " + err.Error()
		}
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Annex:     annexStatus,
	})
}
