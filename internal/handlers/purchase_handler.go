package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/dto"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/services"
	"github.com/gofiber/fiber/v2"
)

type PurchaseHandler struct {
	purchases *services.PurchaseService
}

func NewPurchaseHandler(purchases *services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases}
}

func (h *PurchaseHandler) Checkout(c *fiber.Ctx) error {
	var req dto.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	order, game, err := h.purchases.Checkout(middleware.CurrentAccount(c), req.GameID)
	if err != nil {
		metrics.RecordCheckout(checkoutOutcome(err))
		return respondError(c, "checkout", err)
	}
	metrics.RecordCheckout("completed")
	return c.Status(fiber.StatusCreated).JSON(dto.CheckoutResponse{
		Message: "Game purchased!",
		Order:   order,
		Game:    game,
	})
}

func (h *PurchaseHandler) Get(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid order id")
	}
	order, err := h.purchases.GetOrder(middleware.CurrentAccount(c), id)
	if err != nil {
		return respondError(c, "get_order", err)
	}
	return c.JSON(order)
}

func (h *PurchaseHandler) History(c *fiber.Ctx) error {
	orders, err := h.purchases.History(middleware.CurrentAccount(c))
	if err != nil {
		return respondError(c, "purchase_history", err)
	}
	return c.JSON(dto.PurchaseHistoryResponse{Purchases: orders, Total: len(orders)})
}

func (h *PurchaseHandler) Library(c *fiber.Ctx) error {
	games, err := h.purchases.Library(middleware.CurrentAccount(c))
	if err != nil {
		return respondError(c, "library", err)
	}
	return c.JSON(dto.LibraryResponse{Games: games, Total: len(games)})
}

func checkoutOutcome(err error) string {
	switch {
	case errors.Is(err, services.ErrAlreadyOwned):
		return "already_owned"
	case errors.Is(err, services.ErrGameNotFound):
		return "not_found"
	default:
		return "error"
	}
}
