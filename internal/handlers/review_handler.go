package handlers

import (
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/dto"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ReviewHandler struct {
	reviews *services.ReviewService
}

func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// List accepts sort=recent|helpful|rating; anything else sorts by recent.
func (h *ReviewHandler) List(c *fiber.Ctx) error {
	gameID, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid game id")
	}
	page := pageParams(c, defaultPerPage)
	reviews, total, avg, err := h.reviews.List(gameID, c.Query("sort", services.SortRecent), page)
	if err != nil {
		return respondError(c, "list_reviews", err)
	}
	return c.JSON(dto.ReviewListResponse{
		Reviews:       reviews,
		Total:         total,
		Pages:         page.Pages(total),
		AverageRating: avg,
	})
}

func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	gameID, ok := idParam(c, "gameId")
	if !ok {
		return badRequest(c, "Invalid game id")
	}
	var req dto.CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	review, err := h.reviews.Create(middleware.CurrentAccount(c), gameID, &req)
	if err != nil {
		return respondError(c, "create_review", err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

func (h *ReviewHandler) Update(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid review id")
	}
	var req dto.UpdateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	review, err := h.reviews.Update(middleware.CurrentAccount(c), id, &req)
	if err != nil {
		return respondError(c, "update_review", err)
	}
	return c.JSON(review)
}

func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid review id")
	}
	if err := h.reviews.Delete(middleware.CurrentAccount(c), id); err != nil {
		return respondError(c, "delete_review", err)
	}
	return c.JSON(dto.MessageResponse{Message: "Review deleted"})
}

func (h *ReviewHandler) MarkHelpful(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid review id")
	}
	count, err := h.reviews.MarkHelpful(id)
	if err != nil {
		return respondError(c, "mark_helpful", err)
	}
	return c.JSON(dto.HelpfulResponse{HelpfulCount: count})
}
