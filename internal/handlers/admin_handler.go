package handlers

import (
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/dto"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/services"
	"github.com/gofiber/fiber/v2"
)

const adminPerPage = 20

type AdminHandler struct {
	admin *services.AdminService
}

func NewAdminHandler(admin *services.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page := pageParams(c, adminPerPage)
	users, total, err := h.admin.ListUsers(middleware.CurrentAccount(c), page, c.Query("role"))
	if err != nil {
		return respondError(c, "admin_list_users", err)
	}
	return c.JSON(dto.UserListResponse{Users: users, Total: total, Pages: page.Pages(total)})
}

func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid user id")
	}
	user, err := h.admin.GetUser(middleware.CurrentAccount(c), id)
	if err != nil {
		return respondError(c, "admin_get_user", err)
	}
	return c.JSON(user)
}

func (h *AdminHandler) ChangeRole(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid user id")
	}
	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	user, err := h.admin.ChangeRole(middleware.CurrentAccount(c), id, req.Role)
	if err != nil {
		return respondError(c, "admin_change_role", err)
	}
	return c.JSON(dto.RoleChangedResponse{
		Message: "User role changed to " + user.Role.String(),
		User:    user,
	})
}

func (h *AdminHandler) Suspend(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid user id")
	}
	if err := h.admin.Suspend(middleware.CurrentAccount(c), id); err != nil {
		return respondError(c, "admin_suspend", err)
	}
	return c.JSON(dto.MessageResponse{Message: "User suspended"})
}

func (h *AdminHandler) Unsuspend(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid user id")
	}
	if err := h.admin.Unsuspend(middleware.CurrentAccount(c), id); err != nil {
		return respondError(c, "admin_unsuspend", err)
	}
	return c.JSON(dto.MessageResponse{Message: "User unsuspended"})
}

func (h *AdminHandler) ListGames(c *fiber.Ctx) error {
	page := pageParams(c, adminPerPage)
	games, total, err := h.admin.ListGames(middleware.CurrentAccount(c), page)
	if err != nil {
		return respondError(c, "admin_list_games", err)
	}
	return c.JSON(dto.GameListResponse{
		Games:       games,
		Total:       total,
		Pages:       page.Pages(total),
		CurrentPage: page.Number,
	})
}

func (h *AdminHandler) Feature(c *fiber.Ctx) error {
	return h.setFeatured(c, true, "Game featured")
}

func (h *AdminHandler) Unfeature(c *fiber.Ctx) error {
	return h.setFeatured(c, false, "Game unfeatured")
}

func (h *AdminHandler) setFeatured(c *fiber.Ctx, featured bool, msg string) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid game id")
	}
	if err := h.admin.SetFeatured(middleware.CurrentAccount(c), id, featured); err != nil {
		return respondError(c, "admin_feature", err)
	}
	return c.JSON(dto.MessageResponse{Message: msg})
}

func (h *AdminHandler) RemoveGame(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid game id")
	}
	if err := h.admin.RemoveGame(middleware.CurrentAccount(c), id); err != nil {
		return respondError(c, "admin_remove_game", err)
	}
	return c.JSON(dto.MessageResponse{Message: "Game removed"})
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.admin.Stats(middleware.CurrentAccount(c))
	if err != nil {
		return respondError(c, "admin_stats", err)
	}
	return c.JSON(stats)
}
