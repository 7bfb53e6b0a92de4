package handlers

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/dto"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/services"
	"github.com/gofiber/fiber/v2"
)

const defaultPerPage = 10

type GameHandler struct {
	catalog *services.CatalogService
	annex   *services.AnnexService
}

func NewGameHandler(catalog *services.CatalogService, annex *services.AnnexService) *GameHandler {
	return &GameHandler{catalog: catalog, annex: annex}
}

func (h *GameHandler) List(c *fiber.Ctx) error {
	page := pageParams(c, defaultPerPage)
	games, total, err := h.catalog.List(page, c.Query("genre"))
	if err != nil {
		return respondError(c, "list_games", err)
	}
	return c.JSON(dto.GameListResponse{
		Games:       games,
		Total:       total,
		Pages:       page.Pages(total),
		CurrentPage: page.Number,
	})
}

func (h *GameHandler) Get(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid game id")
	}
	game, err := h.catalog.Get(id)
	if err != nil {
		return respondError(c, "get_game", err)
	}
	return c.JSON(game)
}

func (h *GameHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateGameRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	game, err := h.catalog.Create(middleware.CurrentAccount(c), &req)
	if err != nil {
		return respondError(c, "create_game", err)
	}
	return c.Status(fiber.StatusCreated).JSON(game)
}

func (h *GameHandler) Update(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid game id")
	}
	var req dto.UpdateGameRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	game, err := h.catalog.Update(middleware.CurrentAccount(c), id, &req)
	if err != nil {
		return respondError(c, "update_game", err)
	}
	return c.JSON(game)
}

func (h *GameHandler) Delete(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid game id")
	}
	if err := h.catalog.Delete(middleware.CurrentAccount(c), id); err != nil {
		return respondError(c, "delete_game", err)
	}
	return c.JSON(dto.MessageResponse{Message: "Game deleted"})
}

func (h *GameHandler) SaveMetadata(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid game id")
	}
	var req dto.MetadataRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	stored, err := h.annex.SaveMetadata(c.UserContext(), middleware.CurrentAccount(c), id, &req)
	if err != nil {
		return respondError(c, "save_metadata", err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MetadataSavedResponse{
		Message: "Metadata saved",
		Stored:  stored,
	})
}

func (h *GameHandler) GetMetadata(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid game id")
	}
	doc, err := h.annex.GetMetadata(c.UserContext(), id)
	if err != nil {
		return respondError(c, "get_metadata", err)
	}
	return c.JSON(doc)
}

func (h *GameHandler) Analytics(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid game id")
	}
	return c.JSON(h.annex.GetStats(c.UserContext(), id))
}

func (h *GameHandler) RecordView(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid game id")
	}
	h.annex.RecordView(c.UserContext(), id)
	return c.JSON(dto.MessageResponse{Message: "View recorded"})
}

func (h *GameHandler) RecordDownload(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid game id")
	}
	h.annex.RecordDownload(c.UserContext(), id)
	return c.JSON(dto.MessageResponse{Message: "Download recorded"})
}

// Search matches metadata documents carrying any of the comma-separated tags.
func (h *GameHandler) Search(c *fiber.Ctx) error {
	var tags []string
	for _, t := range strings.Split(c.Query("tags"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		return badRequest(c, "At least one tag is required")
	}
	results := h.annex.SearchByTags(c.UserContext(), tags)
	return c.JSON(dto.TagSearchResponse{Results: results, Total: len(results)})
}

func pageParams(c *fiber.Ctx, perPage int) services.Page {
	return services.NewPage(c.QueryInt("page", 1), c.QueryInt("per_page", perPage), perPage)
}
