package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/config"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/dto"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/models"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authService *services.AuthService,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	gameHandler *handlers.GameHandler,
	purchaseHandler *handlers.PurchaseHandler,
	reviewHandler *handlers.ReviewHandler,
	adminHandler *handlers.AdminHandler,
) {
	session := middleware.SessionRequired(cfg, authService)

	// Auth: stricter per-IP limit
	auth := app.Group("/auth", rateLimit(cfg.AuthRateLimitMax))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", session, authHandler.Logout)
	auth.Get("/profile", session, authHandler.Profile)

	api := app.Group("/api", rateLimit(cfg.RateLimitMax))
	api.Get("/health", healthHandler.Check)

	// Catalog and annex. Static segments are registered before :id.
	api.Get("/games", gameHandler.List)
	api.Get("/games/search", gameHandler.Search)
	api.Post("/games", session, middleware.RoleRequired(models.RoleDeveloper), gameHandler.Create)
	api.Get("/games/:id", gameHandler.Get)
	api.Put("/games/:id", session, gameHandler.Update)
	api.Delete("/games/:id", session, gameHandler.Delete)
	api.Post("/games/:id/metadata", session, gameHandler.SaveMetadata)
	api.Get("/games/:id/metadata", gameHandler.GetMetadata)
	api.Get("/games/:id/analytics", gameHandler.Analytics)
	api.Post("/games/:id/view", gameHandler.RecordView)
	api.Post("/games/:id/download", gameHandler.RecordDownload)

	// Purchases
	api.Post("/purchases/checkout", session, purchaseHandler.Checkout)
	api.Get("/purchases/history", session, purchaseHandler.History)
	api.Get("/purchases/library", session, purchaseHandler.Library)
	api.Get("/purchases/:id", session, purchaseHandler.Get)

	// Reviews
	api.Get("/reviews/game/:id", reviewHandler.List)
	api.Post("/reviews/:gameId", session, reviewHandler.Create)
	api.Put("/reviews/:id", session, reviewHandler.Update)
	api.Delete("/reviews/:id", session, reviewHandler.Delete)
	api.Post("/reviews/:id/helpful", reviewHandler.MarkHelpful)

	// Admin moderation (session + admin role)
	admin := api.Group("/admin", session, middleware.AdminRequired())
	admin.Get("/users", adminHandler.ListUsers)
	admin.Get("/users/:id", adminHandler.GetUser)
	admin.Put("/users/:id/role", adminHandler.ChangeRole)
	admin.Post("/users/:id/suspend", adminHandler.Suspend)
	admin.Post("/users/:id/unsuspend", adminHandler.Unsuspend)
	admin.Get("/games", adminHandler.ListGames)
	admin.Post("/games/:id/feature", adminHandler.Feature)
	admin.Post("/games/:id/unfeature", adminHandler.Unfeature)
	admin.Delete("/games/:id/remove", adminHandler.RemoveGame)
	admin.Get("/stats", adminHandler.Stats)
}

// rateLimit is a per-IP sliding window of max requests a minute. A max of
// zero or less disables it.
func rateLimit(max int) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{Error: "Too many requests"})
		},
	})
}
