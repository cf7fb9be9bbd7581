package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/partyhoard/backend/internal/config"
	"github.com/partyhoard/backend/internal/http/handlers"
	"github.com/partyhoard/backend/internal/middleware"
	"github.com/partyhoard/backend/internal/services"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	inventoryService *services.InventoryService,
	inventoryHandler *handlers.InventoryHandler,
	itemHandler *handlers.ItemHandler,
	currencyHandler *handlers.CurrencyHandler,
	historyHandler *handlers.HistoryHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Passphrase, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute))

	inventories := api.Group("/inventories")

	// Public: creating an inventory and exchanging a passphrase for a token.
	inventories.Post("/", inventoryHandler.Create)
	inventories.Post("/:slug/auth", inventoryHandler.Authenticate)

	// Everything below requires the inventory credential.
	protected := inventories.Group("/:slug", middleware.InventoryAuth(inventoryService, log))

	protected.Get("/", inventoryHandler.Get)
	protected.Patch("/", inventoryHandler.Update)

	// Items
	protected.Get("/items", itemHandler.List)
	protected.Post("/items", itemHandler.Create)
	protected.Get("/items/:itemId", itemHandler.Get)
	protected.Patch("/items/:itemId", itemHandler.Update)
	protected.Delete("/items/:itemId", itemHandler.Delete)

	// Currency
	protected.Get("/currency", currencyHandler.Get)
	protected.Post("/currency", currencyHandler.Update)
	protected.Post("/currency/convert", currencyHandler.Convert)

	// History + undo
	protected.Get("/history", historyHandler.List)
	protected.Get("/history/:entryId", historyHandler.Get)
	protected.Post("/history/:entryId/undo", historyHandler.Undo)

	// WebSocket live events
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
