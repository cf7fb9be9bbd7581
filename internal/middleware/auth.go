package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/partyhoard/backend/internal/models"
	"github.com/partyhoard/backend/internal/services"
	"go.uber.org/zap"
)

const CtxInventory = "inventory"

// InventoryAuth resolves the :slug route param plus a credential (X-Passphrase
// header or Bearer session token) to the inventory it protects, and stores the
// loaded inventory in locals for the handler.
func InventoryAuth(inventories *services.InventoryService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		slug := c.Params("slug")
		if slug == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing inventory slug"})
		}

		passphrase := c.Get("X-Passphrase")

		var token string
		if h := c.Get("Authorization"); h != "" {
			if t := strings.TrimPrefix(h, "Bearer "); t != h {
				token = t
			}
		}

		inv, err := inventories.Authorize(c.Context(), slug, passphrase, token)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "inventory not found"})
			}
			log.Debug("inventory auth failed", zap.String("slug", slug), zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "passphrase or token required"})
		}

		c.Locals(CtxInventory, inv)
		return c.Next()
	}
}

func GetInventory(c *fiber.Ctx) *models.Inventory {
	inv, _ := c.Locals(CtxInventory).(*models.Inventory)
	return inv
}
