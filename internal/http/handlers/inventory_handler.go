package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/partyhoard/backend/internal/http/dto"
	"github.com/partyhoard/backend/internal/middleware"
	"github.com/partyhoard/backend/internal/services"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	inventories *services.InventoryService
	log         *zap.Logger
}

func NewInventoryHandler(inventories *services.InventoryService, log *zap.Logger) *InventoryHandler {
	return &InventoryHandler{inventories: inventories, log: log}
}

func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateInventoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	inv, err := h.inventories.Create(c.Context(), req.Name, req.Passphrase, req.Description, req.Slug)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inv)
}

// Authenticate verifies the passphrase and hands back a session token so
// clients stop sending the passphrase on every request.
func (h *InventoryHandler) Authenticate(c *fiber.Ctx) error {
	var req dto.AuthRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	_, token, err := h.inventories.Authenticate(c.Context(), c.Params("slug"), req.Passphrase)
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			return c.JSON(dto.AuthResponse{Success: false, Message: "invalid passphrase"})
		}
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.AuthResponse{Success: true, Token: token})
}

func (h *InventoryHandler) Get(c *fiber.Ctx) error {
	return c.JSON(middleware.GetInventory(c))
}

func (h *InventoryHandler) Update(c *fiber.Ctx) error {
	inv := middleware.GetInventory(c)

	var req dto.UpdateInventoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	if err := h.inventories.UpdateDetails(c.Context(), inv, req.Name, req.Description); err != nil {
		return respondError(c, h.log, err)
	}
	inv.Name = req.Name
	inv.Description = req.Description
	return c.JSON(inv)
}
