package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/partyhoard/backend/internal/http/dto"
	"github.com/partyhoard/backend/internal/middleware"
	"github.com/partyhoard/backend/internal/repositories"
	"github.com/partyhoard/backend/internal/services"
	"go.uber.org/zap"
)

type ItemHandler struct {
	items *services.ItemService
	log   *zap.Logger
}

func NewItemHandler(items *services.ItemService, log *zap.Logger) *ItemHandler {
	return &ItemHandler{items: items, log: log}
}

func (h *ItemHandler) List(c *fiber.Ctx) error {
	inv := middleware.GetInventory(c)

	filter := repositories.ItemFilter{Limit: 50}
	if v := c.Query("type"); v != "" {
		filter.Type = &v
	}
	if v := c.Query("category"); v != "" {
		filter.Category = &v
	}
	if v := c.Query("rarity"); v != "" {
		filter.Rarity = &v
	}
	if v := c.Query("search"); v != "" {
		filter.Search = &v
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = clampLimit(n)
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			filter.Offset = n
		}
	}

	items, total, err := h.items.List(c.Context(), inv, filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ItemListResponse{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset})
}

func (h *ItemHandler) Create(c *fiber.Ctx) error {
	inv := middleware.GetInventory(c)

	var req dto.CreateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	it, err := h.items.Add(c.Context(), inv, services.ItemInput{
		Name:       req.Name,
		Type:       req.Type,
		Category:   req.Category,
		Rarity:     req.Rarity,
		Quantity:   req.Quantity,
		Weight:     req.Weight,
		Value:      req.Value,
		Properties: req.Properties,
		Notes:      req.Notes,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(it)
}

func (h *ItemHandler) Get(c *fiber.Ctx) error {
	inv := middleware.GetInventory(c)

	itemID, err := uuid.Parse(c.Params("itemId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid item id"})
	}

	it, err := h.items.Get(c.Context(), inv, itemID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(it)
}

func (h *ItemHandler) Update(c *fiber.Ctx) error {
	inv := middleware.GetInventory(c)

	itemID, err := uuid.Parse(c.Params("itemId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid item id"})
	}

	var req dto.UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	it, err := h.items.Update(c.Context(), inv, itemID, services.ItemPatch{
		Name:       req.Name,
		Type:       req.Type,
		Category:   req.Category,
		Rarity:     req.Rarity,
		Quantity:   req.Quantity,
		Weight:     req.Weight,
		Value:      req.Value,
		Properties: req.Properties,
		Notes:      req.Notes,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(it)
}

func (h *ItemHandler) Delete(c *fiber.Ctx) error {
	inv := middleware.GetInventory(c)

	itemID, err := uuid.Parse(c.Params("itemId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid item id"})
	}

	if err := h.items.Remove(c.Context(), inv, itemID); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
