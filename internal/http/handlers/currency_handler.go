package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/partyhoard/backend/internal/http/dto"
	"github.com/partyhoard/backend/internal/middleware"
	"github.com/partyhoard/backend/internal/services"
	"go.uber.org/zap"
)

type CurrencyHandler struct {
	currency *services.CurrencyService
	log      *zap.Logger
}

func NewCurrencyHandler(currency *services.CurrencyService, log *zap.Logger) *CurrencyHandler {
	return &CurrencyHandler{currency: currency, log: log}
}

func (h *CurrencyHandler) Get(c *fiber.Ctx) error {
	inv := middleware.GetInventory(c)
	return c.JSON(dto.NewCurrencyResponse(inv.Currency()))
}

// Update adjusts the treasury by signed deltas. Positive adds, negative
// spends; spending makes change from higher denominations automatically.
func (h *CurrencyHandler) Update(c *fiber.Ctx) error {
	inv := middleware.GetInventory(c)

	var req dto.UpdateCurrencyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	var delta services.CurrencyDelta
	if req.Copper != nil {
		delta.Copper = *req.Copper
	}
	if req.Silver != nil {
		delta.Silver = *req.Silver
	}
	if req.Gold != nil {
		delta.Gold = *req.Gold
	}
	if req.Platinum != nil {
		delta.Platinum = *req.Platinum
	}
	if delta.IsZero() {
		return c.JSON(dto.NewCurrencyResponse(inv.Currency()))
	}

	totals, err := h.currency.ApplyDelta(c.Context(), inv, delta, req.Note)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewCurrencyResponse(totals))
}

func (h *CurrencyHandler) Convert(c *fiber.Ctx) error {
	inv := middleware.GetInventory(c)

	var req dto.ConvertCurrencyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	totals, err := h.currency.Convert(c.Context(), inv, req.FromDenomination, req.ToDenomination, req.Amount)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewCurrencyResponse(totals))
}
