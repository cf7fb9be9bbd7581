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

type HistoryHandler struct {
	history *services.HistoryService
	log     *zap.Logger
}

func NewHistoryHandler(history *services.HistoryService, log *zap.Logger) *HistoryHandler {
	return &HistoryHandler{history: history, log: log}
}

// List returns the audit feed, newest first. Undone entries stay visible;
// only the undoable listing on the client filters them out.
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	inv := middleware.GetInventory(c)

	filter := repositories.HistoryFilter{Limit: 50}
	if v := c.Query("action"); v != "" {
		filter.Action = &v
	}
	if v := c.Query("item_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid item_id"})
		}
		filter.ItemID = &id
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

	entries, total, err := h.history.List(c.Context(), inv, filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.HistoryListResponse{Entries: entries, Total: total, Limit: filter.Limit, Offset: filter.Offset})
}

func (h *HistoryHandler) Get(c *fiber.Ctx) error {
	inv := middleware.GetInventory(c)

	entryID, err := uuid.Parse(c.Params("entryId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid history entry id"})
	}

	entry, err := h.history.Get(c.Context(), inv, entryID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(entry)
}

func (h *HistoryHandler) Undo(c *fiber.Ctx) error {
	inv := middleware.GetInventory(c)

	entryID, err := uuid.Parse(c.Params("entryId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid history entry id"})
	}

	undoEntry, err := h.history.Undo(c.Context(), inv, entryID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(dto.UndoResponse{
		Success:     true,
		Message:     "action undone",
		UndoEntryID: &undoEntry.ID,
	})
}
