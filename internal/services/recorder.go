package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/partyhoard/backend/internal/models"
	"github.com/partyhoard/backend/internal/repositories"
)

// Recorder translates a just-performed domain write into a history entry and
// appends it on the caller's transaction, so the write and its log entry
// commit or roll back together. Each recorded entry carries enough data to
// compute its exact inverse without re-reading any other table.
type Recorder struct {
	history *repositories.HistoryRepo
}

func NewRecorder(history *repositories.HistoryRepo) *Recorder {
	return &Recorder{history: history}
}

func (r *Recorder) ItemAdded(ctx context.Context, q repositories.Querier, it *models.Item, note *string) (*models.HistoryEntry, error) {
	snap := it.Snapshot()
	entry := &models.HistoryEntry{
		InventoryID:  it.InventoryID,
		Action:       models.ActionItemAdded,
		ItemID:       &it.ID,
		ItemName:     &it.Name,
		ItemSnapshot: snap,
		NewValue:     snap,
		Note:         note,
	}
	return entry, r.history.Append(ctx, q, entry)
}

// ItemRemoved records the full pre-delete state so undo can resurrect the item.
func (r *Recorder) ItemRemoved(ctx context.Context, q repositories.Querier, it *models.Item, note *string) (*models.HistoryEntry, error) {
	snap := it.Snapshot()
	entry := &models.HistoryEntry{
		InventoryID:   it.InventoryID,
		Action:        models.ActionItemRemoved,
		ItemID:        &it.ID,
		ItemName:      &it.Name,
		ItemSnapshot:  snap,
		PreviousValue: snap,
		Note:          note,
	}
	return entry, r.history.Append(ctx, q, entry)
}

// ItemUpdated records only the fields that actually changed.
func (r *Recorder) ItemUpdated(ctx context.Context, q repositories.Querier, it *models.Item, prev, next map[string]any, note *string) (*models.HistoryEntry, error) {
	entry := &models.HistoryEntry{
		InventoryID:   it.InventoryID,
		Action:        models.ActionItemUpdated,
		ItemID:        &it.ID,
		ItemName:      &it.Name,
		ItemSnapshot:  it.Snapshot(),
		PreviousValue: prev,
		NewValue:      next,
		Note:          note,
	}
	return entry, r.history.Append(ctx, q, entry)
}

func (r *Recorder) CurrencyChanged(ctx context.Context, q repositories.Querier, inventoryID uuid.UUID, previous, current models.CurrencyTotals, note *string) (*models.HistoryEntry, error) {
	entry := &models.HistoryEntry{
		InventoryID:   inventoryID,
		Action:        models.ActionCurrencyChanged,
		PreviousValue: previous.Map(),
		NewValue:      current.Map(),
		Note:          note,
	}
	return entry, r.history.Append(ctx, q, entry)
}

// Undo records the reversal of a previous entry. previous/new describe the
// reversal itself; the note back-links the original entry.
func (r *Recorder) Undo(ctx context.Context, q repositories.Querier, original *models.HistoryEntry, itemID *uuid.UUID, itemName *string, prev, next map[string]any) (*models.HistoryEntry, error) {
	note := fmt.Sprintf("undid %s (%s)", original.Action, original.ID)
	entry := &models.HistoryEntry{
		InventoryID:   original.InventoryID,
		Action:        models.ActionUndo,
		ItemID:        itemID,
		ItemName:      itemName,
		PreviousValue: prev,
		NewValue:      next,
		Note:          &note,
	}
	return entry, r.history.Append(ctx, q, entry)
}
