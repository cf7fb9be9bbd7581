package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/partyhoard/backend/internal/events"
	"github.com/partyhoard/backend/internal/models"
	"github.com/partyhoard/backend/internal/repositories"
	"go.uber.org/zap"
)

// HistoryService exposes the audit feed and the undo engine. An undo replays
// the inverse of a recorded action through the same write path as a normal
// mutation, so the reversal is itself recorded and broadcast.
type HistoryService struct {
	db            repositories.DB
	historyRepo   *repositories.HistoryRepo
	itemRepo      *repositories.ItemRepo
	inventoryRepo *repositories.InventoryRepo
	recorder      *Recorder
	publisher     events.Publisher
	log           *zap.Logger
}

func NewHistoryService(
	db repositories.DB,
	historyRepo *repositories.HistoryRepo,
	itemRepo *repositories.ItemRepo,
	inventoryRepo *repositories.InventoryRepo,
	recorder *Recorder,
	publisher events.Publisher,
	log *zap.Logger,
) *HistoryService {
	return &HistoryService{
		db:            db,
		historyRepo:   historyRepo,
		itemRepo:      itemRepo,
		inventoryRepo: inventoryRepo,
		recorder:      recorder,
		publisher:     publisher,
		log:           log,
	}
}

func (s *HistoryService) List(ctx context.Context, inv *models.Inventory, f repositories.HistoryFilter) ([]models.HistoryEntry, int, error) {
	if f.Action != nil && !models.IsValidAction(*f.Action) {
		return nil, 0, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, *f.Action)
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	return s.historyRepo.List(ctx, inv.ID, f)
}

// Get returns a single entry. Entries belonging to another inventory read as
// not found, so a credential for one party reveals nothing about others.
func (s *HistoryService) Get(ctx context.Context, inv *models.Inventory, entryID uuid.UUID) (*models.HistoryEntry, error) {
	entry, err := s.historyRepo.Get(ctx, entryID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: history entry %s", ErrNotFound, entryID)
	}
	if err != nil {
		return nil, err
	}
	if entry.InventoryID != inv.ID {
		return nil, fmt.Errorf("%w: history entry %s", ErrNotFound, entryID)
	}
	return entry, nil
}

// Undo reverses the given history entry. The inverse domain write, the new
// undo entry, and the original entry's is_undone flip all share one
// transaction: either the reversal happened and is fully recorded, or
// nothing changed.
func (s *HistoryService) Undo(ctx context.Context, inv *models.Inventory, entryID uuid.UUID) (*models.HistoryEntry, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	entry, err := s.historyRepo.GetForUpdate(ctx, tx, entryID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: history entry %s", ErrNotFound, entryID)
	}
	if err != nil {
		return nil, err
	}
	if entry.InventoryID != inv.ID {
		return nil, fmt.Errorf("%w: history entry %s", ErrNotFound, entryID)
	}
	if entry.IsUndone {
		return nil, fmt.Errorf("%w: entry has already been undone", ErrNotUndoable)
	}
	if !models.IsUndoableAction(entry.Action) {
		return nil, fmt.Errorf("%w: %s entries cannot be undone", ErrNotUndoable, entry.Action)
	}

	var undoEntry *models.HistoryEntry
	var event events.Event

	switch entry.Action {
	case models.ActionItemAdded:
		undoEntry, event, err = s.undoItemAdded(ctx, tx, inv, entry)
	case models.ActionItemRemoved:
		undoEntry, event, err = s.undoItemRemoved(ctx, tx, inv, entry)
	case models.ActionItemUpdated:
		undoEntry, event, err = s.undoItemUpdated(ctx, tx, inv, entry)
	case models.ActionCurrencyChanged:
		undoEntry, event, err = s.undoCurrencyChanged(ctx, tx, inv, entry)
	default:
		err = fmt.Errorf("%w: %s entries cannot be undone", ErrNotUndoable, entry.Action)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.historyRepo.MarkUndone(ctx, tx, entry.ID, undoEntry.ID)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// Lost a race despite the row lock; refuse rather than double-apply.
		return nil, fmt.Errorf("%w: entry was undone concurrently", ErrConflict)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.StreamInventory, event); err != nil {
		s.log.Warn("undo event publish failed",
			zap.String("slug", inv.Slug), zap.String("entry_id", entry.ID.String()), zap.Error(err))
	}

	s.log.Info("history entry undone",
		zap.String("slug", inv.Slug),
		zap.String("entry_id", entry.ID.String()),
		zap.String("action", entry.Action),
		zap.String("undo_entry_id", undoEntry.ID.String()))
	return undoEntry, nil
}

// undoItemAdded removes the item the entry created. A missing item means it
// was deleted independently since: refuse rather than fabricate a removal.
func (s *HistoryService) undoItemAdded(ctx context.Context, tx pgx.Tx, inv *models.Inventory, entry *models.HistoryEntry) (*models.HistoryEntry, events.Event, error) {
	if entry.ItemID == nil {
		return nil, events.Event{}, fmt.Errorf("%w: entry has no item reference", ErrConflict)
	}

	it, err := s.itemRepo.GetForUpdate(ctx, tx, inv.ID, *entry.ItemID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, events.Event{}, fmt.Errorf("%w: item no longer exists", ErrConflict)
	}
	if err != nil {
		return nil, events.Event{}, err
	}

	if _, err := s.itemRepo.Delete(ctx, tx, inv.ID, it.ID); err != nil {
		return nil, events.Event{}, err
	}

	undoEntry, err := s.recorder.Undo(ctx, tx, entry, &it.ID, &it.Name, it.Snapshot(), nil)
	if err != nil {
		return nil, events.Event{}, err
	}

	event := events.Event{
		Type:        events.EventItemRemoved,
		InventoryID: inv.ID.String(),
		Payload:     map[string]any{"id": it.ID.String()},
	}
	return undoEntry, event, nil
}

// undoItemRemoved recreates the item from the entry's snapshot. The restored
// item gets a fresh identifier: resurrection is an ordinary creation.
func (s *HistoryService) undoItemRemoved(ctx context.Context, tx pgx.Tx, inv *models.Inventory, entry *models.HistoryEntry) (*models.HistoryEntry, events.Event, error) {
	if entry.ItemSnapshot == nil {
		return nil, events.Event{}, fmt.Errorf("%w: entry has no item snapshot", ErrConflict)
	}

	it, err := models.ItemFromSnapshot(inv.ID, entry.ItemSnapshot)
	if err != nil {
		return nil, events.Event{}, fmt.Errorf("%w: %v", ErrConflict, err)
	}

	if err := s.itemRepo.Create(ctx, tx, it); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, events.Event{}, fmt.Errorf("%w: recreating the item violates a uniqueness constraint", ErrConflict)
		}
		return nil, events.Event{}, err
	}

	undoEntry, err := s.recorder.Undo(ctx, tx, entry, &it.ID, &it.Name, nil, it.Snapshot())
	if err != nil {
		return nil, events.Event{}, err
	}

	event := events.Event{
		Type:        events.EventItemAdded,
		InventoryID: inv.ID.String(),
		Payload:     map[string]any{"item": it},
	}
	return undoEntry, event, nil
}

// undoItemUpdated restores only the fields the entry changed, to their
// recorded previous values. Fields touched by unrelated later edits are left
// alone: last-writer-wins per field, not a full-state rollback.
func (s *HistoryService) undoItemUpdated(ctx context.Context, tx pgx.Tx, inv *models.Inventory, entry *models.HistoryEntry) (*models.HistoryEntry, events.Event, error) {
	if entry.ItemID == nil {
		return nil, events.Event{}, fmt.Errorf("%w: entry has no item reference", ErrConflict)
	}

	it, err := s.itemRepo.GetForUpdate(ctx, tx, inv.ID, *entry.ItemID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, events.Event{}, fmt.Errorf("%w: item no longer exists", ErrConflict)
	}
	if err != nil {
		return nil, events.Event{}, err
	}

	// Current values of exactly the fields being restored, for the undo
	// entry's own previous/new payload.
	current := it.Snapshot()
	prevNow := map[string]any{}
	for k := range entry.PreviousValue {
		if v, ok := current[k]; ok {
			prevNow[k] = v
		} else {
			prevNow[k] = nil
		}
	}

	models.ApplySnapshotFields(it, entry.PreviousValue)

	if err := s.itemRepo.Update(ctx, tx, it); err != nil {
		return nil, events.Event{}, err
	}

	undoEntry, err := s.recorder.Undo(ctx, tx, entry, &it.ID, &it.Name, prevNow, entry.PreviousValue)
	if err != nil {
		return nil, events.Event{}, err
	}

	event := events.Event{
		Type:        events.EventItemUpdated,
		InventoryID: inv.ID.String(),
		Payload:     map[string]any{"item": it},
	}
	return undoEntry, event, nil
}

// undoCurrencyChanged applies the negated recorded deltas to the current
// balance. Additive, not an absolute reset: independent adjustments made
// since are preserved.
func (s *HistoryService) undoCurrencyChanged(ctx context.Context, tx pgx.Tx, inv *models.Inventory, entry *models.HistoryEntry) (*models.HistoryEntry, events.Event, error) {
	current, err := s.inventoryRepo.GetForUpdate(ctx, tx, inv.ID)
	if err != nil {
		return nil, events.Event{}, err
	}
	before := current.Currency()

	recordedPrev := models.TotalsFromMap(entry.PreviousValue)
	recordedNew := models.TotalsFromMap(entry.NewValue)
	inverse := DeltaBetween(recordedPrev, recordedNew).Negate()

	result, err := ApplyExactDelta(before, inverse)
	if err != nil {
		return nil, events.Event{}, err
	}

	if err := s.inventoryRepo.UpdateCurrency(ctx, tx, inv.ID, result); err != nil {
		return nil, events.Event{}, err
	}

	undoEntry, err := s.recorder.Undo(ctx, tx, entry, nil, nil, before.Map(), result.Map())
	if err != nil {
		return nil, events.Event{}, err
	}

	inv.SetCurrency(result)
	event := events.Event{
		Type:        events.EventCurrencyUpdated,
		InventoryID: inv.ID.String(),
		Payload:     map[string]any{"totals": result.Map(), "total_gp": result.TotalGP()},
	}
	return undoEntry, event, nil
}
