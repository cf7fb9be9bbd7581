package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/partyhoard/backend/internal/events"
	"github.com/partyhoard/backend/internal/models"
	"github.com/partyhoard/backend/internal/repositories"
	"go.uber.org/zap"
)

type capturePublisher struct {
	events []events.Event
}

func (p *capturePublisher) Publish(ctx context.Context, stream string, e events.Event) error {
	p.events = append(p.events, e)
	return nil
}

func historyColumnNames() []string {
	return []string{"id", "inventory_id", "action", "item_id", "item_name",
		"item_snapshot", "previous_value", "new_value", "note", "is_undone", "undone_by", "created_at"}
}

func itemColumnNames() []string {
	return []string{"id", "inventory_id", "name", "type", "category", "rarity",
		"quantity", "weight", "value", "properties", "notes", "created_at", "updated_at"}
}

func inventoryColumnNames() []string {
	return []string{"id", "slug", "name", "description", "passphrase_hash",
		"copper", "silver", "gold", "platinum", "created_at", "updated_at"}
}

func newUndoFixture(t *testing.T) (*HistoryService, pgxmock.PgxPoolIface, *capturePublisher) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(mock.Close)

	historyRepo := repositories.NewHistoryRepo(mock)
	itemRepo := repositories.NewItemRepo(mock)
	inventoryRepo := repositories.NewInventoryRepo(mock)
	pub := &capturePublisher{}
	svc := NewHistoryService(mock, historyRepo, itemRepo, inventoryRepo,
		NewRecorder(historyRepo), pub, zap.NewNop())
	return svc, mock, pub
}

// Undoing an item_added entry deletes the item, appends the undo entry, and
// flips is_undone, all inside one transaction.
func TestUndoItemAdded(t *testing.T) {
	svc, mock, pub := newUndoFixture(t)

	inv := &models.Inventory{ID: uuid.New(), Slug: "the-party"}
	entryID := uuid.New()
	itemID := uuid.New()
	itemName := "Rope"
	undoID := uuid.New()
	now := time.Now()
	snap := map[string]any{"id": itemID.String(), "name": "Rope", "type": "gear", "quantity": 3}

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM history_entries WHERE id = \$1 FOR UPDATE`).
		WithArgs(entryID).
		WillReturnRows(pgxmock.NewRows(historyColumnNames()).
			AddRow(entryID, inv.ID, models.ActionItemAdded, &itemID, &itemName, snap, nil, snap, nil, false, nil, now))
	mock.ExpectQuery(`FROM items WHERE id = \$1 AND inventory_id = \$2 FOR UPDATE`).
		WithArgs(itemID, inv.ID).
		WillReturnRows(pgxmock.NewRows(itemColumnNames()).
			AddRow(itemID, inv.ID, "Rope", "gear", nil, nil, 3, nil, nil, nil, nil, now, now))
	mock.ExpectExec(`DELETE FROM items WHERE id = \$1 AND inventory_id = \$2`).
		WithArgs(itemID, inv.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectQuery(`INSERT INTO history_entries`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(undoID, now))
	mock.ExpectExec(`UPDATE history_entries SET is_undone = true`).
		WithArgs(undoID, entryID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	undoEntry, err := svc.Undo(context.Background(), inv, entryID)
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if undoEntry.Action != models.ActionUndo {
		t.Errorf("undo entry action = %q, want undo", undoEntry.Action)
	}
	if undoEntry.ID != undoID {
		t.Errorf("undo entry id = %s, want %s", undoEntry.ID, undoID)
	}

	if len(pub.events) != 1 || pub.events[0].Type != events.EventItemRemoved {
		t.Errorf("published events = %+v, want one item_removed", pub.events)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// Undoing a currency_changed entry reverses the exact recorded per-denomination
// contribution, leaving unrelated drift in place.
func TestUndoCurrencyChanged(t *testing.T) {
	svc, mock, pub := newUndoFixture(t)

	inv := &models.Inventory{ID: uuid.New(), Slug: "the-party"}
	entryID := uuid.New()
	undoID := uuid.New()
	now := time.Now()
	prev := map[string]any{"copper": int64(0), "silver": int64(0), "gold": int64(100), "platinum": int64(0)}
	next := map[string]any{"copper": int64(0), "silver": int64(0), "gold": int64(150), "platinum": int64(0)}

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM history_entries WHERE id = \$1 FOR UPDATE`).
		WithArgs(entryID).
		WillReturnRows(pgxmock.NewRows(historyColumnNames()).
			AddRow(entryID, inv.ID, models.ActionCurrencyChanged, nil, nil, nil, prev, next, nil, false, nil, now))
	// Balance has drifted since the original change: 160 gold, 4 silver.
	mock.ExpectQuery(`FROM inventories WHERE id = \$1 FOR UPDATE`).
		WithArgs(inv.ID).
		WillReturnRows(pgxmock.NewRows(inventoryColumnNames()).
			AddRow(inv.ID, "the-party", "The Party", nil, "", int64(0), int64(4), int64(160), int64(0), now, now))
	// Only the recorded +50 gold is reversed.
	mock.ExpectExec(`UPDATE inventories`).
		WithArgs(int64(0), int64(4), int64(110), int64(0), inv.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`INSERT INTO history_entries`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(undoID, now))
	mock.ExpectExec(`UPDATE history_entries SET is_undone = true`).
		WithArgs(undoID, entryID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	if _, err := svc.Undo(context.Background(), inv, entryID); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if len(pub.events) != 1 || pub.events[0].Type != events.EventCurrencyUpdated {
		t.Errorf("published events = %+v, want one currency_updated", pub.events)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// A second undo of the same entry fails and appends nothing.
func TestUndoAlreadyUndone(t *testing.T) {
	svc, mock, pub := newUndoFixture(t)

	inv := &models.Inventory{ID: uuid.New(), Slug: "the-party"}
	entryID := uuid.New()
	undoneBy := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM history_entries WHERE id = \$1 FOR UPDATE`).
		WithArgs(entryID).
		WillReturnRows(pgxmock.NewRows(historyColumnNames()).
			AddRow(entryID, inv.ID, models.ActionCurrencyChanged, nil, nil, nil,
				map[string]any{"gold": int64(1)}, map[string]any{"gold": int64(2)}, nil, true, &undoneBy, now))
	mock.ExpectRollback()

	_, err := svc.Undo(context.Background(), inv, entryID)
	if !errors.Is(err, ErrNotUndoable) {
		t.Fatalf("err = %v, want ErrNotUndoable", err)
	}
	if len(pub.events) != 0 {
		t.Errorf("no event should be published, got %+v", pub.events)
	}
	// No further queries were expected: nothing was written.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// Undo entries themselves can never be undone.
func TestUndoOfUndoEntry(t *testing.T) {
	svc, mock, _ := newUndoFixture(t)

	inv := &models.Inventory{ID: uuid.New(), Slug: "the-party"}
	entryID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM history_entries WHERE id = \$1 FOR UPDATE`).
		WithArgs(entryID).
		WillReturnRows(pgxmock.NewRows(historyColumnNames()).
			AddRow(entryID, inv.ID, models.ActionUndo, nil, nil, nil, nil, nil, nil, false, nil, now))
	mock.ExpectRollback()

	if _, err := svc.Undo(context.Background(), inv, entryID); !errors.Is(err, ErrNotUndoable) {
		t.Fatalf("err = %v, want ErrNotUndoable", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// An entry belonging to another inventory reads as not found.
func TestUndoWrongInventory(t *testing.T) {
	svc, mock, _ := newUndoFixture(t)

	inv := &models.Inventory{ID: uuid.New(), Slug: "the-party"}
	entryID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM history_entries WHERE id = \$1 FOR UPDATE`).
		WithArgs(entryID).
		WillReturnRows(pgxmock.NewRows(historyColumnNames()).
			AddRow(entryID, uuid.New(), models.ActionItemAdded, nil, nil, nil, nil, nil, nil, false, nil, now))
	mock.ExpectRollback()

	if _, err := svc.Undo(context.Background(), inv, entryID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// Undoing an item_added whose item was deleted independently is a conflict,
// not a phantom removal.
func TestUndoItemAddedItemGone(t *testing.T) {
	svc, mock, pub := newUndoFixture(t)

	inv := &models.Inventory{ID: uuid.New(), Slug: "the-party"}
	entryID := uuid.New()
	itemID := uuid.New()
	itemName := "Rope"
	now := time.Now()
	snap := map[string]any{"id": itemID.String(), "name": "Rope", "type": "gear", "quantity": 1}

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM history_entries WHERE id = \$1 FOR UPDATE`).
		WithArgs(entryID).
		WillReturnRows(pgxmock.NewRows(historyColumnNames()).
			AddRow(entryID, inv.ID, models.ActionItemAdded, &itemID, &itemName, snap, nil, snap, nil, false, nil, now))
	mock.ExpectQuery(`FROM items WHERE id = \$1 AND inventory_id = \$2 FOR UPDATE`).
		WithArgs(itemID, inv.ID).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, err := svc.Undo(context.Background(), inv, entryID)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if len(pub.events) != 0 {
		t.Errorf("no event should be published, got %+v", pub.events)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// If the is_undone flip reports zero rows despite the row lock, the whole
// transaction rolls back rather than double-applying the inverse.
func TestUndoMarkUndoneRace(t *testing.T) {
	svc, mock, pub := newUndoFixture(t)

	inv := &models.Inventory{ID: uuid.New(), Slug: "the-party"}
	entryID := uuid.New()
	itemID := uuid.New()
	itemName := "Rope"
	undoID := uuid.New()
	now := time.Now()
	snap := map[string]any{"id": itemID.String(), "name": "Rope", "type": "gear", "quantity": 1}

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM history_entries WHERE id = \$1 FOR UPDATE`).
		WithArgs(entryID).
		WillReturnRows(pgxmock.NewRows(historyColumnNames()).
			AddRow(entryID, inv.ID, models.ActionItemAdded, &itemID, &itemName, snap, nil, snap, nil, false, nil, now))
	mock.ExpectQuery(`FROM items WHERE id = \$1 AND inventory_id = \$2 FOR UPDATE`).
		WithArgs(itemID, inv.ID).
		WillReturnRows(pgxmock.NewRows(itemColumnNames()).
			AddRow(itemID, inv.ID, "Rope", "gear", nil, nil, 1, nil, nil, nil, nil, now, now))
	mock.ExpectExec(`DELETE FROM items WHERE id = \$1 AND inventory_id = \$2`).
		WithArgs(itemID, inv.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectQuery(`INSERT INTO history_entries`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(undoID, now))
	mock.ExpectExec(`UPDATE history_entries SET is_undone = true`).
		WithArgs(undoID, entryID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	_, err := svc.Undo(context.Background(), inv, entryID)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if len(pub.events) != 0 {
		t.Errorf("no event should be published, got %+v", pub.events)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGetEntry(t *testing.T) {
	svc, mock, _ := newUndoFixture(t)

	inv := &models.Inventory{ID: uuid.New(), Slug: "the-party"}
	entryID := uuid.New()
	now := time.Now()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(`FROM history_entries WHERE id = \$1$`).
			WithArgs(entryID).
			WillReturnRows(pgxmock.NewRows(historyColumnNames()).
				AddRow(entryID, inv.ID, models.ActionItemAdded, nil, nil, nil, nil, nil, nil, false, nil, now))

		entry, err := svc.Get(context.Background(), inv, entryID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if entry.ID != entryID {
			t.Errorf("entry id = %s, want %s", entry.ID, entryID)
		}
	})

	t.Run("other inventory reads as not found", func(t *testing.T) {
		mock.ExpectQuery(`FROM history_entries WHERE id = \$1$`).
			WithArgs(entryID).
			WillReturnRows(pgxmock.NewRows(historyColumnNames()).
				AddRow(entryID, uuid.New(), models.ActionItemAdded, nil, nil, nil, nil, nil, nil, false, nil, now))

		if _, err := svc.Get(context.Background(), inv, entryID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
