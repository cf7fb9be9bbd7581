package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/partyhoard/backend/internal/events"
	"github.com/partyhoard/backend/internal/models"
	"github.com/partyhoard/backend/internal/repositories"
	"go.uber.org/zap"
)

func newItemFixture(t *testing.T) (*ItemService, pgxmock.PgxPoolIface, *capturePublisher) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(mock.Close)

	historyRepo := repositories.NewHistoryRepo(mock)
	itemRepo := repositories.NewItemRepo(mock)
	pub := &capturePublisher{}
	svc := NewItemService(mock, itemRepo, NewRecorder(historyRepo), pub, zap.NewNop())
	return svc, mock, pub
}

// Adding an item writes the row and its item_added entry in one transaction,
// then broadcasts the new item.
func TestAddItemRecordsHistory(t *testing.T) {
	svc, mock, pub := newItemFixture(t)

	inv := &models.Inventory{ID: uuid.New(), Slug: "the-party"}
	itemID := uuid.New()
	entryID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO items`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(itemID, now, now))
	mock.ExpectQuery(`INSERT INTO history_entries`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(entryID, now))
	mock.ExpectCommit()

	it, err := svc.Add(context.Background(), inv, ItemInput{Name: "Rope", Quantity: 3})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if it.ID != itemID {
		t.Errorf("item id = %s, want %s", it.ID, itemID)
	}
	if it.Type != models.ItemTypeOther {
		t.Errorf("type = %q, want default other", it.Type)
	}
	if len(pub.events) != 1 || pub.events[0].Type != events.EventItemAdded {
		t.Errorf("published events = %+v, want one item_added", pub.events)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// Validation failures surface before any transaction is opened.
func TestAddItemRejectsInvalidInput(t *testing.T) {
	svc, mock, pub := newItemFixture(t)

	inv := &models.Inventory{ID: uuid.New(), Slug: "the-party"}

	if _, err := svc.Add(context.Background(), inv, ItemInput{Name: "  "}); err == nil {
		t.Error("blank name accepted")
	}
	if _, err := svc.Add(context.Background(), inv, ItemInput{Name: "Rope", Type: "artifact"}); err == nil {
		t.Error("unknown type accepted")
	}
	if len(pub.events) != 0 {
		t.Errorf("no event should be published, got %+v", pub.events)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
