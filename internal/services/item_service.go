package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/partyhoard/backend/internal/events"
	"github.com/partyhoard/backend/internal/models"
	"github.com/partyhoard/backend/internal/repositories"
	"go.uber.org/zap"
)

type ItemService struct {
	db        repositories.DB
	itemRepo  *repositories.ItemRepo
	recorder  *Recorder
	publisher events.Publisher
	log       *zap.Logger
}

func NewItemService(
	db repositories.DB,
	itemRepo *repositories.ItemRepo,
	recorder *Recorder,
	publisher events.Publisher,
	log *zap.Logger,
) *ItemService {
	return &ItemService{db: db, itemRepo: itemRepo, recorder: recorder, publisher: publisher, log: log}
}

// ItemInput is the full set of fields for creating an item.
type ItemInput struct {
	Name       string
	Type       string
	Category   *string
	Rarity     *string
	Quantity   int
	Weight     *int
	Value      *int64
	Properties map[string]any
	Notes      *string
}

// ItemPatch carries only the fields the client wants to change.
type ItemPatch struct {
	Name       *string
	Type       *string
	Category   *string
	Rarity     *string
	Quantity   *int
	Weight     *int
	Value      *int64
	Properties map[string]any
	Notes      *string
}

func validateItemFields(name, itemType string, quantity int, weight *int, value *int64, rarity *string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: item name is required", ErrInvalidInput)
	}
	if !models.IsValidItemType(itemType) {
		return fmt.Errorf("%w: unknown item type %q", ErrInvalidInput, itemType)
	}
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}
	if weight != nil && *weight < 0 {
		return fmt.Errorf("%w: weight cannot be negative", ErrInvalidInput)
	}
	if value != nil && *value < 0 {
		return fmt.Errorf("%w: value cannot be negative", ErrInvalidInput)
	}
	if rarity != nil && !models.IsValidRarity(*rarity) {
		return fmt.Errorf("%w: unknown rarity %q", ErrInvalidInput, *rarity)
	}
	return nil
}

func (s *ItemService) publish(ctx context.Context, inv *models.Inventory, eventType string, payload map[string]any) {
	err := s.publisher.Publish(ctx, events.StreamInventory, events.Event{
		Type:        eventType,
		InventoryID: inv.ID.String(),
		Payload:     payload,
	})
	if err != nil {
		s.log.Warn("item event publish failed",
			zap.String("slug", inv.Slug), zap.String("event", eventType), zap.Error(err))
	}
}

func (s *ItemService) List(ctx context.Context, inv *models.Inventory, f repositories.ItemFilter) ([]models.Item, int, error) {
	if f.Limit > 100 {
		f.Limit = 100
	}
	return s.itemRepo.List(ctx, inv.ID, f)
}

func (s *ItemService) Get(ctx context.Context, inv *models.Inventory, itemID uuid.UUID) (*models.Item, error) {
	it, err := s.itemRepo.Get(ctx, inv.ID, itemID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: item %s", ErrNotFound, itemID)
	}
	return it, err
}

// Add creates an item and logs an item_added entry in the same transaction.
func (s *ItemService) Add(ctx context.Context, inv *models.Inventory, input ItemInput) (*models.Item, error) {
	if input.Type == "" {
		input.Type = models.ItemTypeOther
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}
	if err := validateItemFields(input.Name, input.Type, input.Quantity, input.Weight, input.Value, input.Rarity); err != nil {
		return nil, err
	}

	it := &models.Item{
		InventoryID: inv.ID,
		Name:        input.Name,
		Type:        input.Type,
		Category:    input.Category,
		Rarity:      input.Rarity,
		Quantity:    input.Quantity,
		Weight:      input.Weight,
		Value:       input.Value,
		Properties:  input.Properties,
		Notes:       input.Notes,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.itemRepo.Create(ctx, tx, it); err != nil {
		return nil, err
	}
	if _, err := s.recorder.ItemAdded(ctx, tx, it, nil); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.publish(ctx, inv, events.EventItemAdded, map[string]any{"item": it})
	return it, nil
}

// Update applies a partial patch. Only fields that actually changed end up in
// the history entry's previous/new payload; a patch that changes nothing
// performs no write and logs nothing.
func (s *ItemService) Update(ctx context.Context, inv *models.Inventory, itemID uuid.UUID, patch ItemPatch) (*models.Item, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	it, err := s.itemRepo.GetForUpdate(ctx, tx, inv.ID, itemID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: item %s", ErrNotFound, itemID)
	}
	if err != nil {
		return nil, err
	}

	before := it.Snapshot()
	applyPatch(it, patch)

	if err := validateItemFields(it.Name, it.Type, it.Quantity, it.Weight, it.Value, it.Rarity); err != nil {
		return nil, err
	}

	prev, next := models.DiffSnapshots(before, it.Snapshot())
	if len(next) == 0 {
		return it, nil
	}

	if err := s.itemRepo.Update(ctx, tx, it); err != nil {
		return nil, err
	}
	if _, err := s.recorder.ItemUpdated(ctx, tx, it, prev, next, nil); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.publish(ctx, inv, events.EventItemUpdated, map[string]any{"item": it})
	return it, nil
}

// Remove deletes the item, capturing its full snapshot in the item_removed
// entry so an undo can recreate it.
func (s *ItemService) Remove(ctx context.Context, inv *models.Inventory, itemID uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	it, err := s.itemRepo.GetForUpdate(ctx, tx, inv.ID, itemID)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: item %s", ErrNotFound, itemID)
	}
	if err != nil {
		return err
	}

	deleted, err := s.itemRepo.Delete(ctx, tx, inv.ID, itemID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: item %s", ErrNotFound, itemID)
	}
	if _, err := s.recorder.ItemRemoved(ctx, tx, it, nil); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.publish(ctx, inv, events.EventItemRemoved, map[string]any{"id": itemID.String()})
	return nil
}

func applyPatch(it *models.Item, p ItemPatch) {
	if p.Name != nil {
		it.Name = *p.Name
	}
	if p.Type != nil {
		it.Type = *p.Type
	}
	if p.Category != nil {
		it.Category = p.Category
	}
	if p.Rarity != nil {
		it.Rarity = p.Rarity
	}
	if p.Quantity != nil {
		it.Quantity = *p.Quantity
	}
	if p.Weight != nil {
		it.Weight = p.Weight
	}
	if p.Value != nil {
		it.Value = p.Value
	}
	if p.Properties != nil {
		it.Properties = p.Properties
	}
	if p.Notes != nil {
		it.Notes = p.Notes
	}
}
