package services

import (
	"context"

	"github.com/partyhoard/backend/internal/events"
	"github.com/partyhoard/backend/internal/models"
	"github.com/partyhoard/backend/internal/repositories"
	"go.uber.org/zap"
)

type CurrencyService struct {
	db            repositories.DB
	inventoryRepo *repositories.InventoryRepo
	recorder      *Recorder
	publisher     events.Publisher
	log           *zap.Logger
}

func NewCurrencyService(
	db repositories.DB,
	inventoryRepo *repositories.InventoryRepo,
	recorder *Recorder,
	publisher events.Publisher,
	log *zap.Logger,
) *CurrencyService {
	return &CurrencyService{
		db:            db,
		inventoryRepo: inventoryRepo,
		recorder:      recorder,
		publisher:     publisher,
		log:           log,
	}
}

// publishTotals broadcasts the new balance to live viewers. Best-effort: a
// failed publish never fails the already-committed mutation.
func (s *CurrencyService) publishTotals(ctx context.Context, inv *models.Inventory, t models.CurrencyTotals) {
	err := s.publisher.Publish(ctx, events.StreamInventory, events.Event{
		Type:        events.EventCurrencyUpdated,
		InventoryID: inv.ID.String(),
		Payload:     map[string]any{"totals": t.Map(), "total_gp": t.TotalGP()},
	})
	if err != nil {
		s.log.Warn("currency event publish failed", zap.String("slug", inv.Slug), zap.Error(err))
	}
}

// ApplyDelta adjusts the treasury by signed per-denomination deltas, logging
// one currency_changed entry in the same transaction as the balance update.
func (s *CurrencyService) ApplyDelta(ctx context.Context, inv *models.Inventory, delta CurrencyDelta, note *string) (models.CurrencyTotals, error) {
	var result models.CurrencyTotals

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return result, err
	}
	defer tx.Rollback(ctx)

	current, err := s.inventoryRepo.GetForUpdate(ctx, tx, inv.ID)
	if err != nil {
		return result, err
	}
	previous := current.Currency()

	result, err = ApplyCurrencyDelta(previous, delta)
	if err != nil {
		return previous, err
	}

	if err := s.inventoryRepo.UpdateCurrency(ctx, tx, inv.ID, result); err != nil {
		return result, err
	}
	if _, err := s.recorder.CurrencyChanged(ctx, tx, inv.ID, previous, result, note); err != nil {
		return result, err
	}
	if err := tx.Commit(ctx); err != nil {
		return result, err
	}

	inv.SetCurrency(result)
	s.publishTotals(ctx, inv, result)
	return result, nil
}

// Convert exchanges between denominations at the standard rates.
func (s *CurrencyService) Convert(ctx context.Context, inv *models.Inventory, from, to string, amount int64) (models.CurrencyTotals, error) {
	var result models.CurrencyTotals

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return result, err
	}
	defer tx.Rollback(ctx)

	current, err := s.inventoryRepo.GetForUpdate(ctx, tx, inv.ID)
	if err != nil {
		return result, err
	}
	previous := current.Currency()

	result, err = ConvertCurrency(previous, from, to, amount)
	if err != nil {
		return previous, err
	}

	if err := s.inventoryRepo.UpdateCurrency(ctx, tx, inv.ID, result); err != nil {
		return result, err
	}
	if _, err := s.recorder.CurrencyChanged(ctx, tx, inv.ID, previous, result, nil); err != nil {
		return result, err
	}
	if err := tx.Commit(ctx); err != nil {
		return result, err
	}

	inv.SetCurrency(result)
	s.publishTotals(ctx, inv, result)
	return result, nil
}
