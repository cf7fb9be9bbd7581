package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/partyhoard/backend/internal/models"
)

type InventoryRepo struct {
	db Querier
}

func NewInventoryRepo(db Querier) *InventoryRepo {
	return &InventoryRepo{db: db}
}

const inventoryColumns = `id, slug, name, description, passphrase_hash,
	copper, silver, gold, platinum, created_at, updated_at`

func scanInventory(row interface{ Scan(...any) error }) (*models.Inventory, error) {
	var inv models.Inventory
	err := row.Scan(&inv.ID, &inv.Slug, &inv.Name, &inv.Description, &inv.PassphraseHash,
		&inv.Copper, &inv.Silver, &inv.Gold, &inv.Platinum, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InventoryRepo) Create(ctx context.Context, inv *models.Inventory) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO inventories (slug, name, description, passphrase_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, copper, silver, gold, platinum, created_at, updated_at
	`, inv.Slug, inv.Name, inv.Description, inv.PassphraseHash).Scan(
		&inv.ID, &inv.Copper, &inv.Silver, &inv.Gold, &inv.Platinum, &inv.CreatedAt, &inv.UpdatedAt)
}

func (r *InventoryRepo) GetBySlug(ctx context.Context, slug string) (*models.Inventory, error) {
	return scanInventory(r.db.QueryRow(ctx, `
		SELECT `+inventoryColumns+` FROM inventories WHERE slug = $1
	`, slug))
}

func (r *InventoryRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM inventories WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

func (r *InventoryRepo) UpdateDetails(ctx context.Context, id uuid.UUID, name string, description *string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE inventories SET name = $1, description = $2, updated_at = now() WHERE id = $3
	`, name, description, id)
	return err
}

// GetForUpdate loads the inventory row with FOR UPDATE inside q, serializing
// concurrent currency writes against the same inventory.
func (r *InventoryRepo) GetForUpdate(ctx context.Context, q Querier, id uuid.UUID) (*models.Inventory, error) {
	return scanInventory(q.QueryRow(ctx, `
		SELECT `+inventoryColumns+` FROM inventories WHERE id = $1 FOR UPDATE
	`, id))
}

func (r *InventoryRepo) UpdateCurrency(ctx context.Context, q Querier, id uuid.UUID, t models.CurrencyTotals) error {
	_, err := q.Exec(ctx, `
		UPDATE inventories
		SET copper = $1, silver = $2, gold = $3, platinum = $4, updated_at = now()
		WHERE id = $5
	`, t.Copper, t.Silver, t.Gold, t.Platinum, id)
	return err
}
