package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/partyhoard/backend/internal/models"
)

type ItemRepo struct {
	db Querier
}

func NewItemRepo(db Querier) *ItemRepo {
	return &ItemRepo{db: db}
}

type ItemFilter struct {
	Type     *string
	Category *string
	Rarity   *string
	Search   *string // case-insensitive substring on name
	Limit    int
	Offset   int
}

const itemColumns = `id, inventory_id, name, type, category, rarity,
	quantity, weight, value, properties, notes, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (*models.Item, error) {
	var it models.Item
	err := row.Scan(&it.ID, &it.InventoryID, &it.Name, &it.Type, &it.Category, &it.Rarity,
		&it.Quantity, &it.Weight, &it.Value, &it.Properties, &it.Notes, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *ItemRepo) List(ctx context.Context, inventoryID uuid.UUID, f ItemFilter) ([]models.Item, int, error) {
	where := []string{"inventory_id = $1"}
	args := []any{inventoryID}

	addArg := func(clause string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if f.Type != nil {
		addArg("type = $%d", *f.Type)
	}
	if f.Category != nil {
		addArg("category = $%d", *f.Category)
	}
	if f.Rarity != nil {
		addArg("rarity = $%d", *f.Rarity)
	}
	if f.Search != nil {
		addArg("name ILIKE $%d", "%"+*f.Search+"%")
	}

	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRow(ctx,
		"SELECT count(*) FROM items WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, f.Offset)
	query := fmt.Sprintf(
		"SELECT %s FROM items WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		itemColumns, cond, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *it)
	}
	return items, total, rows.Err()
}

func (r *ItemRepo) Get(ctx context.Context, inventoryID, itemID uuid.UUID) (*models.Item, error) {
	return scanItem(r.db.QueryRow(ctx,
		"SELECT "+itemColumns+" FROM items WHERE id = $1 AND inventory_id = $2",
		itemID, inventoryID))
}

// GetForUpdate locks the item row inside q for the duration of the transaction.
func (r *ItemRepo) GetForUpdate(ctx context.Context, q Querier, inventoryID, itemID uuid.UUID) (*models.Item, error) {
	return scanItem(q.QueryRow(ctx,
		"SELECT "+itemColumns+" FROM items WHERE id = $1 AND inventory_id = $2 FOR UPDATE",
		itemID, inventoryID))
}

func (r *ItemRepo) Create(ctx context.Context, q Querier, it *models.Item) error {
	return q.QueryRow(ctx, `
		INSERT INTO items (inventory_id, name, type, category, rarity, quantity, weight, value, properties, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, it.InventoryID, it.Name, it.Type, it.Category, it.Rarity,
		it.Quantity, it.Weight, it.Value, it.Properties, it.Notes).Scan(
		&it.ID, &it.CreatedAt, &it.UpdatedAt)
}

func (r *ItemRepo) Update(ctx context.Context, q Querier, it *models.Item) error {
	return q.QueryRow(ctx, `
		UPDATE items
		SET name = $1, type = $2, category = $3, rarity = $4, quantity = $5,
		    weight = $6, value = $7, properties = $8, notes = $9, updated_at = now()
		WHERE id = $10 AND inventory_id = $11
		RETURNING updated_at
	`, it.Name, it.Type, it.Category, it.Rarity, it.Quantity,
		it.Weight, it.Value, it.Properties, it.Notes, it.ID, it.InventoryID).Scan(&it.UpdatedAt)
}

// Delete removes the item and reports whether a row was actually deleted.
func (r *ItemRepo) Delete(ctx context.Context, q Querier, inventoryID, itemID uuid.UUID) (bool, error) {
	tag, err := q.Exec(ctx,
		"DELETE FROM items WHERE id = $1 AND inventory_id = $2", itemID, inventoryID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
