package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/partyhoard/backend/internal/models"
)

// HistoryRepo is the append-only mutation log store. Rows are never deleted;
// the only permitted update is the one-shot is_undone/undone_by transition.
type HistoryRepo struct {
	db Querier
}

func NewHistoryRepo(db Querier) *HistoryRepo {
	return &HistoryRepo{db: db}
}

type HistoryFilter struct {
	Action *string
	ItemID *uuid.UUID
	Search *string // case-insensitive substring on item_name
	Limit  int
	Offset int
}

const historyColumns = `id, inventory_id, action, item_id, item_name,
	item_snapshot, previous_value, new_value, note, is_undone, undone_by, created_at`

func scanHistoryEntry(row interface{ Scan(...any) error }) (*models.HistoryEntry, error) {
	var e models.HistoryEntry
	err := row.Scan(&e.ID, &e.InventoryID, &e.Action, &e.ItemID, &e.ItemName,
		&e.ItemSnapshot, &e.PreviousValue, &e.NewValue, &e.Note, &e.IsUndone, &e.UndoneBy, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Append inserts a new entry and fills in its assigned id and timestamp.
// Callers pass the transaction of the domain write the entry describes.
func (r *HistoryRepo) Append(ctx context.Context, q Querier, e *models.HistoryEntry) error {
	return q.QueryRow(ctx, `
		INSERT INTO history_entries
			(inventory_id, action, item_id, item_name, item_snapshot, previous_value, new_value, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, e.InventoryID, e.Action, e.ItemID, e.ItemName,
		e.ItemSnapshot, e.PreviousValue, e.NewValue, e.Note).Scan(&e.ID, &e.CreatedAt)
}

func (r *HistoryRepo) Get(ctx context.Context, id uuid.UUID) (*models.HistoryEntry, error) {
	return scanHistoryEntry(r.db.QueryRow(ctx,
		"SELECT "+historyColumns+" FROM history_entries WHERE id = $1", id))
}

// GetForUpdate locks the entry row inside q so a concurrent undo of the same
// entry blocks until this transaction settles.
func (r *HistoryRepo) GetForUpdate(ctx context.Context, q Querier, id uuid.UUID) (*models.HistoryEntry, error) {
	return scanHistoryEntry(q.QueryRow(ctx,
		"SELECT "+historyColumns+" FROM history_entries WHERE id = $1 FOR UPDATE", id))
}

func (r *HistoryRepo) List(ctx context.Context, inventoryID uuid.UUID, f HistoryFilter) ([]models.HistoryEntry, int, error) {
	where := []string{"inventory_id = $1"}
	args := []any{inventoryID}

	addArg := func(clause string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if f.Action != nil {
		addArg("action = $%d", *f.Action)
	}
	if f.ItemID != nil {
		addArg("item_id = $%d", *f.ItemID)
	}
	if f.Search != nil {
		addArg("item_name ILIKE $%d", "%"+*f.Search+"%")
	}

	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRow(ctx,
		"SELECT count(*) FROM history_entries WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, f.Offset)
	query := fmt.Sprintf(
		"SELECT %s FROM history_entries WHERE %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d",
		historyColumns, cond, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		e, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, *e)
	}
	return entries, total, rows.Err()
}

// MarkUndone flips is_undone exactly once and records which undo entry did it.
// Returns the number of rows updated: zero means the entry was already undone
// (or raced a concurrent undo), which callers surface as a conflict.
func (r *HistoryRepo) MarkUndone(ctx context.Context, q Querier, id, undoEntryID uuid.UUID) (int64, error) {
	tag, err := q.Exec(ctx, `
		UPDATE history_entries SET is_undone = true, undone_by = $1
		WHERE id = $2 AND is_undone = false
	`, undoEntryID, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
