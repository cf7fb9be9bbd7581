package events

import "context"

// StreamInventory is the single Redis channel all inventory events flow
// through; the WS hub routes each event by its InventoryID.
const StreamInventory = "events:inventory"

// Event types. An undo does not get its own type: it emits whichever of
// these corresponds to the inverse it performed.
const (
	EventItemAdded       = "item_added"
	EventItemUpdated     = "item_updated"
	EventItemRemoved     = "item_removed"
	EventCurrencyUpdated = "currency_updated"
	EventConnectionCount = "connection_count"
)

// Event carries enough payload for a client to patch its local cache without
// a follow-up fetch: the added/updated item body, the removed item id, or the
// new currency totals.
type Event struct {
	Type        string         `json:"type"`
	InventoryID string         `json:"inventory_id"`
	Payload     map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
