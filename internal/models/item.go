package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ItemTypeWeapon   = "weapon"
	ItemTypeArmor    = "armor"
	ItemTypePotion   = "potion"
	ItemTypeScroll   = "scroll"
	ItemTypeWondrous = "wondrous"
	ItemTypeGear     = "gear"
	ItemTypeTreasure = "treasure"
	ItemTypeOther    = "other"
)

var validItemTypes = map[string]bool{
	ItemTypeWeapon:   true,
	ItemTypeArmor:    true,
	ItemTypePotion:   true,
	ItemTypeScroll:   true,
	ItemTypeWondrous: true,
	ItemTypeGear:     true,
	ItemTypeTreasure: true,
	ItemTypeOther:    true,
}

func IsValidItemType(t string) bool {
	return validItemTypes[t]
}

const (
	RarityCommon    = "common"
	RarityUncommon  = "uncommon"
	RarityRare      = "rare"
	RarityVeryRare  = "very_rare"
	RarityLegendary = "legendary"
)

var validRarities = map[string]bool{
	RarityCommon:    true,
	RarityUncommon:  true,
	RarityRare:      true,
	RarityVeryRare:  true,
	RarityLegendary: true,
}

// IsValidRarity accepts the empty string: most mundane gear has no rarity.
func IsValidRarity(r string) bool {
	return r == "" || validRarities[r]
}

type Item struct {
	ID          uuid.UUID      `json:"id"`
	InventoryID uuid.UUID      `json:"inventory_id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Category    *string        `json:"category,omitempty"`
	Rarity      *string        `json:"rarity,omitempty"`
	Quantity    int            `json:"quantity"`
	Weight      *int           `json:"weight,omitempty"` // tenths of a pound
	Value       *int64         `json:"value,omitempty"`  // copper pieces
	Properties  map[string]any `json:"properties,omitempty"`
	Notes       *string        `json:"notes,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Snapshot captures the item's mutable fields for history payloads. The shape
// must stay stable: undo resurrects deleted items from exactly this map.
func (i *Item) Snapshot() map[string]any {
	s := map[string]any{
		"id":       i.ID.String(),
		"name":     i.Name,
		"type":     i.Type,
		"quantity": i.Quantity,
	}
	if i.Category != nil {
		s["category"] = *i.Category
	}
	if i.Rarity != nil {
		s["rarity"] = *i.Rarity
	}
	if i.Weight != nil {
		s["weight"] = *i.Weight
	}
	if i.Value != nil {
		s["value"] = *i.Value
	}
	if i.Properties != nil {
		s["properties"] = i.Properties
	}
	if i.Notes != nil {
		s["notes"] = *i.Notes
	}
	return s
}
