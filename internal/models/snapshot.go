package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Snapshot maps come back from JSONB with float64 numbers, so every numeric
// read goes through a coercion helper.

func snapInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

func snapString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// ItemFromSnapshot rebuilds an item from a history snapshot. The returned
// item has a zero ID: resurrection is a fresh creation and the storage layer
// assigns a new identifier.
func ItemFromSnapshot(inventoryID uuid.UUID, snap map[string]any) (*Item, error) {
	name, ok := snapString(snap["name"])
	if !ok || name == "" {
		return nil, fmt.Errorf("snapshot has no item name")
	}

	it := &Item{
		InventoryID: inventoryID,
		Name:        name,
		Type:        ItemTypeOther,
		Quantity:    1,
	}
	if t, ok := snapString(snap["type"]); ok && IsValidItemType(t) {
		it.Type = t
	}
	if q, ok := snapInt64(snap["quantity"]); ok && q >= 1 {
		it.Quantity = int(q)
	}
	if s, ok := snapString(snap["category"]); ok {
		it.Category = &s
	}
	if s, ok := snapString(snap["rarity"]); ok {
		it.Rarity = &s
	}
	if w, ok := snapInt64(snap["weight"]); ok {
		wi := int(w)
		it.Weight = &wi
	}
	if v, ok := snapInt64(snap["value"]); ok {
		it.Value = &v
	}
	if p, ok := snap["properties"].(map[string]any); ok {
		it.Properties = p
	}
	if s, ok := snapString(snap["notes"]); ok {
		it.Notes = &s
	}
	return it, nil
}

// ApplySnapshotFields writes the given snapshot fields onto an existing item.
// Unknown keys are ignored; a nil value clears the optional field it names.
// This is the field-scoped restore path of undo: only the fields present in
// the map are touched.
func ApplySnapshotFields(it *Item, fields map[string]any) {
	for k, v := range fields {
		switch k {
		case "name":
			if s, ok := snapString(v); ok && s != "" {
				it.Name = s
			}
		case "type":
			if s, ok := snapString(v); ok && IsValidItemType(s) {
				it.Type = s
			}
		case "quantity":
			if q, ok := snapInt64(v); ok && q >= 1 {
				it.Quantity = int(q)
			}
		case "category":
			if v == nil {
				it.Category = nil
			} else if s, ok := snapString(v); ok {
				it.Category = &s
			}
		case "rarity":
			if v == nil {
				it.Rarity = nil
			} else if s, ok := snapString(v); ok {
				it.Rarity = &s
			}
		case "weight":
			if v == nil {
				it.Weight = nil
			} else if w, ok := snapInt64(v); ok {
				wi := int(w)
				it.Weight = &wi
			}
		case "value":
			if v == nil {
				it.Value = nil
			} else if n, ok := snapInt64(v); ok {
				it.Value = &n
			}
		case "properties":
			if v == nil {
				it.Properties = nil
			} else if p, ok := v.(map[string]any); ok {
				it.Properties = p
			}
		case "notes":
			if v == nil {
				it.Notes = nil
			} else if s, ok := snapString(v); ok {
				it.Notes = &s
			}
		}
	}
}

// TotalsFromMap reads a four-denomination payload out of a history entry.
// Missing denominations default to zero.
func TotalsFromMap(m map[string]any) CurrencyTotals {
	var t CurrencyTotals
	for _, d := range []string{DenomCopper, DenomSilver, DenomGold, DenomPlatinum} {
		if v, ok := snapInt64(m[d]); ok {
			t.Set(d, v)
		}
	}
	return t
}
