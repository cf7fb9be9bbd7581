package models

import (
	"reflect"
	"time"

	"github.com/google/uuid"
)

// History actions.
const (
	ActionItemAdded       = "item_added"
	ActionItemRemoved     = "item_removed"
	ActionItemUpdated     = "item_updated"
	ActionCurrencyChanged = "currency_changed"
	ActionRollback        = "rollback"
	ActionUndo            = "undo"
)

var validActions = map[string]bool{
	ActionItemAdded:       true,
	ActionItemRemoved:     true,
	ActionItemUpdated:     true,
	ActionCurrencyChanged: true,
	ActionRollback:        true,
	ActionUndo:            true,
}

func IsValidAction(a string) bool {
	return validActions[a]
}

// undoableActions is the closed set of actions the undo engine can reverse.
// undo and rollback entries are excluded by construction, not by flag.
var undoableActions = map[string]bool{
	ActionItemAdded:       true,
	ActionItemRemoved:     true,
	ActionItemUpdated:     true,
	ActionCurrencyChanged: true,
}

func IsUndoableAction(a string) bool {
	return undoableActions[a]
}

// HistoryEntry is one immutable record of the audit log. Once appended, no
// field is ever rewritten except IsUndone/UndoneBy, which transition exactly
// once, false to true, when a later undo entry reverses this one.
type HistoryEntry struct {
	ID            uuid.UUID      `json:"id"`
	InventoryID   uuid.UUID      `json:"inventory_id"`
	Action        string         `json:"action"`
	ItemID        *uuid.UUID     `json:"item_id,omitempty"`
	ItemName      *string        `json:"item_name,omitempty"`
	ItemSnapshot  map[string]any `json:"item_snapshot,omitempty"`
	PreviousValue map[string]any `json:"previous_value,omitempty"`
	NewValue      map[string]any `json:"new_value,omitempty"`
	Note          *string        `json:"note,omitempty"`
	IsUndone      bool           `json:"is_undone"`
	UndoneBy      *uuid.UUID     `json:"undone_by,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Undoable reports whether the undo engine may reverse this entry.
func (e *HistoryEntry) Undoable() bool {
	return !e.IsUndone && IsUndoableAction(e.Action)
}

// DiffSnapshots compares two item snapshots field by field and returns the
// previous/new maps restricted to fields that actually changed. Fields with
// identical values are omitted; a field absent on one side diffs against nil.
func DiffSnapshots(previous, current map[string]any) (prev, next map[string]any) {
	prev = map[string]any{}
	next = map[string]any{}

	keys := map[string]bool{}
	for k := range previous {
		keys[k] = true
	}
	for k := range current {
		keys[k] = true
	}

	for k := range keys {
		if k == "id" {
			continue
		}
		oldV, hadOld := previous[k]
		newV, hasNew := current[k]
		if hadOld && hasNew && reflect.DeepEqual(oldV, newV) {
			continue
		}
		if !hadOld && !hasNew {
			continue
		}
		if hadOld {
			prev[k] = oldV
		} else {
			prev[k] = nil
		}
		if hasNew {
			next[k] = newV
		} else {
			next[k] = nil
		}
	}
	return prev, next
}
