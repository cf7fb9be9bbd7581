package models

import (
	"reflect"
	"testing"
)

func TestUndoable(t *testing.T) {
	tests := []struct {
		name     string
		entry    HistoryEntry
		expected bool
	}{
		{"fresh item_added", HistoryEntry{Action: ActionItemAdded}, true},
		{"fresh item_removed", HistoryEntry{Action: ActionItemRemoved}, true},
		{"fresh item_updated", HistoryEntry{Action: ActionItemUpdated}, true},
		{"fresh currency_changed", HistoryEntry{Action: ActionCurrencyChanged}, true},
		{"undo entry never undoable", HistoryEntry{Action: ActionUndo}, false},
		{"rollback entry never undoable", HistoryEntry{Action: ActionRollback}, false},
		{"already undone", HistoryEntry{Action: ActionItemAdded, IsUndone: true}, false},
		{"undone undo entry", HistoryEntry{Action: ActionUndo, IsUndone: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.Undoable(); got != tt.expected {
				t.Errorf("Undoable() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsValidAction(t *testing.T) {
	for _, a := range []string{ActionItemAdded, ActionItemRemoved, ActionItemUpdated, ActionCurrencyChanged, ActionRollback, ActionUndo} {
		if !IsValidAction(a) {
			t.Errorf("IsValidAction(%q) = false, want true", a)
		}
	}
	if IsValidAction("item_renamed") {
		t.Error("IsValidAction accepted an unknown action")
	}
}

func TestDiffSnapshots(t *testing.T) {
	tests := []struct {
		name     string
		previous map[string]any
		current  map[string]any
		wantPrev map[string]any
		wantNext map[string]any
	}{
		{
			name:     "no changes",
			previous: map[string]any{"name": "Rope", "quantity": 1},
			current:  map[string]any{"name": "Rope", "quantity": 1},
			wantPrev: map[string]any{},
			wantNext: map[string]any{},
		},
		{
			name:     "single field changed",
			previous: map[string]any{"name": "Rope", "quantity": 3},
			current:  map[string]any{"name": "Rope", "quantity": 5},
			wantPrev: map[string]any{"quantity": 3},
			wantNext: map[string]any{"quantity": 5},
		},
		{
			name:     "field added",
			previous: map[string]any{"name": "Rope"},
			current:  map[string]any{"name": "Rope", "notes": "x"},
			wantPrev: map[string]any{"notes": nil},
			wantNext: map[string]any{"notes": "x"},
		},
		{
			name:     "field cleared",
			previous: map[string]any{"name": "Rope", "notes": "frayed"},
			current:  map[string]any{"name": "Rope"},
			wantPrev: map[string]any{"notes": "frayed"},
			wantNext: map[string]any{"notes": nil},
		},
		{
			name:     "id is never part of the diff",
			previous: map[string]any{"id": "a", "name": "Rope"},
			current:  map[string]any{"id": "b", "name": "Rope"},
			wantPrev: map[string]any{},
			wantNext: map[string]any{},
		},
		{
			name:     "nested properties compared deeply",
			previous: map[string]any{"properties": map[string]any{"damage": "1d8"}},
			current:  map[string]any{"properties": map[string]any{"damage": "2d6"}},
			wantPrev: map[string]any{"properties": map[string]any{"damage": "1d8"}},
			wantNext: map[string]any{"properties": map[string]any{"damage": "2d6"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev, next := DiffSnapshots(tt.previous, tt.current)
			if !reflect.DeepEqual(prev, tt.wantPrev) {
				t.Errorf("prev = %v, want %v", prev, tt.wantPrev)
			}
			if !reflect.DeepEqual(next, tt.wantNext) {
				t.Errorf("next = %v, want %v", next, tt.wantNext)
			}
		})
	}
}
