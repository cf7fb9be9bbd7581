package dto

import (
	"github.com/google/uuid"
	"github.com/partyhoard/backend/internal/models"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type AuthResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
}

type ItemListResponse struct {
	Items  []models.Item `json:"items"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

type CurrencyResponse struct {
	Copper   int64   `json:"copper"`
	Silver   int64   `json:"silver"`
	Gold     int64   `json:"gold"`
	Platinum int64   `json:"platinum"`
	TotalGP  float64 `json:"total_gp"`
}

func NewCurrencyResponse(t models.CurrencyTotals) CurrencyResponse {
	return CurrencyResponse{
		Copper:   t.Copper,
		Silver:   t.Silver,
		Gold:     t.Gold,
		Platinum: t.Platinum,
		TotalGP:  t.TotalGP(),
	}
}

type HistoryListResponse struct {
	Entries []models.HistoryEntry `json:"entries"`
	Total   int                   `json:"total"`
	Limit   int                   `json:"limit"`
	Offset  int                   `json:"offset"`
}

type UndoResponse struct {
	Success     bool       `json:"success"`
	Message     string     `json:"message,omitempty"`
	UndoEntryID *uuid.UUID `json:"undo_entry_id,omitempty"`
}
