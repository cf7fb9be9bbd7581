package dto

type CreateInventoryRequest struct {
	Name        string  `json:"name"`
	Passphrase  string  `json:"passphrase"`
	Description *string `json:"description,omitempty"`
	Slug        *string `json:"slug,omitempty"` // optional custom slug
}

type AuthRequest struct {
	Passphrase string `json:"passphrase"`
}

type UpdateInventoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type CreateItemRequest struct {
	Name       string         `json:"name"`
	Type       string         `json:"type,omitempty"`
	Category   *string        `json:"category,omitempty"`
	Rarity     *string        `json:"rarity,omitempty"`
	Quantity   int            `json:"quantity,omitempty"`
	Weight     *int           `json:"weight,omitempty"`
	Value      *int64         `json:"value,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	Notes      *string        `json:"notes,omitempty"`
}

type UpdateItemRequest struct {
	Name       *string        `json:"name,omitempty"`
	Type       *string        `json:"type,omitempty"`
	Category   *string        `json:"category,omitempty"`
	Rarity     *string        `json:"rarity,omitempty"`
	Quantity   *int           `json:"quantity,omitempty"`
	Weight     *int           `json:"weight,omitempty"`
	Value      *int64         `json:"value,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	Notes      *string        `json:"notes,omitempty"`
}

// UpdateCurrencyRequest is delta-based: positive adds, negative spends.
type UpdateCurrencyRequest struct {
	Copper   *int64  `json:"copper,omitempty"`
	Silver   *int64  `json:"silver,omitempty"`
	Gold     *int64  `json:"gold,omitempty"`
	Platinum *int64  `json:"platinum,omitempty"`
	Note     *string `json:"note,omitempty"`
}

type ConvertCurrencyRequest struct {
	FromDenomination string `json:"from_denomination"`
	ToDenomination   string `json:"to_denomination"`
	Amount           int64  `json:"amount"`
}
