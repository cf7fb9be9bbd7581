package models

import (
	"time"

	"github.com/google/uuid"
)

// Currency denominations. Rates: 10 CP = 1 SP, 10 SP = 1 GP, 10 GP = 1 PP.
const (
	DenomCopper   = "copper"
	DenomSilver   = "silver"
	DenomGold     = "gold"
	DenomPlatinum = "platinum"
)

// CopperRates maps a denomination to its value in copper pieces.
var CopperRates = map[string]int64{
	DenomCopper:   1,
	DenomSilver:   10,
	DenomGold:     100,
	DenomPlatinum: 1000,
}

func IsValidDenomination(d string) bool {
	_, ok := CopperRates[d]
	return ok
}

type Inventory struct {
	ID             uuid.UUID `json:"id"`
	Slug           string    `json:"slug"`
	Name           string    `json:"name"`
	Description    *string   `json:"description,omitempty"`
	PassphraseHash string    `json:"-"`
	Copper         int64     `json:"copper"`
	Silver         int64     `json:"silver"`
	Gold           int64     `json:"gold"`
	Platinum       int64     `json:"platinum"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CurrencyTotals is a full four-denomination balance. Used both as live state
// and as the previous/new payload of currency_changed history entries.
type CurrencyTotals struct {
	Copper   int64 `json:"copper"`
	Silver   int64 `json:"silver"`
	Gold     int64 `json:"gold"`
	Platinum int64 `json:"platinum"`
}

func (i *Inventory) Currency() CurrencyTotals {
	return CurrencyTotals{Copper: i.Copper, Silver: i.Silver, Gold: i.Gold, Platinum: i.Platinum}
}

func (i *Inventory) SetCurrency(t CurrencyTotals) {
	i.Copper = t.Copper
	i.Silver = t.Silver
	i.Gold = t.Gold
	i.Platinum = t.Platinum
}

// TotalCopper is the balance collapsed into copper pieces.
func (t CurrencyTotals) TotalCopper() int64 {
	return t.Copper + t.Silver*CopperRates[DenomSilver] + t.Gold*CopperRates[DenomGold] + t.Platinum*CopperRates[DenomPlatinum]
}

// TotalGP is the balance expressed in gold pieces, for display.
func (t CurrencyTotals) TotalGP() float64 {
	return float64(t.TotalCopper()) / float64(CopperRates[DenomGold])
}

func (t CurrencyTotals) Get(denom string) int64 {
	switch denom {
	case DenomCopper:
		return t.Copper
	case DenomSilver:
		return t.Silver
	case DenomGold:
		return t.Gold
	case DenomPlatinum:
		return t.Platinum
	}
	return 0
}

func (t *CurrencyTotals) Set(denom string, v int64) {
	switch denom {
	case DenomCopper:
		t.Copper = v
	case DenomSilver:
		t.Silver = v
	case DenomGold:
		t.Gold = v
	case DenomPlatinum:
		t.Platinum = v
	}
}

// TotalsFromCopper breaks a copper amount into the largest denominations first.
func TotalsFromCopper(copper int64) CurrencyTotals {
	var t CurrencyTotals
	t.Platinum = copper / CopperRates[DenomPlatinum]
	copper %= CopperRates[DenomPlatinum]
	t.Gold = copper / CopperRates[DenomGold]
	copper %= CopperRates[DenomGold]
	t.Silver = copper / CopperRates[DenomSilver]
	copper %= CopperRates[DenomSilver]
	t.Copper = copper
	return t
}

// Map converts totals to the generic payload form stored in history entries.
func (t CurrencyTotals) Map() map[string]any {
	return map[string]any{
		DenomCopper:   t.Copper,
		DenomSilver:   t.Silver,
		DenomGold:     t.Gold,
		DenomPlatinum: t.Platinum,
	}
}
