package services

import (
	"fmt"

	"github.com/partyhoard/backend/internal/models"
)

// CurrencyDelta is a signed per-denomination adjustment. Positive values add
// funds, negative values spend.
type CurrencyDelta struct {
	Copper   int64
	Silver   int64
	Gold     int64
	Platinum int64
}

func (d CurrencyDelta) TotalCopper() int64 {
	return d.Copper +
		d.Silver*models.CopperRates[models.DenomSilver] +
		d.Gold*models.CopperRates[models.DenomGold] +
		d.Platinum*models.CopperRates[models.DenomPlatinum]
}

func (d CurrencyDelta) IsZero() bool {
	return d.Copper == 0 && d.Silver == 0 && d.Gold == 0 && d.Platinum == 0
}

// Negate returns the inverse delta, used when undoing a currency change.
func (d CurrencyDelta) Negate() CurrencyDelta {
	return CurrencyDelta{Copper: -d.Copper, Silver: -d.Silver, Gold: -d.Gold, Platinum: -d.Platinum}
}

// DeltaBetween derives the per-denomination delta that turned previous into
// current, as recorded by a currency_changed history entry.
func DeltaBetween(previous, current models.CurrencyTotals) CurrencyDelta {
	return CurrencyDelta{
		Copper:   current.Copper - previous.Copper,
		Silver:   current.Silver - previous.Silver,
		Gold:     current.Gold - previous.Gold,
		Platinum: current.Platinum - previous.Platinum,
	}
}

func addDeltas(t models.CurrencyTotals, d CurrencyDelta) models.CurrencyTotals {
	return models.CurrencyTotals{
		Copper:   t.Copper + d.Copper,
		Silver:   t.Silver + d.Silver,
		Gold:     t.Gold + d.Gold,
		Platinum: t.Platinum + d.Platinum,
	}
}

func anyNegative(t models.CurrencyTotals) bool {
	return t.Copper < 0 || t.Silver < 0 || t.Gold < 0 || t.Platinum < 0
}

// ApplyCurrencyDelta applies a user-facing adjustment. Spending makes change
// automatically: if a denomination runs short but the overall balance covers
// the spend, higher denominations are broken and the whole balance is
// re-split largest-first. Returns ErrInsufficientFunds when the total balance
// cannot cover the spend.
func ApplyCurrencyDelta(t models.CurrencyTotals, d CurrencyDelta) (models.CurrencyTotals, error) {
	next := addDeltas(t, d)
	if !anyNegative(next) {
		return next, nil
	}

	newTotal := t.TotalCopper() + d.TotalCopper()
	if newTotal < 0 {
		return t, ErrInsufficientFunds
	}
	return models.TotalsFromCopper(newTotal), nil
}

// ApplyExactDelta applies the delta denomination by denomination with no
// change-making. This is the undo path: a reversal must restore the exact
// recorded contribution, and fails if any denomination would go negative.
func ApplyExactDelta(t models.CurrencyTotals, d CurrencyDelta) (models.CurrencyTotals, error) {
	next := addDeltas(t, d)
	if anyNegative(next) {
		return t, ErrInsufficientFunds
	}
	return next, nil
}

// ConvertCurrency moves value between denominations. Up-conversion consumes
// only the exact amount needed and leaves the remainder in the source
// denomination; down-conversion converts the full amount.
func ConvertCurrency(t models.CurrencyTotals, from, to string, amount int64) (models.CurrencyTotals, error) {
	if !models.IsValidDenomination(from) || !models.IsValidDenomination(to) {
		return t, fmt.Errorf("%w: unknown denomination", ErrInvalidInput)
	}
	if from == to {
		return t, fmt.Errorf("%w: cannot convert to same denomination", ErrInvalidInput)
	}
	if amount < 1 {
		return t, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	have := t.Get(from)
	if have < amount {
		return t, fmt.Errorf("%w: have %d %s, need %d", ErrInsufficientFunds, have, from, amount)
	}

	fromRate := models.CopperRates[from]
	toRate := models.CopperRates[to]

	converted := amount * fromRate / toRate
	if converted == 0 {
		return t, fmt.Errorf("%w: %d %s is less than 1 %s", ErrInvalidInput, amount, from, to)
	}

	// Only the source amount actually needed is consumed; the remainder
	// stays in the source denomination.
	usedSource := converted * toRate / fromRate

	t.Set(from, have-usedSource)
	t.Set(to, t.Get(to)+converted)
	return t, nil
}
