package order

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// DefaultPriceDecimals matches WooCommerce's default "Number of decimals" setting
const DefaultPriceDecimals = 2

// Money is a store amount rendered with a fixed number of decimals.
// It encodes to JSON as a string ("12.50"), the way the store's REST API does.
type Money struct {
	amount decimal.Decimal
	places int32
}

// NewMoney wraps an amount with the store's price decimals
func NewMoney(amount decimal.Decimal, places int32) Money {
	if places < 0 {
		places = DefaultPriceDecimals
	}
	return Money{amount: amount, places: places}
}

// Decimal returns the underlying amount
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// String formats the amount with the configured decimals
func (m Money) String() string {
	return m.amount.StringFixed(m.places)
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}
