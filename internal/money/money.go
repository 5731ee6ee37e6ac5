package money

import (
	"fmt"
	"math"
)

// Cents is a currency amount in integer minor units (1/100 of a dollar).
// Bid arithmetic repeatedly adds a step price, so amounts are kept integral
// internally; float64 dollars appear only at the JSON boundary.
type Cents int64

// FromDollars converts a decimal dollar amount to Cents, rounding half away
// from zero.
func FromDollars(d float64) Cents {
	return Cents(math.Round(d * 100))
}

// Dollars returns the amount as a decimal dollar value for display/JSON.
func (c Cents) Dollars() float64 {
	return float64(c) / 100
}

// Percent returns rate percent of the amount, rounded to the nearest cent.
// Used for affiliate commission (price × commissionRate / 100).
func (c Cents) Percent(rate float64) Cents {
	return Cents(math.Round(float64(c) * rate / 100))
}

// String formats the amount as a dollar string, e.g. "1650.00".
func (c Cents) String() string {
	sign := ""
	v := c
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
