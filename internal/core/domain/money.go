package domain

import (
	"fmt"
	"math"
)

// Cents is a monetary amount in integer cents. Prices and net positions are
// carried as Cents everywhere inside the core; the API converts to and from
// decimal dollars at the boundary.
type Cents int64

// DollarsToCents converts a float64 dollar amount to Cents. It rejects inputs
// with more than 2 decimal places. Uses math.Round after scaling to absorb
// floating-point representation artifacts (e.g. 1.10*1000 = 1099.999...).
func DollarsToCents(f float64) (Cents, error) {
	scaled := math.Round(f * 1000)
	if math.Mod(scaled, 10) != 0 {
		return 0, fmt.Errorf("monetary values must have at most 2 decimal places")
	}
	return Cents(math.Round(f * 100)), nil
}

// Dollars converts the amount back to a float64 dollar value.
func (c Cents) Dollars() float64 {
	return float64(c) / 100.0
}
