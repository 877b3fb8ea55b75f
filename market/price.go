package market

import "github.com/shopspring/decimal"

// Round rounds x to the given number of decimal places, half away from zero.
func Round(x float64, places int) float64 {
	return decimal.NewFromFloat(x).Round(int32(places)).InexactFloat64()
}

// FormatPrice renders x with exactly places decimals, the way the broker
// expects prices and units on the wire.
func FormatPrice(x float64, places int) string {
	return decimal.NewFromFloat(x).StringFixed(int32(places))
}
