package risk

import "math"

// PlannedRisk is the loss, in account currency, if a trade of units is
// stopped out stopDistance away from its entry. quoteToAccount converts one
// unit of the quote currency into the account currency.
func PlannedRisk(units, stopDistance, quoteToAccount float64) float64 {
	return math.Abs(units) * math.Abs(stopDistance) * quoteToAccount
}

// RiskPct is planned risk as a fraction of balance. A non-positive balance
// makes any risk infinite.
func RiskPct(planned, balance float64) float64 {
	if balance <= 0 {
		return math.Inf(1)
	}
	return planned / balance
}
