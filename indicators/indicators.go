// Package indicators provides technical analysis indicators for trading
package indicators

import (
	"fmt"

	"github.com/rustyeddy/breakout/market"
)

// Indicator computes a single streaming value from candles.
type Indicator interface {
	// Name returns a stable identifier like "ATR(18)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next candle and updates internal state.
	Update(c market.Candle)

	// Ready reports whether Float64() is meaningful (warmup completed).
	Ready() bool

	Float64() float64
}

// Series feeds candles through ind and returns one reading per candle,
// aligned with the input. Readings before warmup completes are zero.
func Series(ind Indicator, candles []market.Candle) []float64 {
	ind.Reset()
	out := make([]float64, len(candles))
	for i, c := range candles {
		ind.Update(c)
		if ind.Ready() {
			out[i] = ind.Float64()
		}
	}
	return out
}

// LastClosed returns the second-to-last reading of a series: the value for
// the most recently completed period when the final candle is still forming.
func LastClosed(ind Indicator, candles []market.Candle) (float64, error) {
	if len(candles) < ind.Warmup()+1 {
		return 0, fmt.Errorf("%s: not enough candles: need %d, got %d",
			ind.Name(), ind.Warmup()+1, len(candles))
	}
	s := Series(ind, candles)
	return s[len(s)-2], nil
}
