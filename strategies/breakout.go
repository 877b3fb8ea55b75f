package strategies

import (
	"errors"
	"fmt"

	"github.com/rustyeddy/breakout/market"
)

// DefaultADXThreshold is the trend strength an entry must exceed.
const DefaultADXThreshold = 25.0

var (
	ErrZeroVolume  = errors.New("trade has zero units")
	ErrEmptyWindow = errors.New("empty close window")
)

// ChannelBreakout enters when price closes at an extreme of its recent
// window while the trend is strong.
type ChannelBreakout struct {
	Threshold float64
}

func NewChannelBreakout(threshold float64) ChannelBreakout {
	if threshold <= 0 {
		threshold = DefaultADXThreshold
	}
	return ChannelBreakout{Threshold: threshold}
}

func (c ChannelBreakout) Name() string {
	return fmt.Sprintf("CHANNEL_BREAKOUT(ADX>%.1f)", c.Threshold)
}

// Evaluate returns the entry signal for the latest close in closes given
// the ADX reading of the last closed period. The buy branch is checked
// first, so a flat window where max == min yields BuyEntry.
func (c ChannelBreakout) Evaluate(adx float64, closes []float64) Signal {
	lo, hi, ok := market.Extremes(closes)
	if !ok || adx <= c.Threshold {
		return NoEntry
	}
	last := closes[len(closes)-1]
	switch {
	case last == hi:
		return BuyEntry
	case last == lo:
		return SellEntry
	}
	return NoEntry
}

// TrailingExtreme reports whether an open trade should be closed now: a
// short when the latest close is the window maximum, a long when it is the
// window minimum. A zero-unit trade never exits and returns ErrZeroVolume.
func TrailingExtreme(units float64, closes []float64) (bool, error) {
	if units == 0 {
		return false, ErrZeroVolume
	}
	lo, hi, ok := market.Extremes(closes)
	if !ok {
		return false, ErrEmptyWindow
	}
	last := closes[len(closes)-1]
	if units < 0 {
		return last == hi, nil
	}
	return last == lo, nil
}
