package indicators

import (
	"testing"

	"github.com/rustyeddy/breakout/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trending(n int, start, step, halfRange float64) []market.Candle {
	cs := make([]market.Candle, 0, n)
	p := start
	for i := 0; i < n; i++ {
		o := p
		c := p + step
		cs = append(cs, market.Candle{Open: o, High: c + halfRange, Low: o - halfRange, Close: c})
		p = c
	}
	return cs
}

func TestTrueRange(t *testing.T) {
	current := market.Candle{High: 110, Low: 100, Close: 105}
	previous := market.Candle{Close: 104}
	assert.Equal(t, 10.0, trueRange(current, previous))

	gap := market.Candle{High: 120, Low: 118, Close: 119}
	assert.Equal(t, 16.0, trueRange(gap, previous))
}

func TestATRWilder(t *testing.T) {
	candles := []market.Candle{
		{High: 10, Low: 8, Close: 9},
		{High: 11, Low: 9, Close: 10},
		{High: 12, Low: 10, Close: 11},
		{High: 11, Low: 9, Close: 10},
		{High: 12, Low: 10, Close: 11},
		{High: 13, Low: 11, Close: 12},
	}
	atr := NewATR(3)
	s := Series(atr, candles)
	require.Len(t, s, len(candles))

	// TRs are all 2, so the average stays 2 once ready.
	assert.Equal(t, []float64{0, 0, 0, 2, 2, 2}, s)
	assert.Equal(t, "ATR(3)", atr.Name())
}

func TestLastClosed(t *testing.T) {
	candles := trending(40, 1.1000, 0.0010, 0.0005)
	candles[len(candles)-1].High += 0.05 // forming bar spike is ignored

	v, err := LastClosed(NewATR(18), candles)
	require.NoError(t, err)
	assert.InDelta(t, 0.0020, v, 1e-9)

	_, err = LastClosed(NewATR(18), candles[:10])
	assert.Error(t, err)
}

func TestADXStrongTrend(t *testing.T) {
	candles := trending(80, 1.0, 0.01, 0.002)
	adx := NewADX(14)
	s := Series(adx, candles)

	assert.True(t, adx.Ready())
	assert.Greater(t, s[len(s)-1], 90.0)
	assert.Greater(t, adx.PlusDI(), adx.MinusDI())
	assert.Equal(t, 0.0, s[0])
}

func TestADXFlatMarket(t *testing.T) {
	candles := make([]market.Candle, 60)
	for i := range candles {
		candles[i] = market.Candle{Open: 1, High: 1, Low: 1, Close: 1}
	}
	adx := NewADX(14)
	_ = Series(adx, candles)
	assert.True(t, adx.Ready())
	assert.Equal(t, 0.0, adx.Float64())
}
