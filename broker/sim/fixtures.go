package sim

import (
	"math"
	"time"

	"github.com/rustyeddy/breakout/broker"
	"github.com/rustyeddy/breakout/market"
)

// Series builds n daily candles starting at start, moving step per bar
// with an extra sinusoidal wobble of the given amplitude. The last candle
// is left incomplete, like a live feed.
func Series(n int, start, step, wobble, halfRange float64) []market.Candle {
	t0 := time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC)
	cs := make([]market.Candle, 0, n)
	p := start
	for i := 0; i < n; i++ {
		o := p
		c := start + step*float64(i+1) + wobble*math.Sin(float64(i)/3)
		hi, lo := math.Max(o, c)+halfRange, math.Min(o, c)-halfRange
		cs = append(cs, market.Candle{
			Open:     o,
			High:     hi,
			Low:      lo,
			Close:    c,
			Time:     t0.AddDate(0, 0, i),
			Volume:   1000,
			Complete: i < n-1,
		})
		p = c
	}
	return cs
}

// Demo returns a EUR account with a small set of instruments: a trending
// EUR_USD, a falling USD_JPY, a sideways GBP_USD, and the EUR crosses the
// conversion search needs.
func Demo() *Engine {
	e := NewEngine(broker.Account{ID: "SIM-001", Currency: "EUR", Balance: 10000})

	major := func(name string) market.InstrumentMeta {
		return market.InstrumentMeta{Name: name, PipLocation: -4, DisplayPrecision: 5, MinimumTradeSize: 1}
	}
	yen := func(name string) market.InstrumentMeta {
		return market.InstrumentMeta{Name: name, PipLocation: -2, DisplayPrecision: 3, MinimumTradeSize: 1}
	}

	e.AddInstrument(major("EUR_USD"), Series(100, 1.0500, 0.0015, 0, 0.0010))
	e.AddInstrument(yen("USD_JPY"), Series(100, 155.00, -0.20, 0, 0.15))
	e.AddInstrument(major("GBP_USD"), Series(100, 1.2700, 0, 0.0060, 0.0020))
	e.AddInstrument(yen("EUR_JPY"), Series(100, 162.00, 0.01, 0.2, 0.2))
	return e
}
