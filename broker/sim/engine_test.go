package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/rustyeddy/breakout/broker"
	"github.com/rustyeddy/breakout/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEURUSD() *Engine {
	e := NewEngine(broker.Account{ID: "SIM", Currency: "USD", Balance: 1000})
	e.AddInstrument(market.InstrumentMeta{Name: "EUR_USD", PipLocation: -4, DisplayPrecision: 5, MinimumTradeSize: 1},
		Series(10, 1.10, 0.001, 0, 0.0005))
	return e
}

func TestSeries(t *testing.T) {
	cs := Series(5, 1.0, 0.1, 0, 0.05)
	require.Len(t, cs, 5)
	for i, c := range cs {
		assert.InDelta(t, 1.0+0.1*float64(i+1), c.Close, 1e-12)
		assert.GreaterOrEqual(t, c.High, c.Close)
		assert.LessOrEqual(t, c.Low, c.Open)
		assert.Equal(t, i < 4, c.Complete)
		if i > 0 {
			assert.Equal(t, cs[i-1].Close, c.Open)
			assert.Equal(t, cs[i-1].Time.AddDate(0, 0, 1), c.Time)
		}
	}
}

func TestEngine_InstrumentAndCandles(t *testing.T) {
	ctx := context.Background()
	e := newEURUSD()

	meta, err := e.Instrument(ctx, "EUR_USD")
	require.NoError(t, err)
	assert.Equal(t, "EUR", meta.BaseCurrency)
	assert.Equal(t, "USD", meta.QuoteCurrency)

	_, err = e.Instrument(ctx, "XAU_USD")
	assert.True(t, errors.Is(err, broker.ErrInstrumentUnavailable))

	cs, err := e.Candles(ctx, "EUR_USD", 3)
	require.NoError(t, err)
	assert.Len(t, cs, 3)

	e.FailData("EUR_USD")
	_, err = e.Candles(ctx, "EUR_USD", 3)
	assert.True(t, errors.Is(err, broker.ErrDataUnavailable))
}

func TestEngine_OrderLifecycle(t *testing.T) {
	ctx := context.Background()
	e := newEURUSD()

	fill, err := e.SubmitMarketOrder(ctx, broker.MarketOrderRequest{
		Instrument: "EUR_USD", Units: 100, StopLoss: 1.09, ClientID: "c1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, fill.TradeID)
	assert.InDelta(t, 1.11, fill.Price, 1e-12)

	trades, err := e.OpenTrades(ctx)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, 1.09, trades[0].StopLossPrice)

	// Price moves up 0.01; the long books 100 * 0.01.
	e.SetCandles("EUR_USD", Series(10, 1.11, 0.001, 0, 0.0005))
	res, err := e.CloseTrade(ctx, fill.TradeID)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.RealizedPL, 1e-9)
	assert.Equal(t, -100.0, res.Units)

	bal, err := e.Balance(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 1001.0, bal, 1e-9)

	_, err = e.CloseTrade(ctx, fill.TradeID)
	assert.True(t, errors.Is(err, broker.ErrTradeNotFound))
	assert.Equal(t, []string{fill.TradeID}, e.Closed())
}

func TestEngine_RejectAndCancel(t *testing.T) {
	ctx := context.Background()
	e := newEURUSD()

	e.RejectNext("insufficient margin")
	_, err := e.SubmitMarketOrder(ctx, broker.MarketOrderRequest{Instrument: "EUR_USD", Units: 1})
	assert.True(t, errors.Is(err, broker.ErrBrokerRejected))

	e.CancelNext("BOUNDS_VIOLATION")
	_, err = e.SubmitMarketOrder(ctx, broker.MarketOrderRequest{Instrument: "EUR_USD", Units: 1})
	var ce *broker.CancelledError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "BOUNDS_VIOLATION", ce.Reason)

	trades, _ := e.OpenTrades(ctx)
	assert.Empty(t, trades)
	assert.Len(t, e.Orders(), 2)

	// Knobs apply once.
	_, err = e.SubmitMarketOrder(ctx, broker.MarketOrderRequest{Instrument: "EUR_USD", Units: 1})
	assert.NoError(t, err)
}

func TestDemo(t *testing.T) {
	e := Demo()
	assert.Equal(t, "EUR", e.Currency())
	for _, sym := range []string{"EUR_USD", "USD_JPY", "GBP_USD", "EUR_JPY"} {
		cs, err := e.Candles(context.Background(), sym, 100)
		require.NoError(t, err, sym)
		assert.Len(t, cs, 100)
	}
}
