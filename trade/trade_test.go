package trade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rustyeddy/breakout/broker"
	"github.com/rustyeddy/breakout/broker/sim"
	"github.com/rustyeddy/breakout/instrument"
	"github.com/rustyeddy/breakout/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eurusd(price float64) *instrument.Descriptor {
	return &instrument.Descriptor{
		Name:             "EUR_USD",
		BaseCurrency:     "EUR",
		QuoteCurrency:    "USD",
		PipLocation:      -4,
		Pip:              market.PipSize(-4),
		MinTradeSize:     1,
		UnitsPrecision:   0,
		DisplayPrecision: 5,
		Price:            price,
	}
}

func simBroker(price float64) *sim.Engine {
	e := sim.NewEngine(broker.Account{ID: "T", Currency: "EUR", Balance: 10000})
	e.AddInstrument(market.InstrumentMeta{
		Name: "EUR_USD", PipLocation: -4, DisplayPrecision: 5, MinimumTradeSize: 1,
	}, sim.Series(30, price, 0, 0, 0.002))
	return e
}

func TestNewProposed_Long(t *testing.T) {
	tr, err := NewProposed(eurusd(1.10000), 1000, 0.0012312)
	require.NoError(t, err)

	assert.Equal(t, Proposed, tr.State)
	assert.Equal(t, 1.09877, tr.StopLoss)
	assert.Less(t, tr.StopLoss, tr.OpenPrice)
	assert.InDelta(t, 1.10030, tr.PriceBound, 1e-12)
	assert.True(t, tr.Long())
}

func TestNewProposed_Short(t *testing.T) {
	tr, err := NewProposed(eurusd(1.10000), -1000, 0.0012312)
	require.NoError(t, err)

	assert.Equal(t, 1.10123, tr.StopLoss)
	assert.Greater(t, tr.StopLoss, tr.OpenPrice)
	assert.InDelta(t, 1.09970, tr.PriceBound, 1e-12)
	assert.False(t, tr.Long())
}

func TestNewProposed_BoundIsThreePips(t *testing.T) {
	d := &instrument.Descriptor{
		Name: "USD_JPY", Pip: market.PipSize(-2), DisplayPrecision: 3, Price: 150.123,
	}
	for _, units := range []float64{500, -500} {
		tr, err := NewProposed(d, units, 0.75)
		require.NoError(t, err)
		dir := 1.0
		if units < 0 {
			dir = -1
		}
		assert.InDelta(t, 0.03*dir, tr.PriceBound-tr.OpenPrice, 1e-9)
	}
}

func TestNewProposed_Invalid(t *testing.T) {
	_, err := NewProposed(eurusd(1.1), 0, 0.001)
	assert.True(t, errors.Is(err, ErrZeroUnits))

	_, err = NewProposed(eurusd(1.1), 10, 0)
	assert.Error(t, err)
}

func TestFromBroker(t *testing.T) {
	opened := time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC)
	tr := FromBroker(broker.TradeRecord{
		ID:              "42",
		Instrument:      "EUR_USD",
		Price:           1.08500,
		Units:           -2000,
		OpenTime:        opened,
		StopLossOrderID: "43",
		StopLossPrice:   1.08750,
		UnrealizedPL:    -3.5,
		Financing:       -0.12,
	}, 5)

	assert.Equal(t, Open, tr.State)
	assert.Equal(t, "42", tr.ID)
	assert.Equal(t, 1.08750, tr.StopLoss)
	assert.Equal(t, 0.0025, tr.InitialRisk)
	assert.Zero(t, tr.PriceBound)
	assert.Equal(t, opened, tr.OpenTime)
	assert.Equal(t, -0.12, tr.Financing)

	noStop := FromBroker(broker.TradeRecord{ID: "7", Instrument: "EUR_USD", Price: 1.1, Units: 5}, 5)
	assert.Zero(t, noStop.InitialRisk)
}

func TestOpenAndClose(t *testing.T) {
	ctx := context.Background()
	b := simBroker(1.1)

	tr, err := NewProposed(eurusd(1.1), 1000, 0.001)
	require.NoError(t, err)
	require.NoError(t, tr.Open(ctx, b, "tick-1"))

	assert.Equal(t, Open, tr.State)
	assert.NotEmpty(t, tr.ID)

	recs, err := b.OpenTrades(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.NotEmpty(t, tr.StopLossOrderID)
	assert.Equal(t, recs[0].StopLossOrderID, tr.StopLossOrderID)

	orders := b.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, "tick-1", orders[0].ClientID)
	assert.Equal(t, tr.StopLoss, orders[0].StopLoss)
	assert.Equal(t, tr.PriceBound, orders[0].PriceBound)
	assert.Equal(t, 5, orders[0].DisplayPrecision)

	// A second submission of the same trade is refused locally.
	assert.True(t, errors.Is(tr.Open(ctx, b, "tick-1"), ErrNotPending))

	require.NoError(t, tr.Close(ctx, b))
	assert.Equal(t, Closed, tr.State)
	assert.Equal(t, []string{tr.ID}, b.Closed())

	assert.True(t, errors.Is(tr.Close(ctx, b), ErrNotOpen))
}

func TestOpen_Cancelled(t *testing.T) {
	b := simBroker(1.1)
	b.CancelNext("STOP_LOSS_ON_FILL_PRICE_PRECISION_EXCEEDED")

	tr, err := NewProposed(eurusd(1.1), 1000, 0.001)
	require.NoError(t, err)

	err = tr.Open(context.Background(), b, "c1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, broker.ErrOrderCancelled))
	assert.Contains(t, err.Error(), "STOP_LOSS_ON_FILL_PRICE_PRECISION_EXCEEDED")
	assert.Equal(t, Proposed, tr.State)
	assert.Empty(t, tr.ID)
}

func TestOpen_Rejected(t *testing.T) {
	b := simBroker(1.1)
	b.RejectNext("insufficient margin")

	tr, err := NewProposed(eurusd(1.1), 1000, 0.001)
	require.NoError(t, err)

	err = tr.Open(context.Background(), b, "c1")
	var rej *broker.RejectedError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, "insufficient margin", rej.Message)
	assert.Equal(t, Rejected, tr.State)
}

func TestClose_Proposed(t *testing.T) {
	tr, err := NewProposed(eurusd(1.1), 1000, 0.001)
	require.NoError(t, err)
	err = tr.Close(context.Background(), simBroker(1.1))
	assert.True(t, errors.Is(err, ErrNotOpen))
}
