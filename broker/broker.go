package broker

import (
	"context"
	"time"

	"github.com/rustyeddy/breakout/market"
)

// Broker is the authenticated account session the trading core reads from
// and submits to. Implementations must not cache the balance.
type Broker interface {
	AccountID() string
	Currency() string

	Balance(ctx context.Context) (float64, error)
	Instrument(ctx context.Context, symbol string) (market.InstrumentMeta, error)
	Candles(ctx context.Context, symbol string, count int) ([]market.Candle, error)
	OpenTrades(ctx context.Context) ([]TradeRecord, error)

	SubmitMarketOrder(ctx context.Context, req MarketOrderRequest) (OrderFill, error)
	CloseTrade(ctx context.Context, tradeID string) (CloseResult, error)
}

type Account struct {
	ID       string
	Currency string
	Balance  float64
}

// TradeRecord is an open trade as reported by the broker.
type TradeRecord struct {
	ID         string
	Instrument string
	Price      float64
	Units      float64
	OpenTime   time.Time

	StopLossOrderID string
	StopLossPrice   float64 // zero when no stop is attached

	RealizedPL   float64
	UnrealizedPL float64
	Financing    float64
	Commission   float64
}

type MarketOrderRequest struct {
	Instrument string
	Units      float64
	PriceBound float64
	StopLoss   float64

	UnitsPrecision   int
	DisplayPrecision int

	// ClientID tags the order so it can be traced back to a tick.
	ClientID string
}

type OrderFill struct {
	OrderID         string
	TradeID         string
	Instrument      string
	Units           float64
	Price           float64
	StopLossOrderID string
	Time            time.Time
}

type CloseResult struct {
	TradeID    string
	Units      float64
	Price      float64
	RealizedPL float64
	Time       time.Time
}
