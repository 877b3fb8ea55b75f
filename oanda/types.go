package oanda

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// num decodes v20 decimals, which arrive quoted ("1.08420") or bare.
type num float64

func (n *num) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("oanda: bad number %s: %w", b, err)
	}
	*n = num(f)
	return nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %s: %w", s, err)
	}
	return t, nil
}

// Granularity represents the time frame for candles
type Granularity string

const (
	M1  Granularity = "M1"
	M5  Granularity = "M5"
	M15 Granularity = "M15"
	M30 Granularity = "M30"
	H1  Granularity = "H1"
	H4  Granularity = "H4"
	D   Granularity = "D"
	W   Granularity = "W"
	M   Granularity = "M"
)

// PriceComponent represents the price component for candles
type PriceComponent string

const (
	MidPrice PriceComponent = "M"
	BidPrice PriceComponent = "B"
	AskPrice PriceComponent = "A"
)

type AccountSummary struct {
	ID              string
	Alias           string
	Currency        string
	Balance         float64
	NAV             float64
	UnrealizedPL    float64
	MarginUsed      float64
	MarginAvailable float64
	OpenTradeCount  int
}

type Instrument struct {
	Name                string
	Type                string
	DisplayName         string
	PipLocation         int
	DisplayPrecision    int
	TradeUnitsPrecision int
	MinimumTradeSize    float64
	MarginRate          float64
}

type Trade struct {
	ID           string
	Instrument   string
	Price        float64
	OpenTime     time.Time
	InitialUnits float64
	CurrentUnits float64
	RealizedPL   float64
	UnrealizedPL float64
	Financing    float64

	StopLossOrderID string
	StopLossPrice   float64
}

// MarketOrder is the subset of a v20 MarketOrderRequest the trader sends.
// Prices and units are pre-formatted at the instrument precision.
type MarketOrder struct {
	Instrument string
	Units      string
	PriceBound string
	StopLoss   string
	ClientID   string
}

// OrderResult summarizes the transactions created by an order request.
// Cancelled is set when the broker accepted then cancelled the order.
type OrderResult struct {
	OrderID string
	TradeID string
	// StopLossOrderID is the stop attached on fill, if any.
	StopLossOrderID string
	Units           float64
	Price   float64
	Time    time.Time

	Cancelled    bool
	CancelReason string
}

type CloseResult struct {
	TradeID    string
	Units      float64
	Price      float64
	RealizedPL float64
	Time       time.Time

	Cancelled    bool
	CancelReason string
}
