// Package trade models a single position and its submission to, and
// closure at, the broker.
package trade

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/breakout/broker"
	"github.com/rustyeddy/breakout/instrument"
	"github.com/rustyeddy/breakout/market"
)

// BoundPips is how far past the open price a market order may fill.
const BoundPips = 3

type State int

const (
	Proposed State = iota
	Open
	Closed
	Rejected
)

func (s State) String() string {
	switch s {
	case Proposed:
		return "proposed"
	case Open:
		return "open"
	case Closed:
		return "closed"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrZeroUnits  = errors.New("trade has zero units")
	ErrNotOpen    = errors.New("trade is not open")
	ErrNotPending = errors.New("trade is not proposed")
)

type Trade struct {
	ID         string
	Instrument string
	Units      float64
	OpenPrice  float64
	OpenTime   time.Time

	StopLoss        float64
	StopLossOrderID string
	// PriceBound is zero for trades rebuilt from broker state.
	PriceBound  float64
	InitialRisk float64

	UnitsPrecision   int
	DisplayPrecision int

	RealizedPL   float64
	UnrealizedPL float64
	Financing    float64
	Commission   float64

	ClosePrice float64
	CloseTime  time.Time

	State State
}

// NewProposed builds a trade that has not been submitted yet. Positive
// units buy, negative units sell. The stop sits initialRisk away from the
// descriptor's latest price, rounded to display precision.
func NewProposed(d *instrument.Descriptor, units, initialRisk float64) (*Trade, error) {
	if units == 0 || math.IsNaN(units) {
		return nil, fmt.Errorf("%s: %w", d.Name, ErrZeroUnits)
	}
	if initialRisk <= 0 || math.IsNaN(initialRisk) || math.IsInf(initialRisk, 0) {
		return nil, fmt.Errorf("%s: invalid initial risk %v", d.Name, initialRisk)
	}

	t := &Trade{
		Instrument:       d.Name,
		Units:            units,
		OpenPrice:        d.Price,
		InitialRisk:      initialRisk,
		UnitsPrecision:   d.UnitsPrecision,
		DisplayPrecision: d.DisplayPrecision,
		State:            Proposed,
	}

	slip := d.Pip * BoundPips
	if units > 0 {
		t.StopLoss = market.Round(d.Price-initialRisk, d.DisplayPrecision)
		t.PriceBound = d.Price + slip
	} else {
		t.StopLoss = market.Round(d.Price+initialRisk, d.DisplayPrecision)
		t.PriceBound = d.Price - slip
	}
	return t, nil
}

// FromBroker rebuilds an open trade from the broker's record. Nothing is
// recomputed; the initial risk is the distance to the attached stop, or
// zero when there is none.
func FromBroker(rec broker.TradeRecord, displayPrecision int) *Trade {
	t := &Trade{
		ID:               rec.ID,
		Instrument:       rec.Instrument,
		Units:            rec.Units,
		OpenPrice:        rec.Price,
		OpenTime:         rec.OpenTime,
		StopLoss:         rec.StopLossPrice,
		StopLossOrderID:  rec.StopLossOrderID,
		DisplayPrecision: displayPrecision,
		RealizedPL:       rec.RealizedPL,
		UnrealizedPL:     rec.UnrealizedPL,
		Financing:        rec.Financing,
		Commission:       rec.Commission,
		State:            Open,
	}
	if rec.StopLossPrice != 0 {
		t.InitialRisk = market.Round(math.Abs(rec.Price-rec.StopLossPrice), displayPrecision)
	}
	return t
}

func (t *Trade) Long() bool { return t.Units > 0 }

// Open submits the trade as a market order. A rejection moves the trade to
// Rejected; a cancellation leaves it Proposed. There is no retry.
func (t *Trade) Open(ctx context.Context, b broker.Broker, clientID string) error {
	if t.State != Proposed {
		return fmt.Errorf("open %s: %w (%s)", t.Instrument, ErrNotPending, t.State)
	}

	fill, err := b.SubmitMarketOrder(ctx, broker.MarketOrderRequest{
		Instrument:       t.Instrument,
		Units:            t.Units,
		PriceBound:       t.PriceBound,
		StopLoss:         t.StopLoss,
		UnitsPrecision:   t.UnitsPrecision,
		DisplayPrecision: t.DisplayPrecision,
		ClientID:         clientID,
	})
	if err != nil {
		if errors.Is(err, broker.ErrBrokerRejected) {
			t.State = Rejected
		}
		return fmt.Errorf("open %s: %w", t.Instrument, err)
	}

	t.ID = fill.TradeID
	t.StopLossOrderID = fill.StopLossOrderID
	if fill.Price != 0 {
		t.OpenPrice = fill.Price
	}
	if fill.Units != 0 {
		t.Units = fill.Units
	}
	t.OpenTime = fill.Time
	t.State = Open
	return nil
}

// Close closes the whole trade at market.
func (t *Trade) Close(ctx context.Context, b broker.Broker) error {
	if t.State != Open {
		return fmt.Errorf("close %s %s: %w (%s)", t.Instrument, t.ID, ErrNotOpen, t.State)
	}
	res, err := b.CloseTrade(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("close %s %s: %w", t.Instrument, t.ID, err)
	}
	t.ClosePrice = res.Price
	t.CloseTime = res.Time
	t.RealizedPL += res.RealizedPL
	t.State = Closed
	return nil
}

func (t *Trade) String() string {
	return fmt.Sprintf("%s %s units=%v open=%v sl=%v bound=%v [%s]",
		t.ID, t.Instrument, t.Units, t.OpenPrice, t.StopLoss, t.PriceBound, t.State)
}
