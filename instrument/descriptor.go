// Package instrument derives the static trading parameters and latest
// readings of a symbol from the broker.
package instrument

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/breakout/broker"
	"github.com/rustyeddy/breakout/indicators"
	"github.com/rustyeddy/breakout/market"
)

const (
	DefaultHistory   = 100
	DefaultATRPeriod = 18
	DefaultADXPeriod = 18
)

type Options struct {
	History   int // bars fetched for indicators
	ATRPeriod int
	ADXPeriod int
}

func (o Options) withDefaults() Options {
	if o.History <= 0 {
		o.History = DefaultHistory
	}
	if o.ATRPeriod <= 0 {
		o.ATRPeriod = DefaultATRPeriod
	}
	if o.ADXPeriod <= 0 {
		o.ADXPeriod = DefaultADXPeriod
	}
	return o
}

// Descriptor is immutable once built. Either every field is populated or
// New returns an error.
type Descriptor struct {
	Name          string
	BaseCurrency  string
	QuoteCurrency string

	PipLocation      int
	Pip              float64
	MinTradeSize     float64
	UnitsPrecision   int
	DisplayPrecision int

	// Price is the bid close of the latest bar.
	Price float64
	// BarTime is the open time of the latest bar.
	BarTime time.Time

	// LastATR and LastADX are readings for the most recently closed period.
	LastATR float64
	LastADX float64

	history []market.Candle
}

// New builds the descriptor for symbol. Any failure is reported as
// broker.ErrInstrumentUnavailable wrapping the cause.
func New(ctx context.Context, b broker.Broker, symbol string, opts Options) (*Descriptor, error) {
	opts = opts.withDefaults()

	fail := func(err error) (*Descriptor, error) {
		return nil, fmt.Errorf("%w: %s: %w", broker.ErrInstrumentUnavailable, symbol, err)
	}

	latest, err := b.Candles(ctx, symbol, 1)
	if err != nil {
		return fail(err)
	}
	if len(latest) == 0 {
		return fail(broker.ErrDataUnavailable)
	}
	bar := latest[len(latest)-1]

	meta, err := b.Instrument(ctx, symbol)
	if err != nil {
		return fail(err)
	}
	base, quote, err := market.SplitSymbol(symbol)
	if err != nil {
		return fail(err)
	}

	hist, err := b.Candles(ctx, symbol, opts.History)
	if err != nil {
		return fail(err)
	}
	if len(hist) == 0 {
		return fail(broker.ErrDataUnavailable)
	}

	atr, err := indicators.LastClosed(indicators.NewATR(opts.ATRPeriod), hist)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", broker.ErrDataUnavailable, err))
	}
	adx, err := indicators.LastClosed(indicators.NewADX(opts.ADXPeriod), hist)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", broker.ErrDataUnavailable, err))
	}

	return &Descriptor{
		Name:             symbol,
		BaseCurrency:     base,
		QuoteCurrency:    quote,
		PipLocation:      meta.PipLocation,
		Pip:              market.PipSize(meta.PipLocation),
		MinTradeSize:     meta.MinimumTradeSize,
		UnitsPrecision:   meta.TradeUnitsPrecision,
		DisplayPrecision: meta.DisplayPrecision,
		Price:            bar.Close,
		BarTime:          bar.Time,
		LastATR:          atr,
		LastADX:          adx,
		history:          hist,
	}, nil
}

// Closes returns the last n closing prices of the fetched history, oldest
// first. n <= 0 returns the whole history.
func (d *Descriptor) Closes(n int) []float64 {
	return market.Closes(market.Tail(d.history, n))
}

// Quote returns the latest bid close of symbol after confirming the
// instrument is tradeable. It is the light lookup used for currency
// conversion pairs.
func Quote(ctx context.Context, b broker.Broker, symbol string) (float64, error) {
	if _, err := b.Instrument(ctx, symbol); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", broker.ErrInstrumentUnavailable, symbol, err)
	}
	cs, err := b.Candles(ctx, symbol, 1)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", broker.ErrInstrumentUnavailable, symbol, err)
	}
	return cs[len(cs)-1].Close, nil
}
