// Package risk sizes positions from a percent-of-balance risk budget.
package risk

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rustyeddy/breakout/broker"
	"github.com/rustyeddy/breakout/instrument"
	"github.com/rustyeddy/breakout/market"
	"github.com/rustyeddy/breakout/metrics"
	"github.com/zeromicro/go-zero/core/logx"
)

var (
	ErrSizeBelowMinimum = errors.New("position size below instrument minimum")

	// ErrConversionUnresolved is also an ErrInstrumentUnavailable.
	ErrConversionUnresolved = fmt.Errorf("%w: no conversion rate", broker.ErrInstrumentUnavailable)
)

type Params struct {
	// RiskPercent is the fraction of balance risked, e.g. 0.01.
	RiskPercent float64
	// RiskPips is the stop distance in price units (typically the last ATR).
	RiskPips float64
	Buy      bool
}

// Plan is a sized position together with what it puts at risk.
type Plan struct {
	Units   float64
	Balance float64
	// Rate is quote currency per unit of account currency.
	Rate float64
	// PlannedRisk is the account-currency loss at the sizing stop distance.
	PlannedRisk float64
	RiskPct     float64
}

// Size returns the signed number of units to trade: positive buys,
// negative sells. The balance is fetched from the broker on every call.
func Size(ctx context.Context, b broker.Broker, d *instrument.Descriptor, p Params) (float64, error) {
	pl, err := Sizing(ctx, b, d, p)
	return pl.Units, err
}

// Sizing is Size plus the planned risk of the result, which never exceeds
// RiskPercent of the balance.
func Sizing(ctx context.Context, b broker.Broker, d *instrument.Descriptor, p Params) (Plan, error) {
	if p.RiskPips <= 0 || math.IsNaN(p.RiskPips) || math.IsInf(p.RiskPips, 0) {
		return Plan{}, fmt.Errorf("%s: invalid risk distance %v", d.Name, p.RiskPips)
	}

	balance, err := b.Balance(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("size %s: %w", d.Name, err)
	}
	dollarsRisked := p.RiskPercent * balance

	conv := ConversionRate(ctx, b, d)
	if !conv.Resolved {
		metrics.IncConversionUnresolved(conv.Pair)
		logx.WithContext(ctx).Errorw("conversion rate unresolved; refusing to size against a zero rate",
			logx.Field("warning", "conversion_unresolved"),
			logx.Field("instrument", d.Name),
			logx.Field("account_currency", b.Currency()),
			logx.Field("quote_currency", d.QuoteCurrency))
		return Plan{}, fmt.Errorf("size %s: %w (%s)", d.Name, ErrConversionUnresolved, conv.Pair)
	}
	converted := dollarsRisked * conv.Rate

	initialRiskPips := p.RiskPips / d.Pip
	initialRiskDollars := d.Pip * initialRiskPips

	raw := converted / initialRiskDollars
	rounded := market.Round(raw, d.UnitsPrecision)

	// Step down rather than round up through the risk budget.
	size := rounded
	if raw < rounded {
		size = rounded - d.MinTradeSize
	}

	if size < d.MinTradeSize {
		return Plan{}, fmt.Errorf("size %s: %w: %v < %v", d.Name, ErrSizeBelowMinimum, size, d.MinTradeSize)
	}

	planned := PlannedRisk(size, initialRiskDollars, 1/conv.Rate)
	if !p.Buy {
		size = -size
	}
	return Plan{
		Units:       size,
		Balance:     balance,
		Rate:        conv.Rate,
		PlannedRisk: planned,
		RiskPct:     RiskPct(planned, balance),
	}, nil
}
