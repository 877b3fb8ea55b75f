package risk

import (
	"context"

	"github.com/rustyeddy/breakout/broker"
	"github.com/rustyeddy/breakout/instrument"
	"github.com/rustyeddy/breakout/market"
	"github.com/zeromicro/go-zero/core/logx"
)

// Conversion is the outcome of the conversion-rate search. Rate is only
// meaningful when Resolved is true.
type Conversion struct {
	Rate     float64
	Pair     string
	Inverted bool
	Resolved bool
}

// ConversionRate prices risk in the instrument's quote currency.
//
// When the instrument's base currency is the account currency the rate is 1.
// Otherwise the direct pair {account}_{quote} is tried, then the inverse
// {quote}_{account} (whose price is inverted). If neither resolves the
// result is Unresolved.
func ConversionRate(ctx context.Context, b broker.Broker, d *instrument.Descriptor) Conversion {
	acct := b.Currency()
	if d.BaseCurrency == acct {
		return Conversion{Rate: 1, Resolved: true}
	}

	log := logx.WithContext(ctx)

	direct := market.Symbol(acct, d.QuoteCurrency)
	px, err := instrument.Quote(ctx, b, direct)
	if err == nil {
		return Conversion{Rate: px, Pair: direct, Resolved: true}
	}
	log.Debugw("direct conversion pair unavailable",
		logx.Field("instrument", d.Name), logx.Field("pair", direct), logx.Field("err", err.Error()))

	inverse := market.Symbol(d.QuoteCurrency, acct)
	px, err = instrument.Quote(ctx, b, inverse)
	if err == nil && px != 0 {
		return Conversion{Rate: 1 / px, Pair: inverse, Inverted: true, Resolved: true}
	}
	if err != nil {
		log.Debugw("inverse conversion pair unavailable",
			logx.Field("instrument", d.Name), logx.Field("pair", inverse), logx.Field("err", err.Error()))
	}

	return Conversion{Pair: direct}
}
