// Package oanda adapts the OANDA v20 REST client to broker.Broker.
package oanda

import (
	"context"
	"errors"
	"fmt"

	"github.com/rustyeddy/breakout/broker"
	"github.com/rustyeddy/breakout/market"
	"github.com/rustyeddy/breakout/oanda"
	"github.com/zeromicro/go-zero/core/logx"
)

// Account is an authenticated OANDA account session.
type Account struct {
	client      *oanda.Client
	id          string
	currency    string
	granularity oanda.Granularity
}

var _ broker.Broker = (*Account)(nil)

// Open resolves the account to trade. An empty accountID selects the first
// account the token can see. Currency is read once here.
func Open(ctx context.Context, client *oanda.Client, accountID string, gran oanda.Granularity) (*Account, error) {
	if accountID == "" {
		ids, err := client.Accounts(ctx)
		if err != nil {
			return nil, fmt.Errorf("list accounts: %w", err)
		}
		if len(ids) == 0 {
			return nil, errors.New("token has no accounts")
		}
		accountID = ids[0]
	}

	sum, err := client.AccountSummary(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("account %s summary: %w", accountID, err)
	}
	if gran == "" {
		gran = oanda.D
	}

	logx.WithContext(ctx).Infow("oanda account opened",
		logx.Field("account", accountID),
		logx.Field("currency", sum.Currency))

	return &Account{
		client:      client,
		id:          accountID,
		currency:    sum.Currency,
		granularity: gran,
	}, nil
}

func (a *Account) AccountID() string { return a.id }
func (a *Account) Currency() string  { return a.currency }

// Client exposes the REST client for read-only tooling such as `trader symbols`.
func (a *Account) Client() *oanda.Client { return a.client }

func (a *Account) Balance(ctx context.Context) (float64, error) {
	sum, err := a.client.AccountSummary(ctx, a.id)
	if err != nil {
		return 0, fmt.Errorf("%w: balance: %v", broker.ErrDataUnavailable, err)
	}
	return sum.Balance, nil
}

func (a *Account) Instrument(ctx context.Context, symbol string) (market.InstrumentMeta, error) {
	ins, err := a.client.Instruments(ctx, a.id, symbol)
	if err != nil {
		return market.InstrumentMeta{}, fmt.Errorf("%w: %s: %v", broker.ErrInstrumentUnavailable, symbol, err)
	}
	if len(ins) == 0 {
		return market.InstrumentMeta{}, fmt.Errorf("%w: %s: not tradeable on this account", broker.ErrInstrumentUnavailable, symbol)
	}

	in := ins[0]
	base, quote, err := market.SplitSymbol(in.Name)
	if err != nil {
		return market.InstrumentMeta{}, fmt.Errorf("%w: %v", broker.ErrInstrumentUnavailable, err)
	}
	return market.InstrumentMeta{
		Name:                in.Name,
		BaseCurrency:        base,
		QuoteCurrency:       quote,
		PipLocation:         in.PipLocation,
		TradeUnitsPrecision: in.TradeUnitsPrecision,
		DisplayPrecision:    in.DisplayPrecision,
		MinimumTradeSize:    in.MinimumTradeSize,
		MarginRate:          in.MarginRate,
	}, nil
}

func (a *Account) Candles(ctx context.Context, symbol string, count int) ([]market.Candle, error) {
	cs, err := a.client.Candles(ctx, a.id, oanda.CandlesRequest{
		Instrument:  symbol,
		Price:       oanda.BidPrice,
		Granularity: a.granularity,
		Count:       count,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s candles: %v", broker.ErrDataUnavailable, symbol, err)
	}
	if len(cs) == 0 {
		return nil, fmt.Errorf("%w: %s: no candles", broker.ErrDataUnavailable, symbol)
	}
	return cs, nil
}

func (a *Account) OpenTrades(ctx context.Context) ([]broker.TradeRecord, error) {
	trades, err := a.client.OpenTrades(ctx, a.id)
	if err != nil {
		return nil, fmt.Errorf("%w: open trades: %v", broker.ErrDataUnavailable, err)
	}
	out := make([]broker.TradeRecord, 0, len(trades))
	for _, t := range trades {
		out = append(out, broker.TradeRecord{
			ID:              t.ID,
			Instrument:      t.Instrument,
			Price:           t.Price,
			Units:           t.CurrentUnits,
			OpenTime:        t.OpenTime,
			StopLossOrderID: t.StopLossOrderID,
			StopLossPrice:   t.StopLossPrice,
			RealizedPL:      t.RealizedPL,
			UnrealizedPL:    t.UnrealizedPL,
			Financing:       t.Financing,
		})
	}
	return out, nil
}

func (a *Account) SubmitMarketOrder(ctx context.Context, req broker.MarketOrderRequest) (broker.OrderFill, error) {
	mo := oanda.MarketOrder{
		Instrument: req.Instrument,
		Units:      market.FormatPrice(req.Units, req.UnitsPrecision),
		ClientID:   req.ClientID,
	}
	if req.PriceBound != 0 {
		mo.PriceBound = market.FormatPrice(req.PriceBound, req.DisplayPrecision)
	}
	if req.StopLoss != 0 {
		mo.StopLoss = market.FormatPrice(req.StopLoss, req.DisplayPrecision)
	}

	res, err := a.client.CreateMarketOrder(ctx, a.id, mo)
	if err != nil {
		return broker.OrderFill{}, rejection(err)
	}
	if res.Cancelled {
		return broker.OrderFill{}, &broker.CancelledError{OrderID: res.OrderID, Reason: res.CancelReason}
	}
	return broker.OrderFill{
		OrderID:         res.OrderID,
		TradeID:         res.TradeID,
		StopLossOrderID: res.StopLossOrderID,
		Instrument:      req.Instrument,
		Units:           res.Units,
		Price:           res.Price,
		Time:            res.Time,
	}, nil
}

func (a *Account) CloseTrade(ctx context.Context, tradeID string) (broker.CloseResult, error) {
	res, err := a.client.CloseTrade(ctx, a.id, tradeID)
	if oanda.IsNotFound(err) {
		return broker.CloseResult{}, fmt.Errorf("%w: %s: %v", broker.ErrTradeNotFound, tradeID, err)
	}
	if err != nil {
		return broker.CloseResult{}, rejection(err)
	}
	if res.Cancelled {
		return broker.CloseResult{}, &broker.CancelledError{Reason: res.CancelReason}
	}
	return broker.CloseResult{
		TradeID:    res.TradeID,
		Units:      res.Units,
		Price:      res.Price,
		RealizedPL: res.RealizedPL,
		Time:       res.Time,
	}, nil
}

// rejection turns a non-success reply into a RejectedError; transport
// failures pass through unchanged.
func rejection(err error) error {
	var ae *oanda.APIError
	if !errors.As(err, &ae) {
		return err
	}
	code := ae.Code
	if code == "" {
		code = ae.RejectReason
	}
	return &broker.RejectedError{Code: code, Message: ae.Message}
}
