// Package sim is an in-memory broker.Broker used by tests and the demo command.
package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/rustyeddy/breakout/broker"
	"github.com/rustyeddy/breakout/market"
	"github.com/rustyeddy/breakout/pkg/id"
)

type Engine struct {
	mu sync.Mutex

	acct        broker.Account
	instruments map[string]market.InstrumentMeta
	candles     map[string][]market.Candle
	trades      []broker.TradeRecord

	failData   map[string]bool
	rejectNext string
	cancelNext string

	orders       []broker.MarketOrderRequest
	closed       []string
	balanceCalls int
}

var _ broker.Broker = (*Engine)(nil)

func NewEngine(acct broker.Account) *Engine {
	return &Engine{
		acct:        acct,
		instruments: make(map[string]market.InstrumentMeta),
		candles:     make(map[string][]market.Candle),
		failData:    make(map[string]bool),
	}
}

// AddInstrument registers an instrument and its candle history.
func (e *Engine) AddInstrument(meta market.InstrumentMeta, candles []market.Candle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if meta.BaseCurrency == "" || meta.QuoteCurrency == "" {
		meta.BaseCurrency, meta.QuoteCurrency, _ = market.SplitSymbol(meta.Name)
	}
	e.instruments[meta.Name] = meta
	e.candles[meta.Name] = candles
}

func (e *Engine) SetCandles(symbol string, candles []market.Candle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.candles[symbol] = candles
}

func (e *Engine) SetBalance(b float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.acct.Balance = b
}

// AddTrade seeds an already open trade.
func (e *Engine) AddTrade(rec broker.TradeRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.trades = append(e.trades, rec)
}

// FailData makes every candle request for symbol fail.
func (e *Engine) FailData(symbol string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failData[symbol] = true
}

// RejectNext makes the next order submission fail with msg.
func (e *Engine) RejectNext(msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rejectNext = msg
}

// CancelNext makes the next order be accepted and then cancelled with reason.
func (e *Engine) CancelNext(reason string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelNext = reason
}

// Orders returns every order request that reached the engine.
func (e *Engine) Orders() []broker.MarketOrderRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]broker.MarketOrderRequest(nil), e.orders...)
}

// Closed returns the ids of trades closed through CloseTrade.
func (e *Engine) Closed() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.closed...)
}

// BalanceCalls counts Balance requests.
func (e *Engine) BalanceCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.balanceCalls
}

func (e *Engine) AccountID() string { return e.acct.ID }
func (e *Engine) Currency() string  { return e.acct.Currency }

func (e *Engine) Balance(ctx context.Context) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.balanceCalls++
	return e.acct.Balance, nil
}

func (e *Engine) Instrument(ctx context.Context, symbol string) (market.InstrumentMeta, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	meta, ok := e.instruments[symbol]
	if !ok {
		return market.InstrumentMeta{}, fmt.Errorf("%w: %s", broker.ErrInstrumentUnavailable, symbol)
	}
	return meta, nil
}

func (e *Engine) Candles(ctx context.Context, symbol string, count int) ([]market.Candle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.failData[symbol] {
		return nil, fmt.Errorf("%w: %s: simulated outage", broker.ErrDataUnavailable, symbol)
	}
	cs := e.candles[symbol]
	if len(cs) == 0 {
		return nil, fmt.Errorf("%w: %s: no candles", broker.ErrDataUnavailable, symbol)
	}
	return append([]market.Candle(nil), market.Tail(cs, count)...), nil
}

func (e *Engine) OpenTrades(ctx context.Context) ([]broker.TradeRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]broker.TradeRecord(nil), e.trades...), nil
}

func (e *Engine) SubmitMarketOrder(ctx context.Context, req broker.MarketOrderRequest) (broker.OrderFill, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.orders = append(e.orders, req)
	orderID := id.New()

	if msg := e.rejectNext; msg != "" {
		e.rejectNext = ""
		return broker.OrderFill{}, &broker.RejectedError{Code: "SIMULATED_REJECT", Message: msg}
	}
	if reason := e.cancelNext; reason != "" {
		e.cancelNext = ""
		return broker.OrderFill{}, &broker.CancelledError{OrderID: orderID, Reason: reason}
	}

	cs := e.candles[req.Instrument]
	if len(cs) == 0 {
		return broker.OrderFill{}, &broker.RejectedError{Code: "MARKET_HALTED", Message: "no price for " + req.Instrument}
	}
	last := cs[len(cs)-1]

	tradeID := id.New()
	var slID string
	if req.StopLoss != 0 {
		slID = id.New()
	}
	e.trades = append(e.trades, broker.TradeRecord{
		ID:              tradeID,
		Instrument:      req.Instrument,
		Price:           last.Close,
		Units:           req.Units,
		OpenTime:        last.Time,
		StopLossOrderID: slID,
		StopLossPrice:   req.StopLoss,
	})

	return broker.OrderFill{
		OrderID:         orderID,
		TradeID:         tradeID,
		StopLossOrderID: slID,
		Instrument:      req.Instrument,
		Units:           req.Units,
		Price:           last.Close,
		Time:            last.Time,
	}, nil
}

// CloseTrade closes an open trade at the latest close and books the P/L
// (quote currency, unconverted) to the balance.
func (e *Engine) CloseTrade(ctx context.Context, tradeID string) (broker.CloseResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, t := range e.trades {
		if t.ID != tradeID {
			continue
		}
		price := t.Price
		if cs := e.candles[t.Instrument]; len(cs) > 0 {
			price = cs[len(cs)-1].Close
		}
		pl := t.Units * (price - t.Price)
		e.acct.Balance += pl
		e.trades = append(e.trades[:i], e.trades[i+1:]...)
		e.closed = append(e.closed, tradeID)
		return broker.CloseResult{
			TradeID:    tradeID,
			Units:      -t.Units,
			Price:      price,
			RealizedPL: pl,
		}, nil
	}
	return broker.CloseResult{}, fmt.Errorf("%w: %q", broker.ErrTradeNotFound, tradeID)
}
