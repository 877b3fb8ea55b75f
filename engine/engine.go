// Package engine runs one trading tick: an exit pass over the broker's open
// trades followed by an entry pass over the watch-list. Items are handled
// one at a time and a failure on one never stops the rest.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/breakout/broker"
	"github.com/rustyeddy/breakout/config"
	"github.com/rustyeddy/breakout/instrument"
	"github.com/rustyeddy/breakout/journal"
	"github.com/rustyeddy/breakout/metrics"
	"github.com/rustyeddy/breakout/pkg/id"
	"github.com/rustyeddy/breakout/risk"
	"github.com/rustyeddy/breakout/strategies"
	"github.com/rustyeddy/breakout/trade"
	"github.com/zeromicro/go-zero/core/logx"
)

type Engine struct {
	b       broker.Broker
	cfg     config.StrategyConfig
	entry   strategies.ChannelBreakout
	claims  journal.Claimer
	now     func() time.Time
	newID   func() string
	instOpt instrument.Options
}

type Option func(*Engine)

// WithClaimer sets the idempotency ledger consulted before every order.
func WithClaimer(c journal.Claimer) Option {
	return func(e *Engine) { e.claims = c }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithIDs(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// New binds an engine to one broker session. Without WithClaimer claims
// are kept in memory, which only guards against repeats within this
// process.
func New(b broker.Broker, cfg config.StrategyConfig, opts ...Option) *Engine {
	e := &Engine{
		b:      b,
		cfg:    cfg,
		entry:  strategies.NewChannelBreakout(cfg.ADXThreshold),
		claims: journal.NewMemory(),
		now:    time.Now,
		instOpt: instrument.Options{
			History:   cfg.History,
			ATRPeriod: cfg.ATRPeriod,
			ADXPeriod: cfg.ADXPeriod,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.newID == nil {
		// ids are stamped with the engine clock
		e.newID = func() string { return id.NewAt(e.now()) }
	}
	return e
}

// RunTick performs one exit pass and one entry pass. Per-item failures are
// recorded in the report, not returned. The error is non-nil only when ctx
// ends before the tick completes; the partial report is still returned.
func (e *Engine) RunTick(ctx context.Context) (rep Report, err error) {
	rep = Report{TickID: e.newID(), Started: e.now()}
	log := logx.WithContext(ctx).WithFields(logx.Field("tick", rep.TickID))

	log.Infow("tick started",
		logx.Field("account", e.b.AccountID()),
		logx.Field("watch_list", e.cfg.WatchList))

	defer func() {
		rep.Finished = e.now()
		metrics.TickDuration.Observe(rep.Duration().Seconds())
	}()

	open, err := e.b.OpenTrades(ctx)
	if err != nil {
		rep.Outcomes = append(rep.Outcomes, e.record(log, Outcome{
			Phase:  PhaseExit,
			Action: ActionError,
			Reason: "open trades",
			Err:    fmt.Errorf("%w: open trades: %w", broker.ErrDataUnavailable, err),
		}))
	}
	for _, rec := range open {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		rep.Outcomes = append(rep.Outcomes, e.record(log, e.exit(ctx, rec)))
	}

	for _, symbol := range e.cfg.WatchList {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		rep.Outcomes = append(rep.Outcomes, e.record(log, e.enter(ctx, rep.TickID, symbol)))
	}

	log.Infow("tick finished",
		logx.Field("opened", rep.Count(PhaseEntry, ActionOpened)),
		logx.Field("closed", rep.Count(PhaseExit, ActionClosed)),
		logx.Field("errors", rep.Count("", ActionError)))
	return rep, nil
}

func (e *Engine) exit(ctx context.Context, rec broker.TradeRecord) Outcome {
	out := Outcome{Phase: PhaseExit, Symbol: rec.Instrument, TradeID: rec.ID}

	d, err := instrument.New(ctx, e.b, rec.Instrument, e.instOpt)
	if err != nil {
		return out.fail(err)
	}
	t := trade.FromBroker(rec, d.DisplayPrecision)

	exitNow, err := strategies.TrailingExtreme(t.Units, d.Closes(e.cfg.ExitWindow))
	if err != nil {
		logx.WithContext(ctx).Errorw("exit signal refused",
			logx.Field("trade", t.ID),
			logx.Field("instrument", t.Instrument),
			logx.Field("units", t.Units),
			logx.Field("error", err.Error()))
		out.Signal = "hold"
		return out.fail(err)
	}
	if !exitNow {
		out.Signal = "hold"
		out.Action = ActionSkipped
		return out
	}
	out.Signal = "exit"

	// Re-entry sizing is informational; failing to size never blocks a close.
	if units, err := risk.Size(ctx, e.b, d, risk.Params{
		RiskPercent: e.cfg.RiskPercent,
		RiskPips:    d.LastATR,
		Buy:         t.Long(),
	}); err == nil {
		out.ReentryUnits = units
	} else {
		logx.WithContext(ctx).Debugw("re-entry size unavailable",
			logx.Field("instrument", t.Instrument),
			logx.Field("error", err.Error()))
	}

	if err := t.Close(ctx, e.b); err != nil {
		return out.fail(err)
	}
	out.Units = t.Units
	out.Action = ActionClosed
	return out
}

func (e *Engine) enter(ctx context.Context, tickID, symbol string) Outcome {
	out := Outcome{Phase: PhaseEntry, Symbol: symbol}

	d, err := instrument.New(ctx, e.b, symbol, e.instOpt)
	if err != nil {
		return out.fail(err)
	}

	sig := e.entry.Evaluate(d.LastADX, d.Closes(e.cfg.EntryWindow))
	out.Signal = sig.String()
	if sig == strategies.NoEntry {
		out.Action = ActionSkipped
		return out
	}

	initialRisk := d.LastATR
	plan, err := risk.Sizing(ctx, e.b, d, risk.Params{
		RiskPercent: e.cfg.RiskPercent,
		RiskPips:    initialRisk,
		Buy:         sig.Buy(),
	})
	if err != nil {
		return out.fail(err)
	}
	units := plan.Units
	out.PlannedRisk = plan.PlannedRisk

	t, err := trade.NewProposed(d, units, initialRisk)
	if err != nil {
		return out.fail(err)
	}

	key := journal.Key(symbol, d.BarTime)
	claimed, err := e.claims.Claim(ctx, key, tickID, symbol, units)
	if err != nil {
		return out.fail(fmt.Errorf("claim %s: %w", key, err))
	}
	if !claimed {
		out.Action = ActionSkipped
		out.Reason = "duplicate " + key
		return out
	}

	openErr := t.Open(ctx, e.b, e.newID())
	status := journal.StatusOpened
	switch {
	case errors.Is(openErr, broker.ErrOrderCancelled):
		status = journal.StatusCancelled
	case openErr != nil:
		status = journal.StatusRejected
	}
	if err := e.claims.Complete(ctx, key, t.ID, status); err != nil {
		logx.WithContext(ctx).Errorw("journal update failed",
			logx.Field("key", key),
			logx.Field("error", err.Error()))
	}
	if openErr != nil {
		out.Units = units
		return out.fail(openErr)
	}

	out.TradeID = t.ID
	out.Units = t.Units
	out.Action = ActionOpened
	return out
}

func (o Outcome) fail(err error) Outcome {
	o.Action = ActionError
	o.Err = err
	return o
}

func (e *Engine) record(log logx.Logger, o Outcome) Outcome {
	if o.Signal != "" {
		metrics.IncSignal(string(o.Phase), o.Signal)
	}
	metrics.IncAction(string(o.Phase), string(o.Action))

	fields := []logx.LogField{
		logx.Field("phase", o.Phase),
		logx.Field("symbol", o.Symbol),
		logx.Field("action", o.Action),
	}
	if o.Signal != "" {
		fields = append(fields, logx.Field("signal", o.Signal))
	}
	if o.TradeID != "" {
		fields = append(fields, logx.Field("trade", o.TradeID))
	}
	if o.Units != 0 {
		fields = append(fields, logx.Field("units", o.Units))
	}
	if o.PlannedRisk != 0 {
		fields = append(fields, logx.Field("planned_risk", o.PlannedRisk))
	}
	if o.ReentryUnits != 0 {
		fields = append(fields, logx.Field("reentry_units", o.ReentryUnits))
	}
	if o.Reason != "" {
		fields = append(fields, logx.Field("reason", o.Reason))
	}

	if o.Err != nil {
		fields = append(fields, logx.Field("error", o.Err.Error()))
		log.Errorw("tick item failed", fields...)
	} else {
		log.Infow("tick item", fields...)
	}
	return o
}
