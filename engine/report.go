package engine

import (
	"fmt"
	"strings"
	"time"
)

type Phase string

const (
	PhaseExit  Phase = "exit"
	PhaseEntry Phase = "entry"
)

type Action string

const (
	ActionOpened  Action = "opened"
	ActionClosed  Action = "closed"
	ActionSkipped Action = "skipped"
	ActionError   Action = "error"
)

// Outcome is what happened to one open trade (exit phase) or one
// watch-list symbol (entry phase).
type Outcome struct {
	Phase   Phase
	Symbol  string
	TradeID string
	Signal  string
	Action  Action
	// Units is the size opened or closed.
	Units float64
	// ReentryUnits is the size a re-entry would take right after an exit.
	// Zero when sizing was not possible.
	ReentryUnits float64
	// PlannedRisk is the account-currency loss at the initial stop of an
	// entry that was sized.
	PlannedRisk float64
	Reason      string
	Err          error
}

func (o Outcome) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-5s %-8s %-7s signal=%s", o.Phase, o.Symbol, o.Action, o.Signal)
	if o.TradeID != "" {
		fmt.Fprintf(&sb, " trade=%s", o.TradeID)
	}
	if o.Units != 0 {
		fmt.Fprintf(&sb, " units=%v", o.Units)
	}
	if o.PlannedRisk != 0 {
		fmt.Fprintf(&sb, " risk=%.2f", o.PlannedRisk)
	}
	if o.Reason != "" {
		fmt.Fprintf(&sb, " (%s)", o.Reason)
	}
	if o.Err != nil {
		fmt.Fprintf(&sb, " err=%v", o.Err)
	}
	return sb.String()
}

// Report lists one Outcome per trade and per symbol, exit phase first.
type Report struct {
	TickID   string
	Started  time.Time
	Finished time.Time
	Outcomes []Outcome
}

func (r Report) Duration() time.Duration { return r.Finished.Sub(r.Started) }

// Count returns how many outcomes in phase took action. An empty phase
// matches both phases.
func (r Report) Count(phase Phase, action Action) int {
	n := 0
	for _, o := range r.Outcomes {
		if (phase == "" || o.Phase == phase) && o.Action == action {
			n++
		}
	}
	return n
}

func (r Report) Errors() []error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", o.Phase, o.Symbol, o.Err))
		}
	}
	return errs
}

func (r Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "tick %s (%s)\n", r.TickID, r.Duration().Round(time.Millisecond))
	for _, o := range r.Outcomes {
		sb.WriteString("  ")
		sb.WriteString(o.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
