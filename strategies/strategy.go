// Package strategies holds the entry and exit rules evaluated once per tick.
package strategies

import "fmt"

type Signal int

const (
	NoEntry Signal = iota
	BuyEntry
	SellEntry
)

func (s Signal) String() string {
	switch s {
	case BuyEntry:
		return "BUY"
	case SellEntry:
		return "SELL"
	case NoEntry:
		return "NONE"
	default:
		return fmt.Sprintf("Signal(%d)", int(s))
	}
}

// Buy reports whether the signal opens a long position.
func (s Signal) Buy() bool { return s == BuyEntry }
