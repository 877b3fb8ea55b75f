package market

import (
	"fmt"
	"math"
	"strings"
)

// SymbolSeparator splits an instrument name into base and quote, as in "EUR_USD".
const SymbolSeparator = "_"

type InstrumentMeta struct {
	Name                string
	BaseCurrency        string
	QuoteCurrency       string
	PipLocation         int
	TradeUnitsPrecision int
	DisplayPrecision    int
	MinimumTradeSize    float64
	MarginRate          float64
}

// PipSize returns 10^loc, the price increment of one pip.
func PipSize(loc int) float64 {
	return math.Pow(10, float64(loc))
}

// SplitSymbol returns the base and quote currency of a two part symbol.
func SplitSymbol(name string) (base, quote string, err error) {
	parts := strings.Split(name, SymbolSeparator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed symbol %q (want BASE%sQUOTE)", name, SymbolSeparator)
	}
	return parts[0], parts[1], nil
}

// Symbol joins base and quote into an instrument name.
func Symbol(base, quote string) string {
	return base + SymbolSeparator + quote
}
