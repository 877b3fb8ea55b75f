package strategies

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelBreakout_Evaluate(t *testing.T) {
	cb := NewChannelBreakout(0)
	require.Equal(t, DefaultADXThreshold, cb.Threshold)

	tests := []struct {
		name   string
		adx    float64
		closes []float64
		want   Signal
	}{
		{"new high", 30, []float64{1.10, 1.12, 1.11, 1.13}, BuyEntry},
		{"new low", 30, []float64{1.10, 1.08, 1.09, 1.07}, SellEntry},
		{"inside range", 30, []float64{1.10, 1.13, 1.07, 1.11}, NoEntry},
		{"weak trend", 20, []float64{1.10, 1.12, 1.11, 1.13}, NoEntry},
		{"threshold is exclusive", 25, []float64{1.10, 1.13}, NoEntry},
		{"flat window buys", 40, []float64{1.1, 1.1, 1.1}, BuyEntry},
		{"single close", 40, []float64{1.1}, BuyEntry},
		{"empty window", 40, nil, NoEntry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cb.Evaluate(tt.adx, tt.closes))
		})
	}
}

func TestTrailingExtreme(t *testing.T) {
	up := []float64{1.0, 1.2, 1.1, 1.3}
	down := []float64{1.3, 1.1, 1.2, 1.0}
	mid := []float64{1.0, 1.3, 1.1}

	tests := []struct {
		name   string
		units  float64
		closes []float64
		want   bool
	}{
		{"short at window max", -100, up, true},
		{"long at window max", 100, up, false},
		{"long at window min", 100, down, true},
		{"short at window min", -100, down, false},
		{"long inside range", 100, mid, false},
		{"short inside range", -100, mid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TrailingExtreme(tt.units, tt.closes)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTrailingExtreme_ZeroVolume(t *testing.T) {
	got, err := TrailingExtreme(0, []float64{1, 2, 3})
	assert.False(t, got)
	assert.True(t, errors.Is(err, ErrZeroVolume))

	got, err = TrailingExtreme(10, nil)
	assert.False(t, got)
	assert.True(t, errors.Is(err, ErrEmptyWindow))
}

func TestSignal_String(t *testing.T) {
	assert.Equal(t, "BUY", BuyEntry.String())
	assert.Equal(t, "SELL", SellEntry.String())
	assert.Equal(t, "NONE", NoEntry.String())
	assert.True(t, BuyEntry.Buy())
	assert.False(t, SellEntry.Buy())
}
