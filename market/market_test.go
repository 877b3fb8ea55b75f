package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		loc  int
		want float64
	}{
		{"zero", 0, 1},
		{"jpy", -2, 0.01},
		{"major", -4, 0.0001},
		{"positive", 1, 10},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, PipSize(tt.loc), 1e-12)
		})
	}
}

func TestSplitSymbol(t *testing.T) {
	t.Parallel()

	base, quote, err := SplitSymbol("GBP_JPY")
	require.NoError(t, err)
	assert.Equal(t, "GBP", base)
	assert.Equal(t, "JPY", quote)
	assert.Equal(t, "GBP_JPY", Symbol(base, quote))

	for _, bad := range []string{"", "EURUSD", "EUR_", "_USD", "A_B_C"} {
		_, _, err := SplitSymbol(bad)
		assert.Error(t, err, bad)
	}
}

func TestRoundAndFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0842, Round(1.08424, 4))
	assert.Equal(t, 1.0843, Round(1.08426, 4))
	assert.Equal(t, 152.3, Round(152.299, 2))
	assert.Equal(t, 1234.0, Round(1233.6, 0))

	assert.Equal(t, "1.08420", FormatPrice(1.0842, 5))
	assert.Equal(t, "-2500", FormatPrice(-2500, 0))
}

func TestClosesTailExtremes(t *testing.T) {
	t.Parallel()

	cs := []Candle{{Close: 3}, {Close: 1}, {Close: 4}, {Close: 1.5}}
	assert.Equal(t, []float64{3, 1, 4, 1.5}, Closes(cs))
	assert.Len(t, Tail(cs, 2), 2)
	assert.Len(t, Tail(cs, 10), 4)
	assert.Len(t, Tail(cs, 0), 4)

	lo, hi, ok := Extremes(Closes(cs))
	require.True(t, ok)
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 4.0, hi)

	_, _, ok = Extremes(nil)
	assert.False(t, ok)
}
