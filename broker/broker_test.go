package broker

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRejectedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("open EUR_USD: %w", &RejectedError{Code: "INSUFFICIENT_MARGIN", Message: "not enough margin"})
	assert.True(t, errors.Is(err, ErrBrokerRejected))
	assert.False(t, errors.Is(err, ErrOrderCancelled))

	var re *RejectedError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "not enough margin", re.Message)
	assert.Contains(t, err.Error(), "INSUFFICIENT_MARGIN")
}

func TestCancelledError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("open GBP_JPY: %w", &CancelledError{OrderID: "42", Reason: "STOP_LOSS_ON_FILL_LOSS"})
	assert.True(t, errors.Is(err, ErrOrderCancelled))
	assert.False(t, errors.Is(err, ErrBrokerRejected))

	var ce *CancelledError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "STOP_LOSS_ON_FILL_LOSS", ce.Reason)
}
