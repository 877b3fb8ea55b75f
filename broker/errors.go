package broker

import (
	"errors"
	"fmt"
)

var (
	// ErrDataUnavailable: market or account data could not be fetched or was empty.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrInstrumentUnavailable: instrument metadata could not be resolved.
	ErrInstrumentUnavailable = errors.New("instrument unavailable")

	// ErrTradeNotFound: the broker has no open trade with that id.
	ErrTradeNotFound = errors.New("trade not found")

	ErrBrokerRejected = errors.New("broker rejected order")
	ErrOrderCancelled = errors.New("order cancelled")
)

// RejectedError carries the broker's error message for a non-success submission.
type RejectedError struct {
	Code    string
	Message string
}

func (e *RejectedError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%v: %s (%s)", ErrBrokerRejected, e.Message, e.Code)
	}
	return fmt.Sprintf("%v: %s", ErrBrokerRejected, e.Message)
}

func (e *RejectedError) Is(target error) bool { return target == ErrBrokerRejected }

// CancelledError is returned when the broker accepted an order and then
// cancelled it, for example because the stop distance was invalid.
type CancelledError struct {
	OrderID string
	Reason  string
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("%v: %s", ErrOrderCancelled, e.Reason)
}

func (e *CancelledError) Is(target error) bool { return target == ErrOrderCancelled }
