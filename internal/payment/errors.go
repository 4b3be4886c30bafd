package payment

import (
	"errors"
	"fmt"
)

var (
	// ErrOrderNotFound means the order id did not resolve before any side
	// effect was performed.
	ErrOrderNotFound = errors.New("payment: order not found")
	// ErrNetwork means the outbound intent call never completed. The order
	// is left in pending-payment with a failure note; retrying is up to the
	// shopper.
	ErrNetwork = errors.New("payment: provider unreachable")
	// ErrUnexpectedResponse means the provider answered but without a
	// usable redirect URL.
	ErrUnexpectedResponse = errors.New("payment: unexpected provider response")
)

// ResponseError carries the raw provider response so the service can record
// it on the order's audit trail. It unwraps to ErrUnexpectedResponse.
type ResponseError struct {
	Status int
	Body   string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("payment: provider returned %d: %s", e.Status, e.Body)
}

func (e *ResponseError) Unwrap() error { return ErrUnexpectedResponse }
