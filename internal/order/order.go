package order

import (
	"context"
	"errors"
	"fmt"
)

// Status is the lifecycle state of an order as owned by the storefront.
type Status string

const (
	StatusPending        Status = "pending"
	StatusPendingPayment Status = "pending-payment"
	StatusOnHold         Status = "on-hold"
	StatusProcessing     Status = "processing"
	StatusCompleted      Status = "completed"
	StatusFailed         Status = "failed"
	StatusCancelled      Status = "cancelled"
)

// Paid reports whether the status means payment has already been captured.
// Paid statuses are terminal with respect to provider notifications: a late
// FAILED or PENDING webhook must never demote them.
func (s Status) Paid() bool {
	return s == StatusProcessing || s == StatusCompleted
}

// Billing carries the contact details collected at checkout.
type Billing struct {
	Name  string
	Email string
	Phone string
}

// Order is the storefront-owned entity the bridge reads and transitions.
// The bridge never creates or deletes orders.
type Order struct {
	ID         int64
	TotalCents int64
	Currency   string
	Billing    Billing
	Status     Status
}

// Total renders the order total as a fixed two-decimal string with a dot
// separator, the only amount format the provider accepts.
func (o Order) Total() string {
	return fmt.Sprintf("%d.%02d", o.TotalCents/100, o.TotalCents%100)
}

// ErrNotFound is returned when an order id does not resolve to an order.
var ErrNotFound = errors.New("order: not found")

// Store is the order persistence contract required by the payment bridge.
//
// Implementations must keep transitions idempotent and non-demoting:
// MarkPaymentComplete on an already-paid order is a no-op, and UpdateStatus
// never moves a paid order back to failed, cancelled, on-hold or pending.
// Webhooks are retried and can arrive out of order; these rules are what make
// replays harmless.
type Store interface {
	Get(ctx context.Context, id int64) (Order, error)
	// UpdateStatus transitions the order and records note as an audit trail
	// entry when the transition is applied.
	UpdateStatus(ctx context.Context, id int64, status Status, note string) error
	// MarkPaymentComplete moves the order into processing unless it is
	// already paid.
	MarkPaymentComplete(ctx context.Context, id int64) error
	// AppendNote attaches free-form audit text to the order.
	AppendNote(ctx context.Context, id int64, text string) error
}

// demotes reports whether moving from current to next would revert a
// payment that has already been captured.
func demotes(current, next Status) bool {
	if !current.Paid() {
		return false
	}
	switch next {
	case StatusFailed, StatusCancelled, StatusOnHold, StatusPending, StatusPendingPayment:
		return true
	}
	return false
}
