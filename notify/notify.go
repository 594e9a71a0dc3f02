// Package notify delivers order status events to the outside world. Sending is
// best effort: callers log failures and carry on.
package notify

import (
	"context"
	"errors"
	"time"
)

// OrderEvent describes a status change of one order.
type OrderEvent struct {
	OrderID     uint      `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	AccountID   uint      `json:"account_id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email,omitempty"`
	FromStatus  string    `json:"from_status"`
	ToStatus    string    `json:"to_status"`
	Note        string    `json:"note,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Notifier sends order events.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, ev OrderEvent) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) OrderStatusChanged(context.Context, OrderEvent) error { return nil }

// Multi fans an event out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) OrderStatusChanged(ctx context.Context, ev OrderEvent) error {
	var errs []error
	for _, n := range m {
		if err := n.OrderStatusChanged(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
