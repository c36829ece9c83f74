package broker

import (
	"context"
	"time"
)

// Side is the order direction.
type Side int

const (
	Buy Side = iota + 1
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	}
	return "UNKNOWN"
}

// OrderHandle identifies a submitted order for later status polling.
type OrderHandle string

// OrderState is the lifecycle state of a submitted order.
type OrderState int

const (
	OrderPending OrderState = iota
	OrderFilled
	OrderRejected
)

// OrderStatus is the result of polling an order. Price and Time are only
// meaningful once the order is filled.
type OrderStatus struct {
	State OrderState
	Price float64
	Time  time.Time
}

// Broker places orders and reports their status. Orders are eventually
// resolving: the core polls status across scan cycles rather than blocking
// on a fill. Every call should honor the context deadline.
type Broker interface {
	PlaceOrder(ctx context.Context, symbol string, side Side, shares int) (OrderHandle, error)
	OrderStatus(ctx context.Context, h OrderHandle) (OrderStatus, error)
}
