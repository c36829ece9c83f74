package broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PaperBroker simulates execution against the latest quoted prices. Orders
// fill immediately at the last quote; orders for symbols with no quote are
// rejected so the caller retries next cycle. Used for dry runs.
type PaperBroker struct {
	mu     sync.Mutex
	quotes map[string]float64
	orders map[OrderHandle]OrderStatus
}

func NewPaperBroker() *PaperBroker {
	return &PaperBroker{
		quotes: make(map[string]float64),
		orders: make(map[OrderHandle]OrderStatus),
	}
}

// SetQuote records the latest price for a symbol. The scan loop feeds this
// from each cycle's snapshots.
func (p *PaperBroker) SetQuote(symbol string, price float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quotes[symbol] = price
}

func (p *PaperBroker) PlaceOrder(ctx context.Context, symbol string, side Side, shares int) (OrderHandle, error) {
	if shares <= 0 {
		return "", fmt.Errorf("paper broker: shares must be positive, got %d", shares)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	h := OrderHandle(uuid.New().String())
	price, ok := p.quotes[symbol]
	if !ok || price <= 0 {
		p.orders[h] = OrderStatus{State: OrderRejected}
		return h, nil
	}
	p.orders[h] = OrderStatus{State: OrderFilled, Price: price, Time: time.Now().UTC()}
	return h, nil
}

func (p *PaperBroker) OrderStatus(ctx context.Context, h OrderHandle) (OrderStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	st, ok := p.orders[h]
	if !ok {
		return OrderStatus{}, fmt.Errorf("paper broker: unknown order %q", h)
	}
	return st, nil
}
