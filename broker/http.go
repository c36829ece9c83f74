package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPBroker talks to a brokerage gateway over its REST surface. Orders are
// submitted with a POST and polled with GETs across scan cycles; nothing
// here blocks waiting for a fill.
type HTTPBroker struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewHTTPBroker(baseURL, apiKey string, timeout time.Duration) *HTTPBroker {
	return &HTTPBroker{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type orderRequest struct {
	Symbol string `json:"symbol"`
	Side   string `json:"side"`
	Shares int    `json:"shares"`
}

type orderPayload struct {
	OrderID  string  `json:"order_id"`
	Status   string  `json:"status"` // "pending", "filled", "rejected"
	Price    float64 `json:"price"`
	FilledAt int64   `json:"filled_at"`
}

func (b *HTTPBroker) PlaceOrder(ctx context.Context, symbol string, side Side, shares int) (OrderHandle, error) {
	body, err := json.Marshal(orderRequest{Symbol: symbol, Side: side.String(), Shares: shares})
	if err != nil {
		return "", fmt.Errorf("marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("place order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("place order: status %d", resp.StatusCode)
	}

	var p orderPayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return "", fmt.Errorf("decode order response: %w", err)
	}
	if p.OrderID == "" {
		return "", fmt.Errorf("place order: empty order id")
	}
	return OrderHandle(p.OrderID), nil
}

func (b *HTTPBroker) OrderStatus(ctx context.Context, h OrderHandle) (OrderStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/v1/orders/"+string(h), nil)
	if err != nil {
		return OrderStatus{}, fmt.Errorf("build status request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.http.Do(req)
	if err != nil {
		return OrderStatus{}, fmt.Errorf("order status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return OrderStatus{}, fmt.Errorf("order status: status %d", resp.StatusCode)
	}

	var p orderPayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return OrderStatus{}, fmt.Errorf("decode status response: %w", err)
	}

	switch p.Status {
	case "filled":
		return OrderStatus{State: OrderFilled, Price: p.Price, Time: time.Unix(p.FilledAt, 0).UTC()}, nil
	case "rejected":
		return OrderStatus{State: OrderRejected}, nil
	default:
		return OrderStatus{State: OrderPending}, nil
	}
}
