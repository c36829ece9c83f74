package position

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/rustyeddy/daytrader/broker"
	"github.com/rustyeddy/daytrader/journal"
	"github.com/rustyeddy/daytrader/market"
	"github.com/rustyeddy/daytrader/metrics"
	"github.com/rustyeddy/daytrader/risk"
)

// ExitRules holds the exit-side configuration. MaxAdverseExcursion is the
// capital-preservation floor and applies regardless of the other toggles.
type ExitRules struct {
	UseTrailingStops     bool
	TrailingStopDistance float64 // fractional retrace from the high-water mark
	TimeBasedExit        bool
	MaxHoldTime          time.Duration
	MaxAdverseExcursion  float64 // fraction of entry capital
}

// Engine drives the per-position state machine. One slot per symbol; the
// position set is mutated only here and in the risk manager, under this
// engine's lock.
type Engine struct {
	mu        sync.Mutex
	rules     ExitRules
	broker    broker.Broker
	rm        *risk.Manager
	journal   journal.Journal
	positions map[string]*Position // keyed by symbol
}

func NewEngine(rules ExitRules, b broker.Broker, rm *risk.Manager, j journal.Journal) *Engine {
	return &Engine{
		rules:     rules,
		broker:    b,
		rm:        rm,
		journal:   j,
		positions: make(map[string]*Position),
	}
}

// Track registers a freshly admitted position awaiting its entry fill.
func (e *Engine) Track(p *Position) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.positions[p.Symbol] = p
}

// Has reports whether a symbol already occupies its position slot.
func (e *Engine) Has(symbol string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.positions[symbol]
	return ok
}

// Count returns the number of tracked (non-closed) positions.
func (e *Engine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.positions)
}

// Positions returns a snapshot of the tracked positions.
func (e *Engine) Positions() []Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Position, 0, len(e.positions))
	for _, p := range e.positions {
		out = append(out, *p)
	}
	return out
}

// EvaluateAll advances every tracked position one step: pending entries are
// polled, open positions are checked against the exit triggers, and closing
// positions are polled for their exit fill. Inter-position order is
// unspecified; each position makes at most one exit attempt per call.
func (e *Engine) EvaluateAll(ctx context.Context, prices map[string]float64, now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for symbol, p := range e.positions {
		switch p.Status {
		case Pending:
			e.stepPending(ctx, symbol, p)
		case Open:
			price, ok := prices[symbol]
			if !ok {
				continue // no data this cycle, re-evaluate next one
			}
			e.stepOpen(ctx, p, price, now)
		case Closing:
			e.stepClosing(ctx, symbol, p)
		}
	}
}

func (e *Engine) stepPending(ctx context.Context, symbol string, p *Position) {
	st, err := e.broker.OrderStatus(ctx, p.EntryOrder)
	if err != nil {
		log.Printf("[WARN] %s: entry order status: %v", symbol, err)
		return
	}
	switch st.State {
	case broker.OrderFilled:
		p.markFill(st.Price, st.Time)
		log.Printf("[INFO] %s: entry filled %d shares @ %.2f (%s)", symbol, p.Shares, st.Price, p.Side)
	case broker.OrderRejected:
		// Entry never happened; hand the reservation back so the candidate
		// can be re-scored next cycle.
		e.rm.Release(p.Sector, p.Allocated)
		delete(e.positions, symbol)
		log.Printf("[WARN] %s: entry order rejected, reservation released", symbol)
	}
}

func (e *Engine) stepOpen(ctx context.Context, p *Position, price float64, now time.Time) {
	p.updateHighWater(price)

	reason, hit := e.exitReason(p, price, now)
	if !hit {
		return
	}

	h, err := e.broker.PlaceOrder(ctx, p.Symbol, closingSide(p.Side), p.Shares)
	if err != nil {
		// Stay Open; the exit is re-attempted every cycle until it lands.
		log.Printf("[ERROR] %s: place exit order (%s): %v", p.Symbol, reason, err)
		return
	}
	p.ExitOrder = h
	p.ExitReason = reason
	p.Status = Closing
	log.Printf("[INFO] %s: exit submitted (%s) @ %.2f", p.Symbol, reason, price)
}

func (e *Engine) stepClosing(ctx context.Context, symbol string, p *Position) {
	st, err := e.broker.OrderStatus(ctx, p.ExitOrder)
	if err != nil {
		log.Printf("[WARN] %s: exit order status: %v", symbol, err)
		return
	}
	switch st.State {
	case broker.OrderFilled:
		realized := e.rm.Close(p.Sector, p.Allocated, p.Side, p.EntryPrice, st.Price, p.Shares)
		p.Status = Closed
		delete(e.positions, symbol)
		metrics.Exits.WithLabelValues(string(p.ExitReason)).Inc()

		if err := e.journal.RecordTrade(journal.TradeRecord{
			PositionID: p.ID,
			Symbol:     p.Symbol,
			Sector:     p.Sector,
			Side:       p.Side.String(),
			Shares:     p.Shares,
			EntryPrice: p.EntryPrice,
			ExitPrice:  st.Price,
			OpenTime:   p.EntryTime,
			CloseTime:  st.Time,
			RealizedPL: realized,
			Reason:     string(p.ExitReason),
		}); err != nil {
			log.Printf("[ERROR] %s: record trade: %v", symbol, err)
		}
		log.Printf("[INFO] %s: closed (%s) realized %.2f", symbol, p.ExitReason, realized)
	case broker.OrderRejected:
		// Back to Open; one exit attempt per cycle, no retry storm.
		p.Status = Open
		p.ExitOrder = ""
		log.Printf("[WARN] %s: exit order rejected, will re-evaluate next cycle", symbol)
	}
}

// exitReason evaluates the exit triggers in fixed priority order:
// adverse excursion, time stop, trailing stop. The first satisfied trigger
// wins and is recorded with the close.
func (e *Engine) exitReason(p *Position, price float64, now time.Time) (ExitReason, bool) {
	if loss := -p.UnrealizedPL(price); loss >= e.rules.MaxAdverseExcursion*p.EntryCapital() {
		return ExitAdverseExcursion, true
	}
	if e.rules.TimeBasedExit && now.Sub(p.EntryTime) >= e.rules.MaxHoldTime {
		return ExitTimeStop, true
	}
	if e.rules.UseTrailingStops {
		if p.Side == market.Long && price <= p.HighWater*(1-e.rules.TrailingStopDistance) {
			return ExitTrailingStop, true
		}
		if p.Side == market.Short && price >= p.HighWater*(1+e.rules.TrailingStopDistance) {
			return ExitTrailingStop, true
		}
	}
	return "", false
}

func closingSide(s market.Side) broker.Side {
	if s == market.Long {
		return broker.Sell
	}
	return broker.Buy
}

// EntrySide maps a setup bias to the order side that opens the position.
func EntrySide(s market.Side) broker.Side {
	if s == market.Long {
		return broker.Buy
	}
	return broker.Sell
}
