package position

import (
	"time"

	"github.com/rustyeddy/daytrader/broker"
	"github.com/rustyeddy/daytrader/market"
	"github.com/rustyeddy/daytrader/pkg/id"
)

// Status is the lifecycle state of a position.
type Status int

const (
	Pending Status = iota // entry order submitted, awaiting fill
	Open
	Closing // exit order submitted, awaiting fill
	Closed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Open:
		return "OPEN"
	case Closing:
		return "CLOSING"
	case Closed:
		return "CLOSED"
	}
	return "UNKNOWN"
}

// ExitReason identifies which trigger closed a position.
type ExitReason string

const (
	ExitAdverseExcursion ExitReason = "AdverseExcursion"
	ExitTimeStop         ExitReason = "TimeStop"
	ExitTrailingStop     ExitReason = "TrailingStop"
)

// Position is the only stateful, long-lived entity in the core. It is
// created on admission and owned by the lifecycle engine until Closed.
type Position struct {
	ID        string
	Symbol    string
	Sector    string
	Side      market.Side
	Shares    int
	Allocated float64 // capital reserved at admission

	EntryPrice float64 // from the entry fill, not the signal snapshot
	EntryTime  time.Time
	HighWater  float64 // best price seen since entry (lowest for shorts)

	Status     Status
	EntryOrder broker.OrderHandle
	ExitOrder  broker.OrderHandle
	ExitReason ExitReason
}

// NewPending creates a position awaiting its entry fill.
func NewPending(symbol, sector string, side market.Side, shares int, allocated float64, entryOrder broker.OrderHandle) *Position {
	return &Position{
		ID:         id.New(),
		Symbol:     symbol,
		Sector:     sector,
		Side:       side,
		Shares:     shares,
		Allocated:  allocated,
		Status:     Pending,
		EntryOrder: entryOrder,
	}
}

// EntryCapital is the position's cost basis at the fill price.
func (p *Position) EntryCapital() float64 {
	return p.EntryPrice * float64(p.Shares)
}

// UnrealizedPL marks the position against the given price.
func (p *Position) UnrealizedPL(price float64) float64 {
	pl := (price - p.EntryPrice) * float64(p.Shares)
	if p.Side == market.Short {
		return -pl
	}
	return pl
}

// markFill records the confirmed entry fill and opens the position.
func (p *Position) markFill(price float64, at time.Time) {
	p.EntryPrice = price
	p.EntryTime = at
	p.HighWater = price
	p.Status = Open
}

// updateHighWater ratchets the trailing mark in the favorable direction only.
func (p *Position) updateHighWater(price float64) {
	if p.Side == market.Long {
		if price > p.HighWater {
			p.HighWater = price
		}
		return
	}
	if price < p.HighWater {
		p.HighWater = price
	}
}
