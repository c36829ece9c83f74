package journal

import "time"

// TradeRecord is written once per closed position.
type TradeRecord struct {
	PositionID string
	Symbol     string
	Sector     string
	Side       string
	Shares     int
	EntryPrice float64
	ExitPrice  float64
	OpenTime   time.Time
	CloseTime  time.Time
	RealizedPL float64
	Reason     string
}

// EquitySnapshot is written once per scan cycle.
type EquitySnapshot struct {
	Time          time.Time
	Cash          float64
	Equity        float64
	RealizedToday float64
	OpenPositions int
}

type Journal interface {
	RecordTrade(t TradeRecord) error
	RecordEquity(e EquitySnapshot) error
	Close() error
}

// Noop discards all records. Used when journaling is not configured.
type Noop struct{}

func (Noop) RecordTrade(TradeRecord) error     { return nil }
func (Noop) RecordEquity(EquitySnapshot) error { return nil }
func (Noop) Close() error                      { return nil }
