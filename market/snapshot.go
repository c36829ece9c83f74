package market

import "time"

// Side is the direction of a trade setup or position.
type Side int

const (
	Long Side = iota + 1
	Short
)

func (s Side) String() string {
	switch s {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	}
	return "UNKNOWN"
}

// Snapshot is a point-in-time quote/bar bundle for one symbol. Snapshots are
// produced fresh each scan cycle and never mutated after creation.
type Snapshot struct {
	Symbol     string
	Sector     string
	LastPrice  float64
	Volume     float64
	AvgVolume  float64 // N-day average volume baseline
	SpreadPct  float64 // bid/ask spread as a fraction of price
	VWAP       float64
	Support    float64 // nearest technical support below price
	Resistance float64 // nearest technical resistance above price
	Time       time.Time
}

// RelVolume returns current volume relative to the average baseline.
// Zero when no baseline is available.
func (s Snapshot) RelVolume() float64 {
	if s.AvgVolume <= 0 {
		return 0
	}
	return s.Volume / s.AvgVolume
}

// VWAPDistance returns the signed fractional distance of the last price
// from VWAP. Positive means price is above VWAP.
func (s Snapshot) VWAPDistance() float64 {
	if s.VWAP <= 0 {
		return 0
	}
	return (s.LastPrice - s.VWAP) / s.VWAP
}
