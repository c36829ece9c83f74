package risk

// Policy holds the account-level risk limits and sizing bounds. Loaded once
// at startup and treated as immutable for the duration of a run.
type Policy struct {
	StartingBalance float64

	// Sizing
	RiskPerTradePct float64 // target capital as fraction of sizable equity
	MinPositionPct  float64
	MaxPositionPct  float64
	ShareIncrement  int // share counts round down to a multiple of this

	// Portfolio limits
	CashReservePct  float64 // fraction of starting balance never allocated
	MaxDailyLossPct float64 // realized-loss circuit breaker
	MaxPositions    int
	MaxSectorPct    float64 // per-sector allocation cap, fraction of equity
}
