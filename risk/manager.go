package risk

import (
	"fmt"
	"sync"

	"github.com/rustyeddy/daytrader/market"
	"github.com/rustyeddy/daytrader/scan"
)

// Admission rejection reason codes.
const (
	ReasonConfidenceTooLow  = "ConfidenceTooLow"
	ReasonRewardRiskTooLow  = "RewardRiskTooLow"
	ReasonVolumeUnconfirmed = "VolumeUnconfirmed"
	ReasonBreakerTripped    = "DailyLossBreaker"
	ReasonPortfolioFull     = "PortfolioFull"
	ReasonSectorCapReached  = "SectorCapReached"
	ReasonSizeTooSmall      = "SizeTooSmall"
	ReasonInsufficientCash  = "InsufficientCash"
)

// Admission is the outcome of an admission decision.
type Admission struct {
	OK      bool
	Reason  string
	Detail  string
	Shares  int
	Capital float64 // cash reserved for the position
}

// Manager owns the AccountState aggregate. Admission, release, and close
// are the only mutators, and each runs atomically under one mutex so no
// cycle can observe the account mid-mutation.
type Manager struct {
	mu     sync.Mutex
	policy Policy
	state  AccountState
}

func NewManager(p Policy) *Manager {
	reserve := p.StartingBalance * p.CashReservePct
	return &Manager{
		policy: p,
		state: AccountState{
			StartingBalance: p.StartingBalance,
			Cash:            p.StartingBalance,
			Reserve:         reserve,
			SectorAlloc:     make(map[string]float64),
		},
	}
}

// Admit decides whether a scored setup may become a position and at what
// size. On success the capital is reserved atomically with the decision;
// the caller must pair every admission with a later Close or Release.
func (m *Manager) Admit(setup scan.ScoredSetup, rules scan.EntryRules) Admission {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Setup quality gates.
	if setup.Confidence < rules.MinSetupConfidence {
		return reject(ReasonConfidenceTooLow,
			fmt.Sprintf("confidence %.1f below %.1f", setup.Confidence, rules.MinSetupConfidence))
	}
	if setup.RewardRisk < rules.MinRewardRisk {
		return reject(ReasonRewardRiskTooLow,
			fmt.Sprintf("reward/risk %.2f below %.2f", setup.RewardRisk, rules.MinRewardRisk))
	}
	if rules.RequireVolumeConfirmation && !setup.VolumeConfirmed {
		return reject(ReasonVolumeUnconfirmed, "volume not confirmed")
	}

	// Portfolio gates.
	if m.state.BreakerTripped {
		return reject(ReasonBreakerTripped, "daily loss breaker is tripped")
	}
	if m.state.OpenPositions >= m.policy.MaxPositions {
		return reject(ReasonPortfolioFull,
			fmt.Sprintf("open positions %d at max %d", m.state.OpenPositions, m.policy.MaxPositions))
	}
	sector := setup.Snapshot.Sector
	sectorCap := m.policy.MaxSectorPct * m.state.Equity()
	headroom := sectorCap - m.state.SectorAlloc[sector]
	if headroom <= 0 {
		return reject(ReasonSectorCapReached,
			fmt.Sprintf("sector %q at cap %.2f", sector, sectorCap))
	}

	// Sizing: risk-per-trade target, clamped to the position bounds, then
	// to sector headroom and spendable cash.
	sizable := m.state.SizableEquity()
	minCapital := m.policy.MinPositionPct * sizable
	maxCapital := m.policy.MaxPositionPct * sizable
	capital := clampCapital(sizable*m.policy.RiskPerTradePct, minCapital, maxCapital)

	if capital > headroom {
		capital = headroom
		if capital < minCapital {
			// The sector cap is a hard ceiling: never under-size below the
			// configured minimum to squeeze into remaining headroom.
			return reject(ReasonSectorCapReached,
				fmt.Sprintf("sector %q headroom %.2f below min position %.2f", sector, headroom, minCapital))
		}
	}
	if avail := m.state.AvailableCash(); capital > avail {
		capital = avail
		if capital < minCapital {
			return reject(ReasonInsufficientCash,
				fmt.Sprintf("available cash %.2f below min position %.2f", avail, minCapital))
		}
	}

	shares := ShareCount(capital, setup.Snapshot.LastPrice, m.policy.ShareIncrement)
	if shares == 0 {
		return reject(ReasonSizeTooSmall,
			fmt.Sprintf("capital %.2f buys no full increment of %d at %.2f",
				capital, m.policy.ShareIncrement, setup.Snapshot.LastPrice))
	}
	capital = float64(shares) * setup.Snapshot.LastPrice

	m.state.Cash -= capital
	m.state.SectorAlloc[sector] += capital
	m.state.OpenPositions++

	return Admission{OK: true, Shares: shares, Capital: capital}
}

// Release undoes a reservation whose entry order never filled. The cash
// and sector headroom return exactly to their pre-admission values.
func (m *Manager) Release(sector string, capital float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.Cash += capital
	m.releaseSectorLocked(sector, capital)
	m.state.OpenPositions--
}

// Close settles a filled exit: capital is released, realized P&L is
// accumulated, and the daily-loss breaker trips when the session's
// cumulative realized loss reaches the policy limit. Returns the realized
// P&L for the trade.
func (m *Manager) Close(sector string, capital float64, side market.Side, entry, exit float64, shares int) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	realized := RealizedPL(side == market.Short, entry, exit, shares)

	m.state.Cash += capital + realized
	m.releaseSectorLocked(sector, capital)
	m.state.OpenPositions--
	m.state.RealizedToday += realized

	limit := -m.policy.MaxDailyLossPct * m.state.StartingBalance
	if m.state.RealizedToday <= limit {
		m.state.BreakerTripped = true
	}
	return realized
}

// ResetSession re-arms the daily-loss breaker and zeroes the session P&L.
// Runs at the session boundary, never mid-day.
func (m *Manager) ResetSession() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.RealizedToday = 0
	m.state.BreakerTripped = false
}

// State returns a copy of the current account state.
func (m *Manager) State() AccountState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// BreakerTripped reports whether new admissions are halted for the session.
func (m *Manager) BreakerTripped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.BreakerTripped
}

func (m *Manager) releaseSectorLocked(sector string, capital float64) {
	m.state.SectorAlloc[sector] -= capital
	if m.state.SectorAlloc[sector] <= 1e-9 {
		delete(m.state.SectorAlloc, sector)
	}
}

func reject(reason, detail string) Admission {
	return Admission{Reason: reason, Detail: detail}
}
