package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/daytrader/advisory"
	"github.com/rustyeddy/daytrader/broker"
	"github.com/rustyeddy/daytrader/config"
	"github.com/rustyeddy/daytrader/journal"
	"github.com/rustyeddy/daytrader/market"
	"github.com/rustyeddy/daytrader/position"
	"github.com/rustyeddy/daytrader/risk"
)

type fakeProvider struct {
	snaps map[string]market.Snapshot
}

func (p *fakeProvider) FetchSnapshot(ctx context.Context, symbol string) (market.Snapshot, error) {
	snap, ok := p.snaps[symbol]
	if !ok {
		return market.Snapshot{}, fmt.Errorf("no snapshot for %s", symbol)
	}
	return snap, nil
}

type fakeAdvisor struct{ confidence float64 }

func (a fakeAdvisor) Confidence(ctx context.Context, snap market.Snapshot) (float64, error) {
	return a.confidence, nil
}

// candidate builds a liquid snapshot biased long; resistance controls the
// reward/risk term and therefore the rule confidence.
func candidate(symbol string, resistance float64) market.Snapshot {
	return market.Snapshot{
		Symbol:     symbol,
		LastPrice:  100,
		Volume:     3000000,
		AvgVolume:  1000000,
		SpreadPct:  0.001,
		VWAP:       99,
		Support:    98,
		Resistance: resistance,
		Time:       time.Now(),
	}
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.System.MarketOpen = "" // no session gate in tests
	cfg.System.MarketClose = ""
	cfg.Data.Universe = []config.Instrument{
		{Symbol: "ALPHA", Sector: "tech"},
		{Symbol: "BRAVO", Sector: "tech"},
	}
	return cfg
}

func testPolicy() risk.Policy {
	return risk.Policy{
		StartingBalance: 100000,
		RiskPerTradePct: 0.02,
		MinPositionPct:  0.10,
		MaxPositionPct:  0.30,
		ShareIncrement:  10,
		CashReservePct:  0.15,
		MaxDailyLossPct: 0.03,
		MaxPositions:    3,
		MaxSectorPct:    0.40,
	}
}

func newTestEngine(cfg *config.Config, pol risk.Policy, provider *fakeProvider, adv advisory.Advisor) (*Engine, *risk.Manager, *position.Engine) {
	pb := broker.NewPaperBroker()
	rm := risk.NewManager(pol)
	lc := position.NewEngine(position.ExitRules{
		UseTrailingStops:     true,
		TrailingStopDistance: 0.02,
		TimeBasedExit:        true,
		MaxHoldTime:          4 * time.Hour,
		MaxAdverseExcursion:  0.02,
	}, pb, rm, journal.Noop{})
	return New(cfg, provider, adv, pb, rm, lc, journal.Noop{}), rm, lc
}

// With one slot and two valid setups, the higher-confidence candidate must
// win the slot regardless of universe order.
func TestCycleAdmitsHighestConfidenceFirst(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{snaps: map[string]market.Snapshot{
		"ALPHA": candidate("ALPHA", 104), // r/r 2.0, confidence 88
		"BRAVO": candidate("BRAVO", 108), // r/r 4.0, confidence 96
	}}
	pol := testPolicy()
	pol.MaxPositions = 1

	eng, rm, lc := newTestEngine(testConfig(), pol, provider, nil)
	eng.Cycle(context.Background())

	assert.True(t, lc.Has("BRAVO"), "higher confidence candidate takes the only slot")
	assert.False(t, lc.Has("ALPHA"))
	assert.Equal(t, 1, lc.Count())
	assert.Equal(t, 1, rm.State().OpenPositions)
}

// A held symbol keeps its single slot: a second cycle never double-admits.
func TestCycleOnePositionPerSymbol(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{snaps: map[string]market.Snapshot{
		"ALPHA": candidate("ALPHA", 108),
		"BRAVO": candidate("BRAVO", 108),
	}}

	eng, rm, lc := newTestEngine(testConfig(), testPolicy(), provider, nil)
	eng.Cycle(context.Background())
	require.Equal(t, 2, lc.Count())
	cashAfterFirst := rm.State().Cash

	eng.Cycle(context.Background())

	assert.Equal(t, 2, lc.Count())
	assert.InDelta(t, cashAfterFirst, rm.State().Cash, 1e-9, "no double reservation")
}

// The paper broker fills entries at the cycle's own quote, so a single cycle
// moves an admitted position all the way to Open.
func TestCycleFillsEntryAtQuote(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{snaps: map[string]market.Snapshot{
		"ALPHA": candidate("ALPHA", 108),
	}}
	cfg := testConfig()
	cfg.Data.Universe = cfg.Data.Universe[:1]

	eng, _, lc := newTestEngine(cfg, testPolicy(), provider, nil)
	eng.Cycle(context.Background())

	ps := lc.Positions()
	require.Len(t, ps, 1)
	assert.Equal(t, position.Open, ps[0].Status)
	assert.InDelta(t, 100, ps[0].EntryPrice, 1e-9)
}

// A bearish advisory below the floor vetoes an otherwise perfect setup.
func TestCycleAdvisoryVetoBlocksAdmission(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{snaps: map[string]market.Snapshot{
		"ALPHA": candidate("ALPHA", 108),
		"BRAVO": candidate("BRAVO", 108),
	}}
	adv := &fakeAdvisor{confidence: 20} // below the default floor of 40

	eng, rm, lc := newTestEngine(testConfig(), testPolicy(), provider, adv)
	eng.Cycle(context.Background())

	assert.Zero(t, lc.Count())
	assert.Zero(t, rm.State().OpenPositions)
}

// Unreachable symbols are skipped without affecting the rest of the cycle.
func TestCycleToleratesProviderErrors(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{snaps: map[string]market.Snapshot{
		"BRAVO": candidate("BRAVO", 108), // ALPHA missing: provider errors
	}}

	eng, _, lc := newTestEngine(testConfig(), testPolicy(), provider, nil)
	eng.Cycle(context.Background())

	assert.True(t, lc.Has("BRAVO"))
	assert.False(t, lc.Has("ALPHA"))
}

func TestCycleClosedSessionSuppressesEntries(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{snaps: map[string]market.Snapshot{
		"ALPHA": candidate("ALPHA", 108),
		"BRAVO": candidate("BRAVO", 108),
	}}
	cfg := testConfig()
	cfg.System.MarketOpen = "00:00" // zero-width window: always closed
	cfg.System.MarketClose = "00:00"

	eng, rm, lc := newTestEngine(cfg, testPolicy(), provider, nil)
	eng.Cycle(context.Background())

	assert.Zero(t, lc.Count())
	assert.Zero(t, rm.State().OpenPositions)
}

func TestSessionOpenWindow(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.System.MarketOpen = "09:30"
	cfg.System.MarketClose = "16:00"
	eng, _, _ := newTestEngine(cfg, testPolicy(), &fakeProvider{}, nil)

	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		hh, mm int
		open   bool
	}{
		{9, 29, false},
		{9, 30, true},
		{12, 0, true},
		{15, 59, true},
		{16, 0, false},
		{20, 15, false},
	}
	for _, tt := range tests {
		at := day.Add(time.Duration(tt.hh)*time.Hour + time.Duration(tt.mm)*time.Minute)
		assert.Equal(t, tt.open, eng.sessionOpen(at), "%02d:%02d", tt.hh, tt.mm)
	}
}
