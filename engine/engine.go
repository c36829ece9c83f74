// Package engine drives the periodic scan cycle: universe fetch, filter,
// score, admission, order submission, and lifecycle evaluation.
package engine

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rustyeddy/daytrader/advisory"
	"github.com/rustyeddy/daytrader/broker"
	"github.com/rustyeddy/daytrader/config"
	"github.com/rustyeddy/daytrader/journal"
	"github.com/rustyeddy/daytrader/market"
	"github.com/rustyeddy/daytrader/marketdata"
	"github.com/rustyeddy/daytrader/metrics"
	"github.com/rustyeddy/daytrader/position"
	"github.com/rustyeddy/daytrader/risk"
	"github.com/rustyeddy/daytrader/scan"
)

// Engine owns the scan loop. Filter and scoring fan out per symbol when
// parallel analysis is enabled; admission is strictly sequential in
// descending confidence order so the best setups get first claim on
// scarce capital and sector headroom.
type Engine struct {
	cfg       *config.Config
	filters   scan.Filters
	entry     scan.EntryRules
	provider  marketdata.Provider
	advisor   advisory.Advisor
	broker    broker.Broker
	paper     *broker.PaperBroker // non-nil when the broker is the paper sim
	rm        *risk.Manager
	lifecycle *position.Engine
	journal   journal.Journal
	timeout   time.Duration

	openMin, closeMin int // market session window, minutes from midnight
}

func New(cfg *config.Config, provider marketdata.Provider, adv advisory.Advisor,
	b broker.Broker, rm *risk.Manager, lc *position.Engine, j journal.Journal) *Engine {

	e := &Engine{
		cfg: cfg,
		filters: scan.Filters{
			MinPrice:     cfg.Filters.MinPrice,
			MaxPrice:     cfg.Filters.MaxPrice,
			MinVolume:    cfg.Filters.MinVolume,
			MinRelVolume: cfg.Filters.MinRelVolume,
			MaxSpreadPct: cfg.Filters.MaxSpreadPct,
		},
		entry: scan.EntryRules{
			MinSetupConfidence:        cfg.Entry.MinSetupConfidence,
			MinRewardRisk:             cfg.Entry.MinRewardRiskRatio,
			RequireVolumeConfirmation: cfg.Entry.RequireVolumeConfirmation,
			MinVWAPDistance:           cfg.Entry.MinDistanceFromVWAP,
			VolumeConfirmationMult:    cfg.Entry.VolumeConfirmationMult,
			AdvisoryFloor:             cfg.Entry.AdvisoryFloor,
			AdvisoryWeight:            cfg.Entry.AdvisoryWeight,
		},
		provider:  provider,
		advisor:   adv,
		broker:    b,
		rm:        rm,
		lifecycle: lc,
		journal:   j,
		timeout:   time.Duration(cfg.System.CollaboratorTimeoutSec) * time.Second,
		openMin:   -1,
	}
	if pb, ok := b.(*broker.PaperBroker); ok {
		e.paper = pb
	}
	if cfg.System.MarketOpen != "" {
		open, _ := time.Parse("15:04", cfg.System.MarketOpen)
		end, _ := time.Parse("15:04", cfg.System.MarketClose)
		e.openMin = open.Hour()*60 + open.Minute()
		e.closeMin = end.Hour()*60 + end.Minute()
	}
	return e
}

// Run executes scan cycles at the configured interval until the context is
// cancelled. A cycle in progress always runs to completion; cancellation is
// honored between cycles only, so the account is never left mid-admission.
func (e *Engine) Run(ctx context.Context) error {
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(e.cfg.System.SessionOpenCron, func() {
		e.rm.ResetSession()
		log.Println("[INFO] session open: daily-loss breaker re-armed")
	}); err != nil {
		return fmt.Errorf("register session reset: %w", err)
	}
	c.Start()
	defer c.Stop()

	interval := time.Duration(e.cfg.System.ScanIntervalSec) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("[INFO] scan loop started, interval %s, %d symbols", interval, len(e.cfg.Data.Universe))
	e.Cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("[INFO] scan loop stopped")
			return nil
		case <-ticker.C:
			e.Cycle(ctx)
		}
	}
}

// Cycle runs one full scan: analyze the universe, admit candidates in
// descending confidence order, then evaluate all open positions. Outside
// market hours only lifecycle evaluation runs; exits are always managed.
func (e *Engine) Cycle(ctx context.Context) {
	// The cycle must not be torn down mid-flight by loop cancellation;
	// individual collaborator calls are still bounded by the per-call timeout.
	base := context.WithoutCancel(ctx)
	now := time.Now()

	quotes := make(map[string]float64)

	if e.sessionOpen(now) {
		universe := e.cfg.Data.Universe
		if len(universe) > e.cfg.System.MaxSymbolsPerCycle {
			universe = universe[:e.cfg.System.MaxSymbolsPerCycle]
		}

		setups := e.analyzeUniverse(base, universe, quotes)

		// Highest confidence first: order-sensitive portfolio limits mean
		// first admitted is first served when capital is scarce.
		sort.SliceStable(setups, func(i, j int) bool {
			return setups[i].Confidence > setups[j].Confidence
		})
		for i := range setups {
			e.admit(base, setups[i])
		}
	} else {
		// Market closed: refresh quotes only for symbols we hold.
		for _, p := range e.lifecycle.Positions() {
			if snap := e.fetch(base, p.Symbol, p.Sector); snap != nil {
				quotes[p.Symbol] = snap.LastPrice
			}
		}
	}

	e.lifecycle.EvaluateAll(base, quotes, now)

	st := e.rm.State()
	metrics.Equity.Set(st.Equity())
	metrics.OpenPositions.Set(float64(st.OpenPositions))
	if st.BreakerTripped {
		metrics.BreakerTripped.Set(1)
	} else {
		metrics.BreakerTripped.Set(0)
	}
	if err := e.journal.RecordEquity(journal.EquitySnapshot{
		Time:          now,
		Cash:          st.Cash,
		Equity:        st.Equity(),
		RealizedToday: st.RealizedToday,
		OpenPositions: st.OpenPositions,
	}); err != nil {
		log.Printf("[ERROR] record equity: %v", err)
	}
}

// analyzeUniverse runs filter+score over the universe, in parallel when
// configured. Both stages are pure, so the fan-out shares no mutable state;
// results fan back in before admission begins.
func (e *Engine) analyzeUniverse(ctx context.Context, universe []config.Instrument, quotes map[string]float64) []scan.ScoredSetup {
	type result struct {
		symbol string
		price  float64
		setup  *scan.ScoredSetup
	}
	results := make([]result, len(universe))

	analyze := func(i int) {
		inst := universe[i]
		snap := e.fetch(ctx, inst.Symbol, inst.Sector)
		metrics.SymbolsAnalyzed.Inc()

		res := scan.Filter(snap, e.filters)
		if snap != nil {
			results[i] = result{symbol: inst.Symbol, price: snap.LastPrice}
		}
		if !res.Admit {
			if res.Reason != scan.ReasonNoData {
				log.Printf("[INFO] %s: filtered (%s) %s", inst.Symbol, res.Reason, res.Detail)
			}
			return
		}

		setup := scan.Score(*snap, e.entry, e.advise(ctx, *snap))
		metrics.SetupsDetected.Inc()
		results[i].setup = &setup
	}

	if e.cfg.System.ParallelAnalysis {
		var wg sync.WaitGroup
		for i := range universe {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				analyze(i)
			}(i)
		}
		wg.Wait()
	} else {
		for i := range universe {
			analyze(i)
		}
	}

	var setups []scan.ScoredSetup
	for _, r := range results {
		if r.symbol != "" {
			quotes[r.symbol] = r.price
		}
		if r.setup != nil {
			setups = append(setups, *r.setup)
		}
	}
	return setups
}

// fetch gets a fresh snapshot, bounded by the collaborator timeout. Returns
// nil when the symbol is unavailable this cycle.
func (e *Engine) fetch(ctx context.Context, symbol, sector string) *market.Snapshot {
	cctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	snap, err := e.provider.FetchSnapshot(cctx, symbol)
	if err != nil {
		log.Printf("[WARN] %s: snapshot: %v", symbol, err)
		return nil
	}
	snap.Symbol = symbol
	snap.Sector = sector

	if e.paper != nil {
		e.paper.SetQuote(symbol, snap.LastPrice)
	}
	return &snap
}

// advise asks the advisory collaborator for a confidence, bounded by the
// collaborator timeout. Absence only removes the blend/veto term.
func (e *Engine) advise(ctx context.Context, snap market.Snapshot) *float64 {
	if e.advisor == nil {
		return nil
	}
	actx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	conf, err := e.advisor.Confidence(actx, snap)
	if err != nil {
		log.Printf("[WARN] %s: advisory: %v", snap.Symbol, err)
		return nil
	}
	return &conf
}

// admit runs the sequential admission step for one candidate and submits
// the entry order on success.
func (e *Engine) admit(ctx context.Context, setup scan.ScoredSetup) {
	if e.lifecycle.Has(setup.Symbol) {
		return // one position slot per symbol
	}

	adm := e.rm.Admit(setup, e.entry)
	if !adm.OK {
		metrics.Admissions.WithLabelValues(adm.Reason).Inc()
		log.Printf("[INFO] %s: rejected (%s) %s", setup.Symbol, adm.Reason, adm.Detail)
		return
	}

	octx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	h, err := e.broker.PlaceOrder(octx, setup.Symbol, position.EntrySide(setup.Side), adm.Shares)
	if err != nil {
		// Entry transport failure: hand the reservation back, the candidate
		// is simply re-scored next cycle.
		e.rm.Release(setup.Snapshot.Sector, adm.Capital)
		metrics.Admissions.WithLabelValues("OrderTransportFailure").Inc()
		log.Printf("[ERROR] %s: place entry order: %v", setup.Symbol, err)
		return
	}

	e.lifecycle.Track(position.NewPending(
		setup.Symbol, setup.Snapshot.Sector, setup.Side, adm.Shares, adm.Capital, h))
	metrics.Admissions.WithLabelValues("Admitted").Inc()
	log.Printf("[INFO] %s: admitted %d shares (%.2f), confidence %.1f, r/r %.2f",
		setup.Symbol, adm.Shares, adm.Capital, setup.Confidence, setup.RewardRisk)
}

// sessionOpen reports whether new entries may be considered at this time.
// An empty market_open disables the gate entirely.
func (e *Engine) sessionOpen(now time.Time) bool {
	if e.openMin < 0 {
		return true
	}
	min := now.Hour()*60 + now.Minute()
	return min >= e.openMin && min < e.closeMin
}
