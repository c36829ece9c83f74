package scan

import (
	"math"

	"github.com/rustyeddy/daytrader/market"
)

// ReasonInvalidGeometry marks a setup whose reward/risk ratio is undefined
// (zero or negative risk distance). Such setups score zero confidence.
const ReasonInvalidGeometry = "InvalidGeometry"

// EntryRules holds the thresholds and weights used to score a setup.
type EntryRules struct {
	MinSetupConfidence        float64
	MinRewardRisk             float64
	RequireVolumeConfirmation bool
	MinVWAPDistance           float64 // fractional distance from VWAP
	VolumeConfirmationMult    float64 // volume must exceed this multiple of average
	AdvisoryFloor             float64 // advisory below this caps overall confidence
	AdvisoryWeight            float64 // blend weight in [0,1] when advisory present
}

// ScoredSetup is a candidate trade derived from one snapshot. It is
// recomputed every cycle and never persisted across cycles.
type ScoredSetup struct {
	Symbol          string
	Snapshot        market.Snapshot
	Side            market.Side
	Confidence      float64 // 0-100
	RewardRisk      float64
	VolumeConfirmed bool
	Advisory        *float64 // external advisory confidence, if available
	Reason          string   // set when confidence was forced to zero
}

// Score computes a rule-based confidence and reward/risk ratio for a
// snapshot. The advisory value is an optional external confidence (0-100)
// supplied by the caller; Score itself never performs I/O, which keeps it
// synchronous and idempotent for a given snapshot.
func Score(snap market.Snapshot, rules EntryRules, advisory *float64) ScoredSetup {
	setup := ScoredSetup{
		Symbol:   snap.Symbol,
		Snapshot: snap,
		Advisory: advisory,
	}

	// VWAP distance direction sets the long/short bias.
	dist := snap.VWAPDistance()
	if dist >= 0 {
		setup.Side = market.Long
	} else {
		setup.Side = market.Short
	}

	// Reward/risk from the nearest support/resistance to target.
	var reward, riskDist float64
	if setup.Side == market.Long {
		reward = snap.Resistance - snap.LastPrice
		riskDist = snap.LastPrice - snap.Support
	} else {
		reward = snap.LastPrice - snap.Support
		riskDist = snap.Resistance - snap.LastPrice
	}
	if riskDist <= 0 {
		setup.Reason = ReasonInvalidGeometry
		return setup
	}
	setup.RewardRisk = reward / riskDist

	setup.VolumeConfirmed = snap.AvgVolume > 0 &&
		snap.Volume >= rules.VolumeConfirmationMult*snap.AvgVolume

	// Rule-based confidence: base conviction plus the three technical
	// components, each worth 20 points.
	confidence := 40.0
	if math.Abs(dist) >= rules.MinVWAPDistance {
		confidence += 20
	}
	if setup.VolumeConfirmed {
		confidence += 20
	}
	confidence += math.Min(setup.RewardRisk, 5) / 5 * 20

	// Advisory blend or veto.
	if advisory != nil {
		if *advisory < rules.AdvisoryFloor {
			confidence = math.Min(confidence, rules.AdvisoryFloor)
		} else {
			w := rules.AdvisoryWeight
			confidence = (1-w)*confidence + w*(*advisory)
		}
	}

	setup.Confidence = clamp(confidence, 0, 100)
	return setup
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
