package scan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/daytrader/market"
)

func testRules() EntryRules {
	return EntryRules{
		MinSetupConfidence:        75,
		MinRewardRisk:             2.0,
		RequireVolumeConfirmation: true,
		MinVWAPDistance:           0.005,
		VolumeConfirmationMult:    1.5,
		AdvisoryFloor:             40,
		AdvisoryWeight:            0.3,
	}
}

func strongSnapshot() market.Snapshot {
	// Price above VWAP by ~1%, confirmed volume, reward 8 vs risk 2.
	return market.Snapshot{
		Symbol:     "NVDA",
		LastPrice:  100,
		Volume:     3000000,
		AvgVolume:  1000000,
		SpreadPct:  0.001,
		VWAP:       99,
		Support:    98,
		Resistance: 108,
		Time:       time.Date(2024, 3, 4, 10, 30, 0, 0, time.UTC),
	}
}

func TestScoreStrongLongSetup(t *testing.T) {
	t.Parallel()

	setup := Score(strongSnapshot(), testRules(), nil)

	assert.Equal(t, market.Long, setup.Side)
	assert.True(t, setup.VolumeConfirmed)
	assert.InDelta(t, 4.0, setup.RewardRisk, 1e-9)
	// 40 base + 20 VWAP distance + 20 volume + 16 reward/risk
	assert.InDelta(t, 96, setup.Confidence, 1e-9)
	assert.Empty(t, setup.Reason)
}

func TestScoreShortBiasBelowVWAP(t *testing.T) {
	t.Parallel()

	snap := strongSnapshot()
	snap.VWAP = 101.5
	snap.Resistance = 101

	setup := Score(snap, testRules(), nil)

	assert.Equal(t, market.Short, setup.Side)
	// Short: reward = price - support = 2, risk = resistance - price = 1.
	assert.InDelta(t, 2.0, setup.RewardRisk, 1e-9)
}

func TestScoreInvalidGeometry(t *testing.T) {
	t.Parallel()

	snap := strongSnapshot()
	snap.Support = 101 // above price: negative risk distance

	setup := Score(snap, testRules(), nil)

	assert.Equal(t, ReasonInvalidGeometry, setup.Reason)
	assert.Zero(t, setup.Confidence)
	assert.Zero(t, setup.RewardRisk)
}

func TestScoreAdvisoryVeto(t *testing.T) {
	t.Parallel()

	adv := 30.0 // below the floor of 40
	setup := Score(strongSnapshot(), testRules(), &adv)

	assert.InDelta(t, 40, setup.Confidence, 1e-9, "confidence must be capped at the floor")
}

func TestScoreAdvisoryBlend(t *testing.T) {
	t.Parallel()

	adv := 80.0
	setup := Score(strongSnapshot(), testRules(), &adv)

	// 0.7*96 + 0.3*80
	assert.InDelta(t, 91.2, setup.Confidence, 1e-9)
}

func TestScoreNoAdvisoryLeavesRuleScore(t *testing.T) {
	t.Parallel()

	with := Score(strongSnapshot(), testRules(), nil)
	rules := testRules()
	rules.AdvisoryWeight = 0.9 // must be irrelevant without an advisory value
	without := Score(strongSnapshot(), rules, nil)

	assert.Equal(t, with.Confidence, without.Confidence)
}

func TestScoreVolumeNotConfirmed(t *testing.T) {
	t.Parallel()

	snap := strongSnapshot()
	snap.Volume = 1200000 // below 1.5x average

	setup := Score(snap, testRules(), nil)

	assert.False(t, setup.VolumeConfirmed)
	assert.InDelta(t, 76, setup.Confidence, 1e-9)
}

// Re-running filter and score on an unchanged snapshot yields identical
// results: there is no hidden mutable state in the scoring path.
func TestScoreIdempotent(t *testing.T) {
	t.Parallel()

	snap := strongSnapshot()
	rules := testRules()
	adv := 85.0

	first := Score(snap, rules, &adv)
	second := Score(snap, rules, &adv)

	assert.Equal(t, first, second)
}
