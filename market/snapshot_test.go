package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelVolume(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 2.0, Snapshot{Volume: 2000000, AvgVolume: 1000000}.RelVolume(), 1e-9)
	assert.Zero(t, Snapshot{Volume: 2000000}.RelVolume(), "no baseline means no ratio")
}

func TestVWAPDistance(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.01, Snapshot{LastPrice: 101, VWAP: 100}.VWAPDistance(), 1e-9)
	assert.InDelta(t, -0.02, Snapshot{LastPrice: 98, VWAP: 100}.VWAPDistance(), 1e-9)
	assert.Zero(t, Snapshot{LastPrice: 100}.VWAPDistance())
}

func TestSideString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "LONG", Long.String())
	assert.Equal(t, "SHORT", Short.String())
	assert.Equal(t, "UNKNOWN", Side(0).String())
}
