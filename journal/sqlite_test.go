package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tradeAt(id string, closed time.Time) TradeRecord {
	return TradeRecord{
		PositionID: id,
		Symbol:     "AAPL",
		Sector:     "tech",
		Side:       "LONG",
		Shares:     170,
		EntryPrice: 50,
		ExitPrice:  55,
		OpenTime:   closed.Add(-2 * time.Hour),
		CloseTime:  closed,
		RealizedPL: 850,
		Reason:     "TrailingStop",
	}
}

func TestSQLiteTradeRoundTrip(t *testing.T) {
	t.Parallel()

	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	closed := time.Date(2024, 3, 4, 15, 30, 0, 0, time.UTC)
	require.NoError(t, j.RecordTrade(tradeAt("pos-1", closed)))

	got, err := j.ListTradesClosedBetween(closed.Add(-time.Hour), closed.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)

	rec := got[0]
	assert.Equal(t, "pos-1", rec.PositionID)
	assert.Equal(t, "AAPL", rec.Symbol)
	assert.Equal(t, "LONG", rec.Side)
	assert.Equal(t, 170, rec.Shares)
	assert.InDelta(t, 50, rec.EntryPrice, 1e-9)
	assert.InDelta(t, 850, rec.RealizedPL, 1e-9)
	assert.Equal(t, "TrailingStop", rec.Reason)
	assert.True(t, rec.CloseTime.Equal(closed), "close time survives the round trip")
}

func TestSQLiteListWindowIsHalfOpen(t *testing.T) {
	t.Parallel()

	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordTrade(tradeAt("pos-1", day.Add(10*time.Hour))))
	require.NoError(t, j.RecordTrade(tradeAt("pos-2", day.Add(15*time.Hour))))
	require.NoError(t, j.RecordTrade(tradeAt("pos-3", day.Add(24*time.Hour)))) // next day

	got, err := j.ListTradesClosedBetween(day, day.Add(24*time.Hour))
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "pos-1", got[0].PositionID, "ordered by close time")
	assert.Equal(t, "pos-2", got[1].PositionID)
}

func TestSQLiteRecordEquity(t *testing.T) {
	t.Parallel()

	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	assert.NoError(t, j.RecordEquity(EquitySnapshot{
		Time:          time.Now().UTC(),
		Cash:          91500,
		Equity:        100000,
		RealizedToday: 0,
		OpenPositions: 1,
	}))
}
