package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVJournalWritesRows(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(tradesPath, equityPath)
	require.NoError(t, err)

	closed := time.Date(2024, 3, 4, 15, 30, 0, 0, time.UTC)
	require.NoError(t, j.RecordTrade(tradeAt("pos-1", closed)))
	require.NoError(t, j.RecordEquity(EquitySnapshot{
		Time: closed, Cash: 100850, Equity: 100850, RealizedToday: 850,
	}))
	require.NoError(t, j.Close())

	rows := readCSV(t, tradesPath)
	require.Len(t, rows, 2) // header + one trade
	assert.Equal(t, "position_id", rows[0][0])
	assert.Equal(t, "pos-1", rows[1][0])
	assert.Equal(t, "170", rows[1][4])
	assert.Equal(t, "850.0000", rows[1][9])
	assert.Equal(t, "TrailingStop", rows[1][10])

	rows = readCSV(t, equityPath)
	require.Len(t, rows, 2)
	assert.Equal(t, closed.Format(time.RFC3339), rows[1][0])
	assert.Equal(t, "100850.0000", rows[1][1])
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}
