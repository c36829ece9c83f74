package journal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(position_id, symbol, sector, side, shares, entry_price, exit_price, open_time, close_time, realized_pl, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.PositionID, t.Symbol, t.Sector, t.Side, t.Shares,
		t.EntryPrice, t.ExitPrice, t.OpenTime, t.CloseTime, t.RealizedPL, t.Reason,
	)
	return err
}

func (j *SQLiteJournal) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(time, cash, equity, realized_today, open_positions)
		VALUES (?, ?, ?, ?, ?)`,
		e.Time, e.Cash, e.Equity, e.RealizedToday, e.OpenPositions,
	)
	return err
}

// ListTradesClosedBetween returns trades whose close_time is within [start, end).
func (j *SQLiteJournal) ListTradesClosedBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT position_id, symbol, sector, side, shares, entry_price, exit_price, open_time, close_time, realized_pl, reason
		FROM trades
		WHERE close_time >= ? AND close_time < ?
		ORDER BY close_time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(
			&rec.PositionID,
			&rec.Symbol,
			&rec.Sector,
			&rec.Side,
			&rec.Shares,
			&rec.EntryPrice,
			&rec.ExitPrice,
			&rec.OpenTime,
			&rec.CloseTime,
			&rec.RealizedPL,
			&rec.Reason,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
