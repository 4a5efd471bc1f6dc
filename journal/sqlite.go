package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteJournal persists the audit log to a local SQLite database so
// runs can be queried and re-reported after the fact.
type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, action, side, time, price, size, realized_pl, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, string(t.Action), t.Side, t.Time,
		t.Price, t.Size, t.RealizedPL, t.Reason,
	)
	return err
}

func (j *SQLiteJournal) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(time, cash, margin_balance, equity, risk_free)
		VALUES (?, ?, ?, ?, ?)`,
		e.Time, e.Cash, e.MarginBalance, e.Equity, e.RiskFree,
	)
	return err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
