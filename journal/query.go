package journal

import (
	"database/sql"
	"fmt"
)

const tradeCols = `trade_id, action, side, time, price, size, realized_pl, reason`

// GetTrade returns a single trade record by ID.
func (j *SQLiteJournal) GetTrade(tradeID string) (TradeRecord, error) {
	row := j.db.QueryRow(`
		SELECT `+tradeCols+`
		FROM trades
		WHERE trade_id = ?`, tradeID)

	rec, err := scanTrade(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return TradeRecord{}, fmt.Errorf("trade %q not found", tradeID)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

// ListTrades returns all trade records in time order.
func (j *SQLiteJournal) ListTrades() ([]TradeRecord, error) {
	return j.listTrades(`
		SELECT ` + tradeCols + `
		FROM trades
		ORDER BY time ASC, trade_id ASC`)
}

// ListTradesByAction returns records of one action type (OPEN, CLOSE,
// LIQUIDATE) in time order.
func (j *SQLiteJournal) ListTradesByAction(action Action) ([]TradeRecord, error) {
	return j.listTrades(`
		SELECT `+tradeCols+`
		FROM trades
		WHERE action = ?
		ORDER BY time ASC, trade_id ASC`, string(action))
}

func (j *SQLiteJournal) listTrades(query string, args ...any) ([]TradeRecord, error) {
	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquity returns the full journaled equity curve in time order.
func (j *SQLiteJournal) ListEquity() ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT time, cash, margin_balance, equity, risk_free
		FROM equity
		ORDER BY time ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var rec EquitySnapshot
		if err := rows.Scan(
			&rec.Time,
			&rec.Cash,
			&rec.MarginBalance,
			&rec.Equity,
			&rec.RiskFree,
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrade(r rowScanner) (TradeRecord, error) {
	var rec TradeRecord
	var action string
	err := r.Scan(
		&rec.TradeID,
		&action,
		&rec.Side,
		&rec.Time,
		&rec.Price,
		&rec.Size,
		&rec.RealizedPL,
		&rec.Reason,
	)
	rec.Action = Action(action)
	return rec, err
}
