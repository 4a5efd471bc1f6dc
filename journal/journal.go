package journal

import "time"

// Action describes what a trade record is: a fill opening a position, a
// discretionary close on signal reversal, or a forced liquidation.
type Action string

const (
	ActionOpen      Action = "OPEN"
	ActionClose     Action = "CLOSE"
	ActionLiquidate Action = "LIQUIDATE"
)

// Close reasons. Opens have no reason.
const (
	ReasonSignal    = "signal"
	ReasonLossLimit = "loss_limit"
	ReasonEndOfData = "end_of_data"
)

// TradeRecord is one immutable, append-only entry in the audit log.
// RealizedPL is zero for opens and the lifetime settled P&L for closes
// and liquidations.
type TradeRecord struct {
	TradeID    string
	Action     Action
	Side       string // "LONG" or "SHORT"
	Time       time.Time
	Price      float64
	Size       float64
	RealizedPL float64
	Reason     string
}

// EquitySnapshot is one point of the account state, recorded once per
// tick after all transitions for that tick have been applied.
type EquitySnapshot struct {
	Time          time.Time
	Cash          float64
	MarginBalance float64
	Equity        float64
	RiskFree      float64
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Nop discards everything. Used when a run only needs the in-memory
// result.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error     { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) Close() error                      { return nil }
