package journal

// Memory keeps all records in slices. Useful for tests and for callers
// that want to post-process a run without touching disk.
type Memory struct {
	Trades []TradeRecord
	Equity []EquitySnapshot
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) RecordTrade(t TradeRecord) error {
	m.Trades = append(m.Trades, t)
	return nil
}

func (m *Memory) RecordEquity(e EquitySnapshot) error {
	m.Equity = append(m.Equity, e)
	return nil
}

func (m *Memory) Close() error { return nil }
