package sim

// Account tracks the cash and margin balances for a single-position
// futures account, plus a risk-free reference value that compounds in
// parallel as the benchmark.
//
// Equity = Cash + MarginBalance. MarginBalance is zero whenever no
// position is open; while one is open it absorbs the daily
// mark-to-market settlements until the position is closed and the
// balance is swept back into Cash.
type Account struct {
	Cash          float64
	MarginBalance float64
	RiskFree      float64
}

func NewAccount(initial float64) *Account {
	return &Account{
		Cash:     initial,
		RiskFree: initial,
	}
}

func (a *Account) Equity() float64 {
	return a.Cash + a.MarginBalance
}

// GrowRiskFree compounds idle cash and the benchmark reference by one
// day of the risk-free rate. Runs every tick regardless of position
// state; this is the cost-of-capital baseline.
func (a *Account) GrowRiskFree(rate float64) {
	a.Cash *= 1 + rate
	a.RiskFree *= 1 + rate
}

// MarkToMarket settles one day of P&L for p at the given price into the
// margin balance and re-anchors the position's entry at that price.
// Returns the day's P&L (zero for a nil position).
func (a *Account) MarkToMarket(p *Position, price float64) float64 {
	if p == nil {
		return 0
	}
	pnl := p.Size * (price - p.Entry) * float64(p.Side)
	a.MarginBalance += pnl
	p.RealizedPL += pnl
	p.Entry = price
	return pnl
}

// Settle sweeps the margin balance back into cash. Called by the Book
// when a position is closed or liquidated; equity is unchanged.
func (a *Account) Settle() {
	a.Cash += a.MarginBalance
	a.MarginBalance = 0
}
