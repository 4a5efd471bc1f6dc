package sim

import (
	"fmt"
	"time"
)

// State of the book: flat or holding one open position.
type State int8

const (
	Flat State = iota
	HoldingLong
	HoldingShort
)

func (s State) String() string {
	switch s {
	case HoldingLong:
		return "LONG"
	case HoldingShort:
		return "SHORT"
	}
	return "FLAT"
}

// Book owns the position state machine for one account. At most one
// position is open at any time (no pyramiding); transitions are
// Open (FLAT→LONG/SHORT) and Close (LONG/SHORT→FLAT). Whether a close
// is discretionary or a forced liquidation is the caller's concern; the
// transition itself is identical.
type Book struct {
	acct *Account
	pos  *Position
}

func NewBook(acct *Account) *Book {
	return &Book{acct: acct}
}

func (b *Book) Account() *Account { return b.acct }

func (b *Book) State() State {
	if b.pos == nil {
		return Flat
	}
	if b.pos.Side == Long {
		return HoldingLong
	}
	return HoldingShort
}

// Position returns a copy of the open position, or false when flat.
func (b *Book) Position() (Position, bool) {
	if b.pos == nil {
		return Position{}, false
	}
	return *b.pos, true
}

// MarkToMarket settles one day of P&L for the open position at price.
// No-op when flat.
func (b *Book) MarkToMarket(price float64) float64 {
	return b.acct.MarkToMarket(b.pos, price)
}

func (b *Book) Open(side Side, size, price float64, at time.Time) (Position, error) {
	if b.pos != nil {
		return Position{}, fmt.Errorf("open: position already open (%s)", b.pos.Side)
	}
	if side != Long && side != Short {
		return Position{}, fmt.Errorf("open: bad side %d", side)
	}
	if size <= 0 {
		return Position{}, fmt.Errorf("open: size must be positive, got %v", size)
	}

	b.pos = &Position{
		Side:     side,
		Size:     size,
		Entry:    price,
		OpenedAt: at,
	}
	return *b.pos, nil
}

// Close destroys the open position and sweeps the margin balance into
// cash. The returned Position carries the lifetime RealizedPL for the
// trade record. Equity is unchanged by the close itself; the final
// mark-to-market has already priced the position at the close price.
func (b *Book) Close() (Position, error) {
	if b.pos == nil {
		return Position{}, fmt.Errorf("close: no open position")
	}

	closed := *b.pos
	b.pos = nil
	b.acct.Settle()
	return closed, nil
}
