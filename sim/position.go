package sim

import "time"

// Side: +1 long, -1 short
type Side int8

const (
	Long  Side = +1
	Short Side = -1
)

func (s Side) String() string {
	switch s {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	}
	return "FLAT"
}

// Position is the single open contract owned by a Book. Entry is reset to
// the mark price on every mark-to-market, so each day's P&L is computed
// against the previous settlement, not the original fill. RealizedPL
// accumulates those daily settlements over the position's lifetime.
type Position struct {
	Side       Side
	Size       float64
	Entry      float64
	OpenedAt   time.Time
	RealizedPL float64
}
