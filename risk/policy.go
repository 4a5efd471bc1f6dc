package risk

import "fmt"

// Policy is the loss-limit circuit breaker: an absolute floor on total
// capital relative to the starting balance, not a trailing stop. A
// breach forces liquidation before any signal-driven decision on the
// same tick.
type Policy struct {
	// LossLimitFraction is negative: -0.10 means liquidate once equity
	// has lost 10% of the initial portfolio value.
	LossLimitFraction float64
}

func (p Policy) Validate() error {
	if p.LossLimitFraction >= 0 {
		return fmt.Errorf("risk: loss_limit_fraction must be negative, got %v", p.LossLimitFraction)
	}
	if p.LossLimitFraction <= -1 {
		return fmt.Errorf("risk: loss_limit_fraction must be greater than -1, got %v", p.LossLimitFraction)
	}
	return nil
}

// Floor is the equity level at which the policy fires.
func (p Policy) Floor(initial float64) float64 {
	return initial * (1 + p.LossLimitFraction)
}

// Breached reports whether equity has fallen to or below the floor.
// Equity exactly at the floor counts as a breach.
func (p Policy) Breached(equity, initial float64) bool {
	return equity <= p.Floor(initial)
}
