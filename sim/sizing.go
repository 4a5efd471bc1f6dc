package sim

// Sizer computes the size of a new position from current equity and the
// entry price. The sizing rule is pluggable; the original calibration is
// not fixed, so callers pick one of the rules below or supply their own.
type Sizer func(equity, price float64) float64

// FixedFraction risks a fixed fraction of current equity as notional:
// size = equity*fraction/price. This is the documented default rule.
func FixedFraction(fraction float64) Sizer {
	return func(equity, price float64) float64 {
		if price <= 0 || equity <= 0 {
			return 0
		}
		return equity * fraction / price
	}
}

// FixedUnits always trades the same number of contracts.
func FixedUnits(units float64) Sizer {
	return func(equity, price float64) float64 {
		return units
	}
}
