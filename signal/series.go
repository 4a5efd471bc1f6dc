package signal

import (
	"fmt"
	"math"
	"time"
)

// Series is a chronologically ordered run of daily ticks. It is produced
// by an external model and consumed read-only by the backtest driver.
type Series []Tick

// MalformedTickError reports a tick that violates the series contract.
// The driver treats it as fatal: equity-curve correctness depends on an
// unbroken, strictly ordered series.
type MalformedTickError struct {
	Index int
	Field string
	Msg   string
}

func (e *MalformedTickError) Error() string {
	return fmt.Sprintf("malformed tick %d: %s: %s", e.Index, e.Field, e.Msg)
}

// Validate checks the series contract:
//   - at least one tick
//   - strictly increasing timestamps
//   - Price finite and > 0
//   - Proba within [0, 1]
//
// The first violation found is returned as a *MalformedTickError.
func (s Series) Validate() error {
	if len(s) == 0 {
		return &MalformedTickError{Index: 0, Field: "series", Msg: "empty series"}
	}

	var prev time.Time
	for i, tk := range s {
		if tk.Time.IsZero() {
			return &MalformedTickError{Index: i, Field: "time", Msg: "zero timestamp"}
		}
		if i > 0 && !tk.Time.After(prev) {
			return &MalformedTickError{
				Index: i,
				Field: "time",
				Msg:   fmt.Sprintf("%s not after %s", tk.Time.Format(time.RFC3339), prev.Format(time.RFC3339)),
			}
		}
		prev = tk.Time

		if math.IsNaN(tk.Price) || math.IsInf(tk.Price, 0) || tk.Price <= 0 {
			return &MalformedTickError{Index: i, Field: "price", Msg: fmt.Sprintf("invalid price %v", tk.Price)}
		}
		if tk.Pred != PredDown && tk.Pred != PredUp {
			return &MalformedTickError{Index: i, Field: "pred", Msg: fmt.Sprintf("pred %d not in {0,1}", tk.Pred)}
		}
		if math.IsNaN(tk.Proba) || tk.Proba < 0 || tk.Proba > 1 {
			return &MalformedTickError{Index: i, Field: "proba", Msg: fmt.Sprintf("proba %v outside [0,1]", tk.Proba)}
		}
	}
	return nil
}

// Constant builds an n-day series at a fixed price with the same
// prediction every day. Handy for tests and demos.
func Constant(n int, start time.Time, price float64, pred int, proba float64) Series {
	s := make(Series, n)
	for i := range s {
		s[i] = Tick{
			Time:  start.AddDate(0, 0, i),
			Price: price,
			Pred:  pred,
			Proba: proba,
		}
	}
	return s
}
