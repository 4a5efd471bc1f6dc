package signal

import "time"

// Pred values produced by the upstream model.
const (
	PredDown = 0
	PredUp   = 1
)

// Tick is one trading day of model output: the settlement price, the
// discrete direction call and the probability of the up class. Proba is
// always the up-class probability, regardless of Pred.
type Tick struct {
	Time  time.Time
	Price float64
	Pred  int
	Proba float64
}
