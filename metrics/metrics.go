// Package metrics computes standardized risk/return statistics from a
// realized equity curve and a matching benchmark curve. Every function
// here is pure: degenerate inputs (flat curves, zero variance, too few
// points) yield NaN for the affected ratio instead of an error, since a
// backtest that never trades is a valid empirical outcome.
package metrics

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// TradingDaysPerYear is the annualization base for daily observations.
const TradingDaysPerYear = 252

// Report holds the computed metrics for one curve. Any field may be NaN
// when its denominator degenerates; see the per-metric notes on Compute.
type Report struct {
	TotalReturn float64
	CAGR        float64
	Volatility  float64
	Sharpe      float64
	Sortino     float64
	MaxDrawdown float64
	Calmar      float64
	Beta        float64
}

// Compute derives the full report for an equity curve against its
// benchmark. The two curves must be the same length, one observation
// per trading day.
//
// Sentinels (all NaN): Volatility, Sharpe and Sortino with fewer than
// three observations or zero (downside) deviation; Calmar with zero
// drawdown; Beta with zero benchmark variance.
func Compute(equity, benchmark []float64) (Report, error) {
	if len(equity) != len(benchmark) {
		return Report{}, fmt.Errorf("metrics: curve length mismatch: %d vs %d", len(equity), len(benchmark))
	}
	if len(equity) < 2 {
		nan := math.NaN()
		return Report{
			TotalReturn: nan, CAGR: nan, Volatility: nan, Sharpe: nan,
			Sortino: nan, MaxDrawdown: nan, Calmar: nan, Beta: nan,
		}, nil
	}

	rets := Returns(equity)
	benchRets := Returns(benchmark)

	excess := make([]float64, len(rets))
	for i := range rets {
		excess[i] = rets[i] - benchRets[i]
	}

	n := float64(len(equity))
	total := equity[len(equity)-1]/equity[0] - 1
	cagr := math.Pow(equity[len(equity)-1]/equity[0], TradingDaysPerYear/n) - 1

	vol := Stdev(rets) * math.Sqrt(TradingDaysPerYear)

	sharpe := math.NaN()
	if sd := Stdev(rets); sd > 0 {
		sharpe = Mean(excess) / sd * math.Sqrt(TradingDaysPerYear)
	}

	sortino := math.NaN()
	if dd := DownsideDeviation(excess); dd > 0 {
		sortino = Mean(excess) / dd * math.Sqrt(TradingDaysPerYear)
	}

	maxDD := MaxDrawdown(equity)

	calmar := math.NaN()
	if maxDD != 0 {
		calmar = cagr / math.Abs(maxDD)
	}

	beta := math.NaN()
	if v := Variance(benchRets); v > 0 {
		beta = Covariance(rets, benchRets) / v
	}

	return Report{
		TotalReturn: total,
		CAGR:        cagr,
		Volatility:  vol,
		Sharpe:      sharpe,
		Sortino:     sortino,
		MaxDrawdown: maxDD,
		Calmar:      calmar,
		Beta:        beta,
	}, nil
}

// Map returns the report keyed by metric name, for serialization and
// side-by-side strategy/benchmark output.
func (r Report) Map() map[string]float64 {
	return map[string]float64{
		"total_return": r.TotalReturn,
		"cagr":         r.CAGR,
		"volatility":   r.Volatility,
		"sharpe":       r.Sharpe,
		"sortino":      r.Sortino,
		"max_drawdown": r.MaxDrawdown,
		"calmar":       r.Calmar,
		"beta":         r.Beta,
	}
}

func (r Report) String() string {
	m := r.Map()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %-14s %10.4f\n", k, m[k])
	}
	return sb.String()
}

// Returns converts an equity curve into simple daily returns
// (len(curve)-1 observations).
func Returns(curve []float64) []float64 {
	if len(curve) < 2 {
		return nil
	}
	out := make([]float64, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		out[i-1] = curve[i]/curve[i-1] - 1
	}
	return out
}

func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Variance is the sample variance (n-1 denominator).
func Variance(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	m := Mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / float64(len(xs)-1)
}

func Stdev(xs []float64) float64 {
	return math.Sqrt(Variance(xs))
}

// Covariance is the sample covariance of two equal-length series.
func Covariance(xs, ys []float64) float64 {
	if len(xs) != len(ys) || len(xs) < 2 {
		return math.NaN()
	}
	mx, my := Mean(xs), Mean(ys)
	sum := 0.0
	for i := range xs {
		sum += (xs[i] - mx) * (ys[i] - my)
	}
	return sum / float64(len(xs)-1)
}

// DownsideDeviation is the root-mean-square of the negative excess
// returns, with positive excess zero-filled. Zero when nothing is below
// target.
func DownsideDeviation(excess []float64) float64 {
	if len(excess) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, x := range excess {
		if x < 0 {
			sum += x * x
		}
	}
	return math.Sqrt(sum / float64(len(excess)))
}

// MaxDrawdown is the largest peak-to-trough decline of the curve,
// expressed as a non-positive fraction: min over t of
// curve[t]/runningMax(curve[0..t]) - 1.
func MaxDrawdown(curve []float64) float64 {
	if len(curve) == 0 {
		return math.NaN()
	}
	peak := curve[0]
	maxDD := 0.0
	for _, v := range curve {
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		dd := v/peak - 1
		if dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}
