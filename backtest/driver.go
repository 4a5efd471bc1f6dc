package backtest

import (
	"fmt"
	"time"

	"github.com/rustyeddy/futsim/journal"
	"github.com/rustyeddy/futsim/pkg/id"
	"github.com/rustyeddy/futsim/risk"
	"github.com/rustyeddy/futsim/signal"
	"github.com/rustyeddy/futsim/sim"
)

// Config controls one backtest run.
type Config struct {
	// InitialValue is the starting portfolio value (cash, no position).
	InitialValue float64

	// ConfidenceThreshold gates new entries: a long needs proba >=
	// threshold, a short needs (1-proba) >= threshold. In (0, 1).
	ConfidenceThreshold float64

	// LossLimitFraction is the negative loss floor passed to the risk
	// policy, e.g. -0.10 for a 10% floor below the initial value.
	LossLimitFraction float64

	// DailyRiskFreeRate compounds idle cash and the benchmark every
	// tick. Must be >= 0.
	DailyRiskFreeRate float64

	// Sizer picks the size of a new position. Defaults to
	// sim.FixedFraction(1.0) (full current equity as notional).
	Sizer sim.Sizer

	// CloseAtEnd force-closes a position still open after the final
	// tick, so metrics see only settled cash. Off by default; the final
	// mark-to-market has already priced the position, so the equity
	// curve is identical either way.
	CloseAtEnd bool
}

func (c Config) Validate() error {
	if c.InitialValue <= 0 {
		return fmt.Errorf("backtest: initial_value must be positive, got %v", c.InitialValue)
	}
	if c.ConfidenceThreshold <= 0 || c.ConfidenceThreshold >= 1 {
		return fmt.Errorf("backtest: confidence_threshold must be in (0,1), got %v", c.ConfidenceThreshold)
	}
	if c.DailyRiskFreeRate < 0 {
		return fmt.Errorf("backtest: daily_risk_free_rate must be >= 0, got %v", c.DailyRiskFreeRate)
	}
	return risk.Policy{LossLimitFraction: c.LossLimitFraction}.Validate()
}

// EquityPoint is one tick of the realized equity curve.
type EquityPoint struct {
	Time   time.Time
	Equity float64
}

// Result of a run: the strategy equity curve, the parallel risk-free
// benchmark curve (same length), the ordered trade log and a small
// summary.
type Result struct {
	Equity    []EquityPoint
	Benchmark []EquityPoint
	Trades    []journal.TradeRecord

	Start time.Time
	End   time.Time

	FinalEquity    float64
	FinalBenchmark float64

	Wins   int
	Losses int
}

// EquityValues strips timestamps for the metrics engine.
func (r Result) EquityValues() []float64 {
	return values(r.Equity)
}

func (r Result) BenchmarkValues() []float64 {
	return values(r.Benchmark)
}

func values(pts []EquityPoint) []float64 {
	out := make([]float64, len(pts))
	for i, p := range pts {
		out[i] = p.Equity
	}
	return out
}

// Driver replays a signal series through the position state machine.
// Each Run builds its own account and book, so drivers can be run in
// parallel across parameter sweeps; the optional Journal receives every
// trade and equity snapshot as they happen.
type Driver struct {
	Config  Config
	Journal journal.Journal
}

// Run executes the backtest. Per tick, strictly in order:
//
//  1. compound the risk-free reference and idle cash
//  2. holding: mark-to-market, then the loss-limit check — on breach,
//     liquidate and skip everything else this tick
//  3. holding: close on signal reversal (threshold-independent)
//  4. flat, and no transition yet this tick: open on a confident signal
//
// At most one open/close/liquidate transition happens per tick, so a
// freshly opened position can never be closed on the tick that opened
// it. One equity point is appended per tick, after the transition.
//
// A malformed series fails fast with a *signal.MalformedTickError; no
// partial result is returned.
func (d *Driver) Run(series signal.Series) (Result, error) {
	cfg := d.Config
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if err := series.Validate(); err != nil {
		return Result{}, err
	}

	sizer := cfg.Sizer
	if sizer == nil {
		sizer = sim.FixedFraction(1.0)
	}
	jnl := d.Journal
	if jnl == nil {
		jnl = journal.Nop{}
	}
	policy := risk.Policy{LossLimitFraction: cfg.LossLimitFraction}

	acct := sim.NewAccount(cfg.InitialValue)
	book := sim.NewBook(acct)

	res := Result{
		Equity:    make([]EquityPoint, 0, len(series)),
		Benchmark: make([]EquityPoint, 0, len(series)),
		Start:     series[0].Time,
		End:       series[len(series)-1].Time,
	}

	for _, tk := range series {
		acct.GrowRiskFree(cfg.DailyRiskFreeRate)

		acted := false
		if book.State() != sim.Flat {
			book.MarkToMarket(tk.Price)

			switch {
			case policy.Breached(acct.Equity(), cfg.InitialValue):
				if err := d.close(&res, jnl, book, tk, journal.ActionLiquidate, journal.ReasonLossLimit); err != nil {
					return Result{}, err
				}
				acted = true

			case reversed(book.State(), tk.Pred):
				if err := d.close(&res, jnl, book, tk, journal.ActionClose, journal.ReasonSignal); err != nil {
					return Result{}, err
				}
				acted = true
			}
		}

		if !acted && book.State() == sim.Flat {
			if side, ok := entrySide(tk, cfg.ConfidenceThreshold); ok {
				size := sizer(acct.Equity(), tk.Price)
				if size > 0 {
					pos, err := book.Open(side, size, tk.Price, tk.Time)
					if err != nil {
						return Result{}, err
					}
					if err := d.record(&res, jnl, journal.TradeRecord{
						TradeID: id.New(),
						Action:  journal.ActionOpen,
						Side:    pos.Side.String(),
						Time:    tk.Time,
						Price:   tk.Price,
						Size:    pos.Size,
					}); err != nil {
						return Result{}, err
					}
				}
			}
		}

		eq := journal.EquitySnapshot{
			Time:          tk.Time,
			Cash:          acct.Cash,
			MarginBalance: acct.MarginBalance,
			Equity:        acct.Equity(),
			RiskFree:      acct.RiskFree,
		}
		if err := jnl.RecordEquity(eq); err != nil {
			return Result{}, err
		}
		res.Equity = append(res.Equity, EquityPoint{Time: tk.Time, Equity: eq.Equity})
		res.Benchmark = append(res.Benchmark, EquityPoint{Time: tk.Time, Equity: eq.RiskFree})
	}

	if cfg.CloseAtEnd && book.State() != sim.Flat {
		last := series[len(series)-1]
		if err := d.close(&res, jnl, book, last, journal.ActionClose, journal.ReasonEndOfData); err != nil {
			return Result{}, err
		}
	}

	res.FinalEquity = acct.Equity()
	res.FinalBenchmark = acct.RiskFree
	return res, nil
}

func (d *Driver) close(res *Result, jnl journal.Journal, book *sim.Book, tk signal.Tick, action journal.Action, reason string) error {
	closed, err := book.Close()
	if err != nil {
		return err
	}

	if closed.RealizedPL > 0 {
		res.Wins++
	} else if closed.RealizedPL < 0 {
		res.Losses++
	}

	return d.record(res, jnl, journal.TradeRecord{
		TradeID:    id.New(),
		Action:     action,
		Side:       closed.Side.String(),
		Time:       tk.Time,
		Price:      tk.Price,
		Size:       closed.Size,
		RealizedPL: closed.RealizedPL,
		Reason:     reason,
	})
}

func (d *Driver) record(res *Result, jnl journal.Journal, rec journal.TradeRecord) error {
	if err := jnl.RecordTrade(rec); err != nil {
		return err
	}
	res.Trades = append(res.Trades, rec)
	return nil
}

// reversed reports whether the discrete prediction opposes the held
// side. Any opposite call closes, independent of the threshold.
func reversed(state sim.State, pred int) bool {
	return (state == sim.HoldingLong && pred == signal.PredDown) ||
		(state == sim.HoldingShort && pred == signal.PredUp)
}

func entrySide(tk signal.Tick, threshold float64) (sim.Side, bool) {
	if tk.Pred == signal.PredUp && tk.Proba >= threshold {
		return sim.Long, true
	}
	if tk.Pred == signal.PredDown && (1-tk.Proba) >= threshold {
		return sim.Short, true
	}
	return 0, false
}
