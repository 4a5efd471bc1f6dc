package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/futsim/journal"
	"github.com/rustyeddy/futsim/signal"
	"github.com/rustyeddy/futsim/sim"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

type row struct {
	price float64
	pred  int
	proba float64
}

func mkSeries(rows []row) signal.Series {
	s := make(signal.Series, len(rows))
	for i, r := range rows {
		s[i] = signal.Tick{Time: day(i), Price: r.price, Pred: r.pred, Proba: r.proba}
	}
	return s
}

func baseConfig() Config {
	return Config{
		InitialValue:        100_000,
		ConfidenceThreshold: 0.7,
		LossLimitFraction:   -0.5,
		DailyRiskFreeRate:   0,
		Sizer:               sim.FixedUnits(1000),
	}
}

// Scenario A: constant price, always-up prediction above threshold.
// One long opens on the first tick, never closes, P&L stays at zero.
func TestRunConstantPriceOpensOnceAndHolds(t *testing.T) {
	t.Parallel()

	series := signal.Constant(10, day(0), 100, signal.PredUp, 0.9)
	d := &Driver{Config: baseConfig()}

	res, err := d.Run(series)
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	assert.Equal(t, journal.ActionOpen, res.Trades[0].Action)
	assert.Equal(t, "LONG", res.Trades[0].Side)
	assert.Equal(t, day(0), res.Trades[0].Time)

	for _, pt := range res.Equity {
		assert.InDelta(t, 100_000, pt.Equity, 1e-9)
	}
	assert.InDelta(t, 100_000, res.FinalEquity, 1e-9)
}

// Scenario B: mark-to-market drives equity exactly onto the loss floor;
// the risk monitor fires and liquidates.
func TestRunLiquidatesAtLossFloor(t *testing.T) {
	t.Parallel()

	series := mkSeries([]row{
		{price: 100, pred: 1, proba: 0.9}, // open long 1000 units
		{price: 50, pred: 1, proba: 0.9},  // pnl -50000 -> equity 50000 == floor
		{price: 50, pred: 1, proba: 0.9},
	})
	d := &Driver{Config: baseConfig()}

	res, err := d.Run(series)
	require.NoError(t, err)

	require.Len(t, res.Trades, 3)
	assert.Equal(t, journal.ActionOpen, res.Trades[0].Action)

	liq := res.Trades[1]
	assert.Equal(t, journal.ActionLiquidate, liq.Action)
	assert.Equal(t, journal.ReasonLossLimit, liq.Reason)
	assert.Equal(t, day(1), liq.Time)
	assert.InDelta(t, -50_000, liq.RealizedPL, 1e-9)

	// the liquidation tick took its one transition; the book is flat
	// again and the confident up-signal on tick 3 reopens.
	assert.Equal(t, journal.ActionOpen, res.Trades[2].Action)
	assert.Equal(t, day(2), res.Trades[2].Time)

	assert.InDelta(t, 50_000, res.Equity[1].Equity, 1e-9)
	assert.Equal(t, 1, res.Losses)
}

// Liquidation takes precedence over a same-tick signal-reversal close.
func TestRunLiquidationPrecedesSignalClose(t *testing.T) {
	t.Parallel()

	series := mkSeries([]row{
		{price: 100, pred: 1, proba: 0.9},
		// both the loss floor and the reversal (pred=0) are hit here
		{price: 50, pred: 0, proba: 0.1},
	})
	d := &Driver{Config: baseConfig()}

	res, err := d.Run(series)
	require.NoError(t, err)

	require.Len(t, res.Trades, 2)
	assert.Equal(t, journal.ActionLiquidate, res.Trades[1].Action)
	assert.Equal(t, journal.ReasonLossLimit, res.Trades[1].Reason)
}

// Scenario C: alternating predictions produce alternating OPEN/CLOSE
// records, one transition every tick.
func TestRunAlternatingSignalAlternatesOpenClose(t *testing.T) {
	t.Parallel()

	series := mkSeries([]row{
		{price: 100, pred: 1, proba: 0.9},
		{price: 100, pred: 0, proba: 0.9},
		{price: 100, pred: 1, proba: 0.9},
		{price: 100, pred: 0, proba: 0.9},
		{price: 100, pred: 1, proba: 0.9},
		{price: 100, pred: 0, proba: 0.9},
	})
	d := &Driver{Config: baseConfig()}

	res, err := d.Run(series)
	require.NoError(t, err)

	require.Len(t, res.Trades, len(series))
	for i, tr := range res.Trades {
		if i%2 == 0 {
			assert.Equal(t, journal.ActionOpen, tr.Action, "trade %d", i)
			assert.Equal(t, "LONG", tr.Side, "trade %d", i)
		} else {
			assert.Equal(t, journal.ActionClose, tr.Action, "trade %d", i)
			assert.Equal(t, journal.ReasonSignal, tr.Reason, "trade %d", i)
		}
		assert.Equal(t, day(i), tr.Time, "trade %d", i)
	}
}

// A close consumes the tick's single transition: pred=0 with high
// down-confidence closes the long but does not open a short on the same
// tick; the short opens on the following tick.
func TestRunOneTransitionPerTick(t *testing.T) {
	t.Parallel()

	series := mkSeries([]row{
		{price: 100, pred: 1, proba: 0.9},
		{price: 100, pred: 0, proba: 0.05}, // reversal close; short would qualify too
		{price: 100, pred: 0, proba: 0.05},
	})
	d := &Driver{Config: baseConfig()}

	res, err := d.Run(series)
	require.NoError(t, err)

	require.Len(t, res.Trades, 3)
	assert.Equal(t, journal.ActionOpen, res.Trades[0].Action)
	assert.Equal(t, journal.ActionClose, res.Trades[1].Action)
	assert.Equal(t, journal.ActionOpen, res.Trades[2].Action)
	assert.Equal(t, "SHORT", res.Trades[2].Side)
	assert.Equal(t, day(2), res.Trades[2].Time)
}

func TestRunShortSideProfits(t *testing.T) {
	t.Parallel()

	series := mkSeries([]row{
		{price: 100, pred: 0, proba: 0.1}, // open short
		{price: 90, pred: 0, proba: 0.1},  // +10/unit
		{price: 90, pred: 1, proba: 0.9},  // reversal close
	})
	d := &Driver{Config: baseConfig()}

	res, err := d.Run(series)
	require.NoError(t, err)

	require.Len(t, res.Trades, 2)
	assert.Equal(t, "SHORT", res.Trades[0].Side)
	closeRec := res.Trades[1]
	assert.Equal(t, journal.ActionClose, closeRec.Action)
	assert.InDelta(t, 10_000, closeRec.RealizedPL, 1e-9)
	assert.Equal(t, 1, res.Wins)
	assert.InDelta(t, 110_000, res.FinalEquity, 1e-9)
}

func TestRunLowConfidenceStaysFlat(t *testing.T) {
	t.Parallel()

	series := mkSeries([]row{
		{price: 100, pred: 1, proba: 0.6},  // below 0.7
		{price: 100, pred: 0, proba: 0.35}, // 1-proba = 0.65 below 0.7
	})
	d := &Driver{Config: baseConfig()}

	res, err := d.Run(series)
	require.NoError(t, err)

	assert.Empty(t, res.Trades)
	assert.InDelta(t, 100_000, res.FinalEquity, 1e-9)
}

// Equity curve continuity: one point per tick, benchmark in lockstep.
func TestRunCurveContinuity(t *testing.T) {
	t.Parallel()

	series := mkSeries([]row{
		{price: 100, pred: 1, proba: 0.9},
		{price: 101, pred: 0, proba: 0.4},
		{price: 99, pred: 1, proba: 0.8},
		{price: 98, pred: 0, proba: 0.1},
	})
	cfg := baseConfig()
	cfg.DailyRiskFreeRate = 0.001
	d := &Driver{Config: cfg}

	res, err := d.Run(series)
	require.NoError(t, err)

	require.Len(t, res.Equity, len(series))
	require.Len(t, res.Benchmark, len(series))
	for i := range series {
		assert.Equal(t, series[i].Time, res.Equity[i].Time)
		assert.Equal(t, series[i].Time, res.Benchmark[i].Time)
	}

	// benchmark compounds every tick regardless of position state
	want := 100_000.0
	for i := range series {
		want *= 1.001
		assert.InDelta(t, want, res.Benchmark[i].Equity, 1e-6, "tick %d", i)
	}
}

// Replaying the same series and config yields an identical equity curve
// and trade log (trade IDs are fresh ULIDs each run and excluded).
func TestRunDeterministic(t *testing.T) {
	t.Parallel()

	series := mkSeries([]row{
		{price: 100, pred: 1, proba: 0.9},
		{price: 102, pred: 0, proba: 0.2},
		{price: 101, pred: 0, proba: 0.1},
		{price: 97, pred: 1, proba: 0.95},
		{price: 99, pred: 1, proba: 0.85},
	})
	cfg := baseConfig()
	cfg.DailyRiskFreeRate = 0.0005

	run := func() Result {
		d := &Driver{Config: cfg}
		res, err := d.Run(series)
		require.NoError(t, err)
		return res
	}

	a, b := run(), run()

	assert.Equal(t, a.Equity, b.Equity)
	assert.Equal(t, a.Benchmark, b.Benchmark)

	require.Len(t, b.Trades, len(a.Trades))
	for i := range a.Trades {
		ta, tb := a.Trades[i], b.Trades[i]
		ta.TradeID, tb.TradeID = "", ""
		assert.Equal(t, ta, tb, "trade %d", i)
	}
}

func TestRunCloseAtEnd(t *testing.T) {
	t.Parallel()

	series := signal.Constant(5, day(0), 100, signal.PredUp, 0.9)

	cfg := baseConfig()
	cfg.CloseAtEnd = true
	d := &Driver{Config: cfg}

	res, err := d.Run(series)
	require.NoError(t, err)

	require.Len(t, res.Trades, 2)
	last := res.Trades[1]
	assert.Equal(t, journal.ActionClose, last.Action)
	assert.Equal(t, journal.ReasonEndOfData, last.Reason)
	assert.Equal(t, day(4), last.Time)

	// settling at the last mark does not move equity
	assert.Len(t, res.Equity, len(series))
	assert.InDelta(t, res.Equity[len(res.Equity)-1].Equity, res.FinalEquity, 1e-9)
}

func TestRunRecordsToJournal(t *testing.T) {
	t.Parallel()

	series := mkSeries([]row{
		{price: 100, pred: 1, proba: 0.9},
		{price: 105, pred: 0, proba: 0.2},
	})
	mem := journal.NewMemory()
	d := &Driver{Config: baseConfig(), Journal: mem}

	res, err := d.Run(series)
	require.NoError(t, err)

	assert.Equal(t, res.Trades, mem.Trades)
	require.Len(t, mem.Equity, len(series))
	assert.InDelta(t, res.Equity[1].Equity, mem.Equity[1].Equity, 1e-9)
	assert.InDelta(t, res.Benchmark[1].Equity, mem.Equity[1].RiskFree, 1e-9)
}

func TestRunMalformedSeriesFailsFast(t *testing.T) {
	t.Parallel()

	series := signal.Series{
		{Time: day(0), Price: 100, Pred: 1, Proba: 0.9},
		{Time: day(1), Price: 100, Pred: 1, Proba: 1.7},
	}
	d := &Driver{Config: baseConfig()}

	_, err := d.Run(series)
	var merr *signal.MalformedTickError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, 1, merr.Index)
	assert.Equal(t, "proba", merr.Field)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		wantOK bool
	}{
		{name: "valid", mutate: func(c *Config) {}, wantOK: true},
		{name: "zero_initial", mutate: func(c *Config) { c.InitialValue = 0 }},
		{name: "threshold_zero", mutate: func(c *Config) { c.ConfidenceThreshold = 0 }},
		{name: "threshold_one", mutate: func(c *Config) { c.ConfidenceThreshold = 1 }},
		{name: "positive_loss_limit", mutate: func(c *Config) { c.LossLimitFraction = 0.1 }},
		{name: "negative_rf_rate", mutate: func(c *Config) { c.DailyRiskFreeRate = -0.01 }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := baseConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantOK {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
