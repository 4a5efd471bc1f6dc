package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMarkToMarket(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		side    Side
		size    float64
		entry   float64
		price   float64
		wantPnL float64
	}{
		{name: "long_up", side: Long, size: 10, entry: 100, price: 105, wantPnL: 50},
		{name: "long_down", side: Long, size: 10, entry: 100, price: 95, wantPnL: -50},
		{name: "short_up", side: Short, size: 10, entry: 100, price: 105, wantPnL: -50},
		{name: "short_down", side: Short, size: 10, entry: 100, price: 95, wantPnL: 50},
		{name: "flat_price", side: Long, size: 10, entry: 100, price: 100, wantPnL: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := NewAccount(1000)
			p := &Position{Side: tt.side, Size: tt.size, Entry: tt.entry}

			got := a.MarkToMarket(p, tt.price)
			assert.InDelta(t, tt.wantPnL, got, 1e-9)
			assert.InDelta(t, tt.wantPnL, a.MarginBalance, 1e-9)
			assert.InDelta(t, 1000+tt.wantPnL, a.Equity(), 1e-9)

			// entry re-anchored at the mark price
			assert.Equal(t, tt.price, p.Entry)
		})
	}
}

func TestMarkToMarketDailyPnLIsAdditive(t *testing.T) {
	t.Parallel()

	a := NewAccount(1000)
	p := &Position{Side: Long, Size: 1, Entry: 100}

	// 100 -> 110 -> 105: each day settles against the previous mark,
	// not the original entry.
	assert.InDelta(t, 10, a.MarkToMarket(p, 110), 1e-9)
	assert.InDelta(t, -5, a.MarkToMarket(p, 105), 1e-9)

	assert.InDelta(t, 5, a.MarginBalance, 1e-9)
	assert.InDelta(t, 5, p.RealizedPL, 1e-9)
	assert.Equal(t, 105.0, p.Entry)
}

func TestMarkToMarketNilPosition(t *testing.T) {
	t.Parallel()

	a := NewAccount(1000)
	assert.Zero(t, a.MarkToMarket(nil, 123))
	assert.Zero(t, a.MarginBalance)
}

func TestGrowRiskFree(t *testing.T) {
	t.Parallel()

	a := NewAccount(1000)
	a.GrowRiskFree(0.01)
	a.GrowRiskFree(0.01)

	want := 1000 * 1.01 * 1.01
	assert.InDelta(t, want, a.Cash, 1e-9)
	assert.InDelta(t, want, a.RiskFree, 1e-9)
}

func TestGrowRiskFreeDoesNotTouchMargin(t *testing.T) {
	t.Parallel()

	a := NewAccount(1000)
	a.MarginBalance = 50
	a.GrowRiskFree(0.10)

	assert.InDelta(t, 1100, a.Cash, 1e-9)
	assert.InDelta(t, 50, a.MarginBalance, 1e-9)
}

func TestSettleSweepsMarginIntoCash(t *testing.T) {
	t.Parallel()

	a := NewAccount(1000)
	p := &Position{Side: Long, Size: 2, Entry: 100, OpenedAt: time.Now()}
	a.MarkToMarket(p, 110)

	before := a.Equity()
	a.Settle()

	assert.Zero(t, a.MarginBalance)
	assert.InDelta(t, before, a.Equity(), 1e-9)
	assert.InDelta(t, 1020, a.Cash, 1e-9)
}
