package tracker

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"uniswap-v3-backtester/internal/domain"
)

func testPool() *domain.Pool {
	return &domain.Pool{
		Address: "0xpool",
		Token0:  "usdc",
		Token1:  "weth",
		FeeRate: decimal.RequireFromString("0.003"),
	}
}

func testPosition(lower, upper int) *domain.Position {
	return &domain.Position{
		TickLower: lower,
		TickUpper: upper,
		Amount0:   decimal.NewFromInt(100),
		Amount1:   decimal.NewFromInt(100),
		Liquidity: decimal.NewFromInt(1000000),
		Pool:      testPool(),
	}
}

func testSwap(tick int, ts time.Time) *domain.Swap {
	return &domain.Swap{
		PoolAddress:  "0xpool",
		TxHash:       "0xtx",
		LogIndex:     0,
		Tick:         tick,
		VolumeToken0: decimal.NewFromInt(1000),
		VolumeToken1: decimal.NewFromInt(-500),
		Liquidity:    decimal.NewFromInt(9000000),
		SqrtPriceX96: decimal.NewFromInt(1),
		Timestamp:    ts,
	}
}

func TestIsActive_BoundsInclusive(t *testing.T) {
	pos := testPosition(1400, 1600)

	cases := []struct {
		tick   int
		active bool
	}{
		{1399, false},
		{1400, true},
		{1500, true},
		{1600, true},
		{1601, false},
	}
	for _, c := range cases {
		if got := IsActive(pos, c.tick); got != c.active {
			t.Errorf("IsActive at tick %d: expected %v, got %v", c.tick, c.active, got)
		}
	}
}

func TestActivityTracker_RecordsSeriesAndAmounts(t *testing.T) {
	pos := testPosition(1400, 1600)
	tracker := NewActivityTracker()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	active, amount0, amount1 := tracker.Track(pos, testSwap(1500, base))
	if !active {
		t.Error("Expected active at tick 1500")
	}
	if !amount0.IsPositive() || !amount1.IsPositive() {
		t.Errorf("Expected both amounts positive in range, got %s / %s", amount0, amount1)
	}

	// The tracker never mutates the position itself.
	if !pos.Amount0.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Tracker mutated position amount0: %s", pos.Amount0)
	}

	active, amount0, _ = tracker.Track(pos, testSwap(1700, base.Add(time.Minute)))
	if active {
		t.Error("Expected inactive at tick 1700")
	}
	if !amount0.IsZero() {
		t.Errorf("Expected zero token0 above range, got %s", amount0)
	}

	series := tracker.Series()
	if len(series) != 2 {
		t.Fatalf("Expected 2 activity samples, got %d", len(series))
	}
	if !series[0].Active || series[1].Active {
		t.Error("Activity series out of order")
	}

	amounts := tracker.Amounts()
	if len(amounts) != 2 {
		t.Fatalf("Expected 2 amount samples, got %d", len(amounts))
	}
	if !amounts[0].Timestamp.Equal(base) {
		t.Errorf("Expected first sample at %v, got %v", base, amounts[0].Timestamp)
	}
}
