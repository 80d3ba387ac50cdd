package tracker

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"uniswap-v3-backtester/internal/domain"
)

func feeSwap(volume0, volume1 string, ts time.Time) *domain.Swap {
	return &domain.Swap{
		PoolAddress:  "0xpool",
		Tick:         1500,
		VolumeToken0: decimal.RequireFromString(volume0),
		VolumeToken1: decimal.RequireFromString(volume1),
		Liquidity:    decimal.NewFromInt(900),
		SqrtPriceX96: decimal.NewFromInt(1),
		Timestamp:    ts,
	}
}

func TestComputeFee_Token0Inbound(t *testing.T) {
	pos := testPosition(1400, 1600)
	pos.Liquidity = decimal.NewFromInt(100) // 10% share of 1000 total

	fee := ComputeFee(pos, feeSwap("1000", "-500", time.Now()))

	// 0.1 share of 1000 * 0.003 gross.
	if !fee.Token0.Equal(decimal.RequireFromString("0.3")) {
		t.Errorf("Expected token0 fee 0.3, got %s", fee.Token0)
	}
	if !fee.Token1.IsZero() {
		t.Errorf("Expected zero token1 fee, got %s", fee.Token1)
	}
}

func TestComputeFee_Token1Inbound(t *testing.T) {
	pos := testPosition(1400, 1600)
	pos.Liquidity = decimal.NewFromInt(100)

	fee := ComputeFee(pos, feeSwap("-1000", "500", time.Now()))

	if !fee.Token0.IsZero() {
		t.Errorf("Expected zero token0 fee, got %s", fee.Token0)
	}
	if !fee.Token1.Equal(decimal.RequireFromString("0.15")) {
		t.Errorf("Expected token1 fee 0.15, got %s", fee.Token1)
	}
}

func TestComputeFee_AmbiguousDirection(t *testing.T) {
	pos := testPosition(1400, 1600)

	// Both positive, both negative and both zero are all ambiguous.
	for _, volumes := range [][2]string{{"100", "100"}, {"-100", "-100"}, {"0", "0"}, {"100", "0"}} {
		fee := ComputeFee(pos, feeSwap(volumes[0], volumes[1], time.Now()))
		if !fee.Token0.IsZero() || !fee.Token1.IsZero() {
			t.Errorf("Expected zero fee for volumes %v, got %s / %s", volumes, fee.Token0, fee.Token1)
		}
	}
}

func TestComputeFee_ZeroTotalLiquidity(t *testing.T) {
	pos := testPosition(1400, 1600)
	pos.Liquidity = decimal.Zero

	swap := feeSwap("1000", "-500", time.Now())
	swap.Liquidity = decimal.Zero

	fee := ComputeFee(pos, swap)
	if !fee.IsZero() {
		t.Errorf("Expected zero fee without liquidity, got %s / %s", fee.Token0, fee.Token1)
	}
}

func TestFeeTracker_SeriesAlwaysAppends(t *testing.T) {
	pos := testPosition(1400, 1600)
	pos.Liquidity = decimal.NewFromInt(100)
	tracker := NewFeeTracker()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tracker.Track(pos, feeSwap("1000", "-500", base), true)
	tracker.Track(pos, feeSwap("1000", "-500", base.Add(time.Minute)), false)
	tracker.Track(pos, feeSwap("1000", "-500", base.Add(2*time.Minute)), true)

	series := tracker.Series()
	if len(series) != 3 {
		t.Fatalf("Expected 3 fee samples, got %d", len(series))
	}
	if !series[1].Fee.IsZero() {
		t.Errorf("Expected zero fee sample while inactive, got %s", series[1].Fee.Token0)
	}

	// Totals only count active swaps.
	total := tracker.Total()
	if !total.Token0.Equal(decimal.RequireFromString("0.6")) {
		t.Errorf("Expected total token0 fee 0.6, got %s", total.Token0)
	}
	if !total.Token1.IsZero() {
		t.Errorf("Expected zero total token1 fee, got %s", total.Token1)
	}
}

func TestFeeTracker_AllInactive(t *testing.T) {
	pos := testPosition(1400, 1600)
	tracker := NewFeeTracker()

	tracker.Track(pos, feeSwap("1000", "-500", time.Now()), false)
	tracker.Track(pos, feeSwap("-1000", "500", time.Now()), false)

	if !tracker.Total().IsZero() {
		t.Error("Expected zero totals when never active")
	}
	if len(tracker.Series()) != 2 {
		t.Errorf("Expected 2 samples, got %d", len(tracker.Series()))
	}
}
