package tracker

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"uniswap-v3-backtester/internal/uniswap"
)

func TestNewILTracker_RejectsZeroEntryTick(t *testing.T) {
	_, err := NewILTracker(0, decimal.NewFromInt(50), decimal.NewFromInt(50), -100, 100)
	if !errors.Is(err, uniswap.ErrZeroEntryTick) {
		t.Fatalf("Expected ErrZeroEntryTick, got %v", err)
	}
}

func TestILTracker_TrackIL(t *testing.T) {
	tracker, err := NewILTracker(1500, decimal.NewFromInt(50), decimal.NewFromInt(50), 1400, 1600)
	if err != nil {
		t.Fatalf("NewILTracker failed: %v", err)
	}
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// At the entry tick there is nothing lost yet.
	if err := tracker.TrackIL(base, 1500); err != nil {
		t.Fatalf("TrackIL failed: %v", err)
	}
	series := tracker.Series()
	if len(series) != 1 {
		t.Fatalf("Expected 1 sample, got %d", len(series))
	}
	if !series[0].Value.IsZero() {
		t.Errorf("Expected zero IL at entry tick, got %s", series[0].Value)
	}

	// Movement inside the range loses against holding.
	if err := tracker.TrackIL(base.Add(time.Minute), 1550); err != nil {
		t.Fatalf("TrackIL failed: %v", err)
	}
	series = tracker.Series()
	if !series[1].Value.IsNegative() {
		t.Errorf("Expected negative IL after movement, got %s", series[1].Value)
	}
}

func TestILTracker_ClampsOutOfRangeTicks(t *testing.T) {
	tracker, err := NewILTracker(1500, decimal.NewFromInt(50), decimal.NewFromInt(50), 1400, 1600)
	if err != nil {
		t.Fatalf("NewILTracker failed: %v", err)
	}
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// Far beyond the bounds clamps to the boundary tick.
	if err := tracker.TrackIL(base, 99999); err != nil {
		t.Fatalf("TrackIL failed: %v", err)
	}
	if err := tracker.TrackIL(base.Add(time.Minute), 1600); err != nil {
		t.Fatalf("TrackIL failed: %v", err)
	}

	series := tracker.Series()
	if !series[0].Value.Equal(series[1].Value) {
		t.Errorf("Expected clamped IL %s to equal boundary IL %s", series[0].Value, series[1].Value)
	}
}

func TestILTracker_RealizeIL(t *testing.T) {
	tracker, err := NewILTracker(1500, decimal.NewFromInt(50), decimal.NewFromInt(50), 1400, 1600)
	if err != nil {
		t.Fatalf("NewILTracker failed: %v", err)
	}
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// Without any unrealized sample nothing can be crystallized.
	tracker.RealizeIL(base, decimal.NewFromInt(20), decimal.NewFromInt(80))
	realized := tracker.RealizedSeries()
	if len(realized) != 1 || !realized[0].Value.IsZero() {
		t.Fatalf("Expected one zero realized sample, got %v", realized)
	}

	if err := tracker.TrackIL(base.Add(time.Minute), 1550); err != nil {
		t.Fatalf("TrackIL failed: %v", err)
	}
	fullIL := tracker.Series()[0].Value

	// A rebalance from a 0.2 composition back to the 0.5 entry
	// composition crystallizes the whole unrealized loss.
	tracker.RealizeIL(base.Add(time.Minute), decimal.NewFromInt(20), decimal.NewFromInt(80))
	realized = tracker.RealizedSeries()
	if len(realized) != 2 {
		t.Fatalf("Expected 2 realized samples, got %d", len(realized))
	}
	want := fullIL.Mul(decimal.NewFromInt(100))
	if !realized[1].Value.Equal(want) {
		t.Errorf("Expected realized IL %s, got %s", want, realized[1].Value)
	}

	// A rebalance that keeps the entry composition realizes nothing.
	tracker.RealizeIL(base.Add(2*time.Minute), decimal.NewFromInt(50), decimal.NewFromInt(50))
	realized = tracker.RealizedSeries()
	if !realized[2].Value.IsZero() {
		t.Errorf("Expected zero realized IL at entry composition, got %s", realized[2].Value)
	}
}
