package tracker

import (
	"time"

	"github.com/shopspring/decimal"

	"uniswap-v3-backtester/internal/domain"
	"uniswap-v3-backtester/internal/uniswap"
)

// ILTracker records unrealized and realized impermanent loss for a
// position relative to its entry state. The entry bounds are fixed at
// construction; unrealized IL is always evaluated within them, with
// out-of-range ticks clamped to the nearest boundary.
type ILTracker struct {
	entryTick  int
	entryRatio decimal.Decimal
	tickLower  int
	tickUpper  int

	ilSeries       []domain.SeriesPoint
	realizedSeries []domain.SeriesPoint
}

// NewILTracker creates an IL tracker for a position entered at entryTick
// with the given token amounts and bounds. An entry tick of 0 makes the
// IL formula divide by zero and is rejected as a configuration error.
func NewILTracker(entryTick int, entryToken0, entryToken1 decimal.Decimal, tickLower, tickUpper int) (*ILTracker, error) {
	if entryTick == 0 {
		return nil, uniswap.ErrZeroEntryTick
	}

	entryRatio := decimal.New(5, -1) // 0.5 when the entry amounts are empty
	total := entryToken0.Add(entryToken1)
	if total.IsPositive() {
		entryRatio = entryToken0.DivRound(total, uniswap.Precision)
	}

	return &ILTracker{
		entryTick:  entryTick,
		entryRatio: entryRatio,
		tickLower:  tickLower,
		tickUpper:  tickUpper,
	}, nil
}

// TrackIL appends one unrealized IL sample for the tick observed at
// timestamp. Ticks outside the entry bounds are clamped to the boundary.
func (t *ILTracker) TrackIL(timestamp time.Time, currentTick int) error {
	clamped := currentTick
	if clamped < t.tickLower {
		clamped = t.tickLower
	} else if clamped > t.tickUpper {
		clamped = t.tickUpper
	}

	il, err := uniswap.ImpermanentLoss(clamped, t.entryTick, t.tickLower, t.tickUpper)
	if err != nil {
		return err
	}

	t.ilSeries = append(t.ilSeries, domain.SeriesPoint{Timestamp: timestamp, Value: il})
	return nil
}

// RealizeIL appends one realized IL sample for a composition-changing
// event that left the position holding newToken0/newToken1. The realized
// amount is the fraction of the latest unrealized IL crystallized by
// moving the token0 share back toward the entry composition.
func (t *ILTracker) RealizeIL(timestamp time.Time, newToken0, newToken1 decimal.Decimal) {
	currentRatio := decimal.New(5, -1)
	total := newToken0.Add(newToken1)
	if total.IsPositive() {
		currentRatio = newToken0.DivRound(total, uniswap.Precision)
	}

	fullIL := decimal.Zero
	if n := len(t.ilSeries); n > 0 {
		fullIL = t.ilSeries[n-1].Value
	}

	realized := uniswap.RealizedIL(t.entryRatio, currentRatio, t.entryRatio, fullIL)
	t.realizedSeries = append(t.realizedSeries, domain.SeriesPoint{Timestamp: timestamp, Value: realized})
}

// Series returns the unrealized IL samples.
func (t *ILTracker) Series() []domain.SeriesPoint {
	return t.ilSeries
}

// RealizedSeries returns the realized IL samples.
func (t *ILTracker) RealizedSeries() []domain.SeriesPoint {
	return t.realizedSeries
}
