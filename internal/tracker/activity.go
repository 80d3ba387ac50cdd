// Package tracker implements the stateful per-position metric trackers:
// activity, fee accrual, impermanent loss and APR. Trackers never hold a
// mutable alias of the position; the runner threads position state in and
// writes recomputed values back.
package tracker

import (
	"github.com/shopspring/decimal"

	"uniswap-v3-backtester/internal/domain"
	"uniswap-v3-backtester/internal/uniswap"
)

// IsActive reports whether a tick lies within the position's bounds.
// Both bounds are inclusive: a position earns fees at its boundary ticks.
func IsActive(pos *domain.Position, tick int) bool {
	return pos.TickLower <= tick && tick <= pos.TickUpper
}

// ActivityTracker records per-swap activity and the token amounts implied
// by the position's liquidity at each swap tick.
type ActivityTracker struct {
	activity []domain.ActivityPoint
	amounts  []domain.BalancePoint
}

// NewActivityTracker creates an empty activity tracker.
func NewActivityTracker() *ActivityTracker {
	return &ActivityTracker{}
}

// Track recomputes the position's activity status and token amounts for
// a swap. It appends one sample to each series and returns the activity
// flag plus the recomputed amounts; the caller owns writing the amounts
// back into the position.
func (t *ActivityTracker) Track(pos *domain.Position, swap *domain.Swap) (bool, decimal.Decimal, decimal.Decimal) {
	active := IsActive(pos, swap.Tick)
	amount0, amount1 := uniswap.TokenAmountsFromLiquidity(
		pos.TickLower, pos.TickUpper, pos.Liquidity, swap.Tick,
	)

	t.activity = append(t.activity, domain.ActivityPoint{
		Timestamp: swap.Timestamp,
		Active:    active,
	})
	t.amounts = append(t.amounts, domain.BalancePoint{
		Timestamp: swap.Timestamp,
		Amount0:   amount0,
		Amount1:   amount1,
	})

	return active, amount0, amount1
}

// Series returns the recorded activity samples.
func (t *ActivityTracker) Series() []domain.ActivityPoint {
	return t.activity
}

// Amounts returns the recorded token amount samples.
func (t *ActivityTracker) Amounts() []domain.BalancePoint {
	return t.amounts
}
