package tracker

import (
	"github.com/shopspring/decimal"

	"uniswap-v3-backtester/internal/domain"
	"uniswap-v3-backtester/internal/uniswap"
)

// ComputeFee computes the position's fee share for a single swap.
// The swap direction is inferred from the signs of the volumes: the
// strictly positive side is the inbound token and the fee accrues on it.
// Ambiguous directions and zero total liquidity yield a zero fee.
func ComputeFee(pos *domain.Position, swap *domain.Swap) domain.Fee {
	totalLiquidity := swap.Liquidity.Add(pos.Liquidity)
	if !totalLiquidity.IsPositive() {
		return domain.ZeroFee()
	}
	share := pos.Liquidity.DivRound(totalLiquidity, uniswap.Precision)

	switch {
	case swap.VolumeToken0.IsPositive() && swap.VolumeToken1.IsNegative():
		gross := swap.VolumeToken0.Mul(pos.Pool.FeeRate)
		return domain.Fee{Token0: share.Mul(gross), Token1: decimal.Zero}
	case swap.VolumeToken1.IsPositive() && swap.VolumeToken0.IsNegative():
		gross := swap.VolumeToken1.Mul(pos.Pool.FeeRate)
		return domain.Fee{Token0: decimal.Zero, Token1: share.Mul(gross)}
	default:
		return domain.ZeroFee()
	}
}

// FeeTracker accumulates per-swap fee records and running totals.
// One record is appended per tracked swap, zero when the position is
// inactive, so the fee series stays aligned one-to-one with the swap
// series. Totals increment only while active.
type FeeTracker struct {
	points []domain.FeePoint
	total  domain.Fee
}

// NewFeeTracker creates an empty fee tracker.
func NewFeeTracker() *FeeTracker {
	return &FeeTracker{total: domain.ZeroFee()}
}

// Track computes and records the fee for a swap. Returns the fee that
// was appended: the computed share when active, zero otherwise.
func (t *FeeTracker) Track(pos *domain.Position, swap *domain.Swap, active bool) domain.Fee {
	fee := domain.ZeroFee()
	if active {
		fee = ComputeFee(pos, swap)
		t.total = t.total.Add(fee)
	}
	t.points = append(t.points, domain.FeePoint{Timestamp: swap.Timestamp, Fee: fee})
	return fee
}

// Series returns the recorded fee samples.
func (t *FeeTracker) Series() []domain.FeePoint {
	return t.points
}

// Total returns the running fee totals accrued while active.
func (t *FeeTracker) Total() domain.Fee {
	return t.total
}
