// Package backtest drives simulated positions through a globally ordered
// swap timeline and collects the per-position result bundles.
package backtest

import (
	"time"

	"uniswap-v3-backtester/internal/compound"
	"uniswap-v3-backtester/internal/domain"
	"uniswap-v3-backtester/internal/rebalance"
	"uniswap-v3-backtester/internal/tracker"
)

// DefaultBias is the range split used when no bias is configured.
const DefaultBias = 0.5

// SimulationContext pairs one position with its swap series and its
// tracker/strategy set. IL, APR, rebalancer and compounder are optional
// capabilities; activity and fee tracking always run. Contexts share no
// state with each other.
type SimulationContext struct {
	Position  *domain.Position
	CreatedAt time.Time
	Swaps     domain.SwapSeries

	Activity *tracker.ActivityTracker
	Fees     *tracker.FeeTracker

	IL         *tracker.ILTracker
	APR        *tracker.APRTracker
	Rebalancer rebalance.Strategy
	Compounder *compound.Compounder

	// Bias splits the range width on rebalance; see rebalance.ComputeTickRange.
	Bias float64

	// accumulatedFees counts fees since the last compound. Reset when
	// the compounder fires; independent of the compounder's all-time
	// ledger.
	accumulatedFees domain.Fee
}

// NewSimulationContext creates a context with activity and fee trackers
// attached and the default rebalance bias.
func NewSimulationContext(pos *domain.Position, createdAt time.Time, swaps domain.SwapSeries) *SimulationContext {
	return &SimulationContext{
		Position:        pos,
		CreatedAt:       createdAt,
		Swaps:           swaps,
		Activity:        tracker.NewActivityTracker(),
		Fees:            tracker.NewFeeTracker(),
		Bias:            DefaultBias,
		accumulatedFees: domain.ZeroFee(),
	}
}
