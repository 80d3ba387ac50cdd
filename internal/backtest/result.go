package backtest

import (
	"uniswap-v3-backtester/internal/compound"
	"uniswap-v3-backtester/internal/domain"
	"uniswap-v3-backtester/internal/rebalance"
)

// Result is the output bundle of one simulated position: aggregate
// totals plus every time series and event log, all ordered by timestamp.
type Result struct {
	TotalFees domain.Fee

	APRSeries         []domain.SeriesPoint
	ActivitySeries    []domain.ActivityPoint
	FeeSeries         []domain.FeePoint
	ILSeries          []domain.SeriesPoint
	RealizedILSeries  []domain.SeriesPoint
	TokenBalances     []domain.BalancePoint
	TokenCompositions []domain.BalancePoint
	SwapTicks         []domain.TickPoint

	InitialTickLower int
	InitialTickUpper int

	RebalanceEvents []rebalance.Event
	CompoundEvents  []compound.Event
	TotalCompounded domain.Fee
}

// Output bundles the results of every simulated context, in context
// order.
type Output struct {
	Results []*Result
}
