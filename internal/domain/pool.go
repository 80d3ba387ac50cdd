package domain

import "github.com/shopspring/decimal"

// Pool represents a Uniswap v3 pool. Immutable after creation.
type Pool struct {
	Address string          // pool contract address (hex, lowercase)
	Token0  string          // token0 symbol or address
	Token1  string          // token1 symbol or address
	FeeRate decimal.Decimal // proportional fee rate, e.g. 0.003 for 0.3%
}

// Position represents a concentrated-liquidity position in a pool.
// Bounds, amounts and liquidity are mutated only by the backtest runner
// (on rebalance) and by activity recomputation (on every swap).
type Position struct {
	TickLower int
	TickUpper int
	Amount0   decimal.Decimal
	Amount1   decimal.Decimal
	Liquidity decimal.Decimal
	Pool      *Pool
}
