package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Swap represents a historical swap event in a pool.
// Corresponds to a row of uniswap_v3_swaps joined with its block timestamp.
// Immutable, produced by the upstream swap store.
type Swap struct {
	PoolAddress  string          // pool contract address (hex, lowercase)
	TxHash       string          // transaction hash
	LogIndex     int             // index of the swap log within the transaction
	BlockNumber  int64           // block the swap was mined in
	Tick         int             // pool tick after the swap
	VolumeToken0 decimal.Decimal // signed token0 volume; positive side is the inbound token
	VolumeToken1 decimal.Decimal // signed token1 volume
	Liquidity    decimal.Decimal // pool liquidity in range at the time of the swap
	SqrtPriceX96 decimal.Decimal // raw Q64.96 square-root price encoding
	Timestamp    time.Time       // block timestamp
}

// SwapSeries is an ordered sequence of swaps, timestamp-ascending by
// contract. Ties are allowed and resolved by original order.
type SwapSeries struct {
	Swaps []*Swap
}

// Ticks returns the tick of every swap in series order.
func (s SwapSeries) Ticks() []int {
	ticks := make([]int, len(s.Swaps))
	for i, swap := range s.Swaps {
		ticks[i] = swap.Tick
	}
	return ticks
}

// Timestamps returns the timestamp of every swap in series order.
func (s SwapSeries) Timestamps() []time.Time {
	ts := make([]time.Time, len(s.Swaps))
	for i, swap := range s.Swaps {
		ts[i] = swap.Timestamp
	}
	return ts
}
