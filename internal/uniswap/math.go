// Package uniswap implements the Uniswap v3 tick and liquidity math used
// by the backtester. All arithmetic is performed on exact decimals with a
// fixed working precision; fee and IL values compound over tens of
// thousands of sequential swaps, so binary floating point is not used
// anywhere in this package.
package uniswap

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
)

// Precision is the number of significant digits carried by every
// division and exponentiation in this package. It is passed explicitly
// at each arithmetic entry point rather than configured process-wide.
const Precision = 40

// ErrZeroEntryTick is returned when an impermanent-loss computation is
// requested with entry tick 0; the ratios in the IL formula divide by
// the entry tick, so a zero entry tick is a configuration error.
var ErrZeroEntryTick = errors.New("entry tick must be non-zero")

var (
	one      = decimal.NewFromInt(1)
	two      = decimal.NewFromInt(2)
	half     = decimal.New(5, -1)
	hundred  = decimal.NewFromInt(100)
	tickBase = decimal.New(10001, -4) // 1.0001
	q96      = decimal.NewFromBigInt(new(big.Int).Lsh(big.NewInt(1), 96), 0)
)

// powTick raises 1.0001 to exp at the package precision. The base is a
// positive constant, so PowWithPrecision cannot fail.
func powTick(exp decimal.Decimal) decimal.Decimal {
	v, err := tickBase.PowWithPrecision(exp, Precision)
	if err != nil {
		panic(err)
	}
	return v
}

// sqrt returns the square root of d at the package precision.
// d must be non-negative.
func sqrt(d decimal.Decimal) (decimal.Decimal, error) {
	if d.IsZero() {
		return decimal.Zero, nil
	}
	return d.PowWithPrecision(half, Precision)
}

// TickToPrice converts a tick to its price: price = 1.0001^tick.
func TickToPrice(tick int) decimal.Decimal {
	return powTick(decimal.NewFromInt(int64(tick)))
}

// TickToSqrtPrice converts a tick to its square-root price:
// sqrtPrice = 1.0001^(tick/2).
func TickToSqrtPrice(tick int) decimal.Decimal {
	exp := decimal.NewFromInt(int64(tick)).DivRound(two, Precision)
	return powTick(exp)
}

// TokenAmountsFromLiquidity derives the token amounts implied by a
// liquidity value for the range [tickLower, tickUpper] at currentTick.
// At or below the lower bound all value is in token0; at or above the
// upper bound all value is in token1; inside the range the value is
// split by the square-root prices.
func TokenAmountsFromLiquidity(tickLower, tickUpper int, liquidity decimal.Decimal, currentTick int) (decimal.Decimal, decimal.Decimal) {
	sqrtPrice := TickToSqrtPrice(currentTick)
	sqrtLower := TickToSqrtPrice(tickLower)
	sqrtUpper := TickToSqrtPrice(tickUpper)

	switch {
	case currentTick <= tickLower:
		amount0 := liquidity.Mul(one.DivRound(sqrtLower, Precision).Sub(one.DivRound(sqrtUpper, Precision)))
		return amount0, decimal.Zero
	case currentTick >= tickUpper:
		amount1 := liquidity.Mul(sqrtUpper.Sub(sqrtLower))
		return decimal.Zero, amount1
	default:
		amount0 := liquidity.Mul(one.DivRound(sqrtPrice, Precision).Sub(one.DivRound(sqrtUpper, Precision)))
		amount1 := liquidity.Mul(sqrtPrice.Sub(sqrtLower))
		return amount0, amount1
	}
}

// LiquidityFromToken0 derives liquidity from a fixed token0 amount and
// the square-root prices of the current tick and the upper bound:
// L = amount0 * sqrtP * sqrtB / (sqrtB - sqrtP).
// Returns zero when the square-root prices coincide.
func LiquidityFromToken0(amount0, sqrtP, sqrtB decimal.Decimal) decimal.Decimal {
	diff := sqrtB.Sub(sqrtP)
	if diff.IsZero() {
		return decimal.Zero
	}
	return amount0.Mul(sqrtP).Mul(sqrtB).DivRound(diff, Precision)
}

// Token1ForFixedToken0 derives the liquidity and the paired token1
// amount for the range [tickLower, tickUpper] at currentTick while
// holding the token0 amount fixed. Used to reconstruct a position after
// a rebalance.
func Token1ForFixedToken0(amount0 decimal.Decimal, tickLower, tickUpper, currentTick int) (decimal.Decimal, decimal.Decimal) {
	sqrtA := TickToSqrtPrice(tickLower)
	sqrtB := TickToSqrtPrice(tickUpper)
	sqrtP := TickToSqrtPrice(currentTick)

	switch {
	case currentTick <= tickLower:
		liquidity := LiquidityFromToken0(amount0, sqrtA, sqrtB)
		return liquidity, decimal.Zero
	case currentTick >= tickUpper:
		return decimal.Zero, decimal.Zero
	default:
		liquidity := LiquidityFromToken0(amount0, sqrtP, sqrtB)
		amount1 := liquidity.Mul(sqrtP.Sub(sqrtA))
		return liquidity, amount1
	}
}

// ImpermanentLoss computes the unrealized impermanent loss percentage
// for a position entered at entryTick with bounds [minTick, maxTick],
// evaluated at currentTick. Callers clamp currentTick into the bounds
// before calling. Zero denominators inside the formula resolve to a
// zero result so that one degenerate swap does not abort a run.
func ImpermanentLoss(currentTick, entryTick, minTick, maxTick int) (decimal.Decimal, error) {
	if entryTick == 0 {
		return decimal.Zero, ErrZeroEntryTick
	}

	entry := decimal.NewFromInt(int64(entryTick))
	k := decimal.NewFromInt(int64(currentTick)).DivRound(entry, Precision)
	kMin := decimal.NewFromInt(int64(minTick)).DivRound(entry, Precision)
	kMax := decimal.NewFromInt(int64(maxTick)).DivRound(entry, Precision)

	onePlusK := one.Add(k)
	if onePlusK.IsZero() || kMax.IsZero() {
		return decimal.Zero, nil
	}

	sqrtK, err := sqrt(k)
	if err != nil {
		return decimal.Zero, err
	}
	sqrtKMin, err := sqrt(kMin)
	if err != nil {
		return decimal.Zero, err
	}
	sqrtInvKMax, err := sqrt(one.DivRound(kMax, Precision))
	if err != nil {
		return decimal.Zero, err
	}

	ilBase := two.Mul(sqrtK).DivRound(onePlusK, Precision).Sub(one)

	factorDenom := one.Sub(sqrtKMin.Add(k.Mul(sqrtInvKMax)).DivRound(onePlusK, Precision))
	if factorDenom.IsZero() {
		return decimal.Zero, nil
	}

	return ilBase.DivRound(factorDenom, Precision).Mul(hundred), nil
}

// RealizedIL computes the portion of fullIL crystallized by moving the
// token0 share of total value from currentRatio toward targetRatio,
// relative to the entry composition. Both zero-denominator cases
// (target equals current, entry equals current) yield exactly zero.
func RealizedIL(entryRatio, currentRatio, targetRatio, fullIL decimal.Decimal) decimal.Decimal {
	if targetRatio.Equal(currentRatio) {
		return decimal.Zero
	}
	denom := entryRatio.Sub(currentRatio).Abs()
	if denom.IsZero() {
		return decimal.Zero
	}
	fraction := targetRatio.Sub(currentRatio).Abs().DivRound(denom, Precision)
	return fraction.Mul(fullIL).Mul(hundred)
}

// PriceFromSqrtPriceX96 converts a raw Q64.96 square-root price into the
// human-readable price of token1 per token0, adjusted for the decimal
// precision of both tokens:
// price = (sqrtPriceX96 / 2^96)^2 * 10^(token0Decimals - token1Decimals).
func PriceFromSqrtPriceX96(sqrtPriceX96 decimal.Decimal, token0Decimals, token1Decimals int) decimal.Decimal {
	sqrtPrice := sqrtPriceX96.DivRound(q96, Precision)
	raw := sqrtPrice.Mul(sqrtPrice)
	adjustment := decimal.New(1, int32(token0Decimals-token1Decimals))
	return raw.Mul(adjustment)
}
