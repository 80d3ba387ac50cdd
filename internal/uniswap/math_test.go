package uniswap

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

// Helper to assert a decimal is within tol of want.
func assertNear(t *testing.T, want float64, got decimal.Decimal, tol float64, label string) {
	t.Helper()
	gotF, _ := got.Float64()
	if math.Abs(gotF-want) > tol {
		t.Errorf("%s: expected %v, got %v", label, want, gotF)
	}
}

func TestTickToPrice(t *testing.T) {
	if !TickToPrice(0).Equal(decimal.NewFromInt(1)) {
		t.Errorf("Expected price 1 at tick 0, got %s", TickToPrice(0))
	}

	// 1.0001^100
	assertNear(t, math.Pow(1.0001, 100), TickToPrice(100), 1e-9, "tick 100")
	assertNear(t, math.Pow(1.0001, -500), TickToPrice(-500), 1e-9, "tick -500")
}

func TestTickToSqrtPrice_SquaresToPrice(t *testing.T) {
	for _, tick := range []int{-2000, -1, 0, 1, 1500, 10000} {
		sqrtPrice := TickToSqrtPrice(tick)
		price := TickToPrice(tick)
		diff := sqrtPrice.Mul(sqrtPrice).Sub(price).Abs()
		if diff.GreaterThan(decimal.New(1, -30)) {
			t.Errorf("tick %d: sqrtPrice^2 deviates from price by %s", tick, diff)
		}
	}
}

func TestTokenAmountsFromLiquidity_Regimes(t *testing.T) {
	liquidity := decimal.NewFromInt(1000000)

	// At or below the lower bound: all token0.
	amount0, amount1 := TokenAmountsFromLiquidity(1400, 1600, liquidity, 1300)
	if !amount0.IsPositive() {
		t.Errorf("Expected positive token0 below range, got %s", amount0)
	}
	if !amount1.IsZero() {
		t.Errorf("Expected zero token1 below range, got %s", amount1)
	}

	// At or above the upper bound: all token1.
	amount0, amount1 = TokenAmountsFromLiquidity(1400, 1600, liquidity, 1700)
	if !amount0.IsZero() {
		t.Errorf("Expected zero token0 above range, got %s", amount0)
	}
	if !amount1.IsPositive() {
		t.Errorf("Expected positive token1 above range, got %s", amount1)
	}

	// Inside the range: both sides funded.
	amount0, amount1 = TokenAmountsFromLiquidity(1400, 1600, liquidity, 1500)
	if !amount0.IsPositive() || !amount1.IsPositive() {
		t.Errorf("Expected both amounts positive in range, got %s / %s", amount0, amount1)
	}

	// Bounds are part of the outer regimes.
	_, amount1 = TokenAmountsFromLiquidity(1400, 1600, liquidity, 1400)
	if !amount1.IsZero() {
		t.Errorf("Expected zero token1 at lower bound, got %s", amount1)
	}
	amount0, _ = TokenAmountsFromLiquidity(1400, 1600, liquidity, 1600)
	if !amount0.IsZero() {
		t.Errorf("Expected zero token0 at upper bound, got %s", amount0)
	}
}

func TestToken1ForFixedToken0_RoundTrips(t *testing.T) {
	amount0 := decimal.NewFromInt(100)

	liquidity, amount1 := Token1ForFixedToken0(amount0, 1400, 1600, 1500)
	if !liquidity.IsPositive() || !amount1.IsPositive() {
		t.Fatalf("Expected positive liquidity and amount1, got %s / %s", liquidity, amount1)
	}

	// The derived liquidity must reproduce the fixed token0 amount.
	back0, back1 := TokenAmountsFromLiquidity(1400, 1600, liquidity, 1500)
	if back0.Sub(amount0).Abs().GreaterThan(decimal.New(1, -20)) {
		t.Errorf("Round trip token0: expected %s, got %s", amount0, back0)
	}
	if back1.Sub(amount1).Abs().GreaterThan(decimal.New(1, -20)) {
		t.Errorf("Round trip token1: expected %s, got %s", amount1, back1)
	}
}

func TestToken1ForFixedToken0_OuterRegimes(t *testing.T) {
	amount0 := decimal.NewFromInt(100)

	// Below the range all value stays in token0.
	liquidity, amount1 := Token1ForFixedToken0(amount0, 1400, 1600, 1300)
	if !liquidity.IsPositive() {
		t.Errorf("Expected positive liquidity below range, got %s", liquidity)
	}
	if !amount1.IsZero() {
		t.Errorf("Expected zero token1 below range, got %s", amount1)
	}

	// Above the range a token0-fixed position cannot exist.
	liquidity, amount1 = Token1ForFixedToken0(amount0, 1400, 1600, 1700)
	if !liquidity.IsZero() || !amount1.IsZero() {
		t.Errorf("Expected zeros above range, got %s / %s", liquidity, amount1)
	}
}

func TestLiquidityFromToken0_CoincidingPrices(t *testing.T) {
	sqrtP := TickToSqrtPrice(1500)
	got := LiquidityFromToken0(decimal.NewFromInt(100), sqrtP, sqrtP)
	if !got.IsZero() {
		t.Errorf("Expected zero liquidity for coinciding prices, got %s", got)
	}
}

func TestImpermanentLoss(t *testing.T) {
	// Entry tick zero is a configuration error.
	_, err := ImpermanentLoss(1500, 0, 1400, 1600)
	if !errors.Is(err, ErrZeroEntryTick) {
		t.Fatalf("Expected ErrZeroEntryTick, got %v", err)
	}

	// No price movement, no loss.
	il, err := ImpermanentLoss(1500, 1500, 1400, 1600)
	if err != nil {
		t.Fatalf("ImpermanentLoss failed: %v", err)
	}
	if !il.IsZero() {
		t.Errorf("Expected zero IL without movement, got %s", il)
	}

	// Any movement inside the range loses against holding.
	il, err = ImpermanentLoss(1600, 1500, 1400, 1600)
	if err != nil {
		t.Fatalf("ImpermanentLoss failed: %v", err)
	}
	if !il.IsNegative() {
		t.Errorf("Expected negative IL for price movement, got %s", il)
	}

	il, err = ImpermanentLoss(1400, 1500, 1400, 1600)
	if err != nil {
		t.Fatalf("ImpermanentLoss failed: %v", err)
	}
	if !il.IsNegative() {
		t.Errorf("Expected negative IL for downward movement, got %s", il)
	}
}

func TestImpermanentLoss_DegenerateDenominators(t *testing.T) {
	// k == -1 zeroes 1+k.
	il, err := ImpermanentLoss(-1500, 1500, -1500, 1500)
	if err != nil {
		t.Fatalf("ImpermanentLoss failed: %v", err)
	}
	if !il.IsZero() {
		t.Errorf("Expected zero IL for 1+k == 0, got %s", il)
	}

	// Max tick zero zeroes k_max.
	il, err = ImpermanentLoss(1500, 1500, 1400, 0)
	if err != nil {
		t.Fatalf("ImpermanentLoss failed: %v", err)
	}
	if !il.IsZero() {
		t.Errorf("Expected zero IL for k_max == 0, got %s", il)
	}
}

func TestRealizedIL(t *testing.T) {
	fullIL := decimal.NewFromInt(-1)

	// Target equals current: nothing crystallized.
	got := RealizedIL(decimal.New(5, -1), decimal.New(2, -1), decimal.New(2, -1), fullIL)
	if !got.IsZero() {
		t.Errorf("Expected zero for target == current, got %s", got)
	}

	// Entry equals current: nothing crystallized.
	got = RealizedIL(decimal.New(2, -1), decimal.New(2, -1), decimal.New(5, -1), fullIL)
	if !got.IsZero() {
		t.Errorf("Expected zero for entry == current, got %s", got)
	}

	// Full move back to the entry composition crystallizes everything.
	got = RealizedIL(decimal.New(5, -1), decimal.New(2, -1), decimal.New(5, -1), fullIL)
	assertNear(t, -100, got, 1e-12, "full crystallization")

	// Half of the move crystallizes half.
	got = RealizedIL(decimal.New(5, -1), decimal.New(2, -1), decimal.New(35, -2), fullIL)
	assertNear(t, -50, got, 1e-12, "half crystallization")
}

func TestPriceFromSqrtPriceX96(t *testing.T) {
	q96 := decimal.NewFromBigInt(new(big.Int).Lsh(big.NewInt(1), 96), 0)

	// sqrtPriceX96 == 2^96 means price 1 for equal decimals.
	assertNear(t, 1, PriceFromSqrtPriceX96(q96, 18, 18), 1e-12, "unit price")

	// Doubling the square-root price quadruples the price.
	assertNear(t, 4, PriceFromSqrtPriceX96(q96.Mul(decimal.NewFromInt(2)), 18, 18), 1e-12, "doubled sqrt")

	// Decimal adjustment shifts by 10^(dec0-dec1).
	assertNear(t, 1e-12, PriceFromSqrtPriceX96(q96, 6, 18), 1e-24, "usdc/weth style decimals")
}
