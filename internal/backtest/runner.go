package backtest

import (
	"sort"
	"time"

	"uniswap-v3-backtester/internal/compound"
	"uniswap-v3-backtester/internal/domain"
	"uniswap-v3-backtester/internal/rebalance"
	"uniswap-v3-backtester/internal/tracker"
	"uniswap-v3-backtester/internal/uniswap"
)

// Runner drives a set of independent simulation contexts through one
// globally sorted, duplicate-collapsed timestamp timeline. Within a
// context swaps are processed strictly in timestamp order, ties resolved
// by original series order; contexts never interact.
type Runner struct {
	contexts []*SimulationContext
}

// runnerState accumulates the per-context series owned by the runner.
type runnerState struct {
	initialTickLower int
	initialTickUpper int

	compositions []domain.BalancePoint
	balances     []domain.BalancePoint
	ticks        []domain.TickPoint
	rebalances   []rebalance.Event
}

// NewRunner creates a runner over the given contexts.
func NewRunner(contexts []*SimulationContext) *Runner {
	return &Runner{contexts: contexts}
}

// Run executes the whole timeline and returns one result per context.
// A validation error from any component aborts the entire run; there is
// no partial-result recovery.
func (r *Runner) Run() (*Output, error) {
	timeline := r.globalTimeline()

	states := make([]*runnerState, len(r.contexts))
	for i, sc := range r.contexts {
		states[i] = &runnerState{
			initialTickLower: sc.Position.TickLower,
			initialTickUpper: sc.Position.TickUpper,
		}
	}

	for _, ts := range timeline {
		for i, sc := range r.contexts {
			for _, swap := range sc.Swaps.Swaps {
				if !swap.Timestamp.Equal(ts) {
					continue
				}
				if err := r.processSwap(states[i], sc, swap, ts); err != nil {
					return nil, err
				}
			}
		}
	}

	return r.finalize(states, timeline), nil
}

// processSwap runs the fixed per-swap pipeline for one context.
func (r *Runner) processSwap(st *runnerState, sc *SimulationContext, swap *domain.Swap, ts time.Time) error {
	pos := sc.Position

	// Pre-swap composition.
	st.compositions = append(st.compositions, domain.BalancePoint{
		Timestamp: ts,
		Amount0:   pos.Amount0,
		Amount1:   pos.Amount1,
	})

	// Activity and token amounts from current liquidity at the swap tick.
	_, amount0, amount1 := sc.Activity.Track(pos, swap)
	pos.Amount0 = amount0
	pos.Amount1 = amount1

	if sc.Rebalancer != nil {
		if err := r.maybeRebalance(st, sc, swap, ts); err != nil {
			return err
		}
	}

	// Active flag against the possibly-updated bounds.
	active := tracker.IsActive(pos, swap.Tick)

	fee := sc.Fees.Track(pos, swap, active)
	sc.accumulatedFees = sc.accumulatedFees.Add(fee)

	if sc.Compounder != nil {
		r.maybeCompound(sc, ts)
	}

	if sc.IL != nil {
		if err := sc.IL.TrackIL(ts, swap.Tick); err != nil {
			return err
		}
	}

	st.ticks = append(st.ticks, domain.TickPoint{Timestamp: ts, Tick: swap.Tick})

	if sc.APR != nil {
		total := sc.Fees.Total()
		sc.APR.Track(ts, pos.Amount0, pos.Amount1, total.Token0, total.Token1, swap.SqrtPriceX96)
	}

	// Post-swap balances.
	st.balances = append(st.balances, domain.BalancePoint{
		Timestamp: ts,
		Amount0:   pos.Amount0,
		Amount1:   pos.Amount1,
	})

	return nil
}

// maybeRebalance applies the context's rebalancing strategy to the
// in-flight bounds. On a rebalance the position's liquidity and token1
// amount are reconstructed holding token0 fixed, and the realized IL is
// crystallized.
func (r *Runner) maybeRebalance(st *runnerState, sc *SimulationContext, swap *domain.Swap, ts time.Time) error {
	pos := sc.Position
	rctx := rebalance.Context{
		Tick:      swap.Tick,
		Timestamp: ts,
		TickLower: pos.TickLower,
		TickUpper: pos.TickUpper,
		CreatedAt: sc.CreatedAt,
	}

	fire, err := sc.Rebalancer.ShouldRebalance(rctx)
	if err != nil {
		return err
	}
	if !fire {
		return nil
	}

	newLower, newUpper, err := sc.Rebalancer.Rebalance(rctx, sc.Bias)
	if err != nil {
		return err
	}

	liquidity, newAmount1 := uniswap.Token1ForFixedToken0(pos.Amount0, newLower, newUpper, swap.Tick)
	pos.TickLower = newLower
	pos.TickUpper = newUpper
	pos.Amount1 = newAmount1
	pos.Liquidity = liquidity

	if event := sc.Rebalancer.EventAt(ts); event != nil {
		st.rebalances = append(st.rebalances, *event)
	}

	if sc.IL != nil {
		sc.IL.RealizeIL(ts, pos.Amount0, pos.Amount1)
	}

	return nil
}

// maybeCompound folds the accumulated fees into the position when the
// compounder fires. Nothing happens while the accumulator is empty.
func (r *Runner) maybeCompound(sc *SimulationContext, ts time.Time) {
	if sc.accumulatedFees.IsZero() {
		return
	}

	cctx := compound.Context{
		Timestamp:       ts,
		CreatedAt:       sc.CreatedAt,
		AccumulatedFees: sc.accumulatedFees,
	}
	if !sc.Compounder.ShouldCompound(cctx) {
		return
	}

	sc.Compounder.Compound(sc.Position, sc.accumulatedFees, &cctx)
	sc.accumulatedFees = cctx.AccumulatedFees
}

// globalTimeline returns the sorted, duplicate-collapsed timestamps of
// every context's swap series.
func (r *Runner) globalTimeline() []time.Time {
	seen := make(map[int64]time.Time)
	for _, sc := range r.contexts {
		for _, swap := range sc.Swaps.Swaps {
			seen[swap.Timestamp.UnixNano()] = swap.Timestamp
		}
	}

	timeline := make([]time.Time, 0, len(seen))
	for _, ts := range seen {
		timeline = append(timeline, ts)
	}
	sort.Slice(timeline, func(i, j int) bool { return timeline[i].Before(timeline[j]) })
	return timeline
}

// finalize computes each context's return series over every distinct
// calendar day of the global timeline and assembles the result bundles.
func (r *Runner) finalize(states []*runnerState, timeline []time.Time) *Output {
	days := distinctDays(timeline)

	out := &Output{Results: make([]*Result, len(r.contexts))}
	for i, sc := range r.contexts {
		st := states[i]

		res := &Result{
			TotalFees:         sc.Fees.Total(),
			ActivitySeries:    sc.Activity.Series(),
			FeeSeries:         sc.Fees.Series(),
			TokenBalances:     st.balances,
			TokenCompositions: st.compositions,
			SwapTicks:         st.ticks,
			InitialTickLower:  st.initialTickLower,
			InitialTickUpper:  st.initialTickUpper,
			RebalanceEvents:   st.rebalances,
			TotalCompounded:   domain.ZeroFee(),
		}

		if sc.APR != nil {
			res.APRSeries = sc.APR.ComputeOnDates(days)
		}
		if sc.IL != nil {
			res.ILSeries = sc.IL.Series()
			res.RealizedILSeries = sc.IL.RealizedSeries()
		}
		if sc.Compounder != nil {
			res.CompoundEvents = sc.Compounder.Events()
			res.TotalCompounded = sc.Compounder.TotalCompounded()
		}

		out.Results[i] = res
	}

	return out
}

// distinctDays returns the sorted distinct UTC calendar days of the
// timeline.
func distinctDays(timeline []time.Time) []time.Time {
	seen := make(map[time.Time]struct{})
	var days []time.Time
	for _, ts := range timeline {
		u := ts.UTC()
		day := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
