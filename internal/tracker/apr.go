package tracker

import (
	"time"

	"github.com/shopspring/decimal"

	"uniswap-v3-backtester/internal/domain"
	"uniswap-v3-backtester/internal/uniswap"
)

// aprSnapshot is the last-observed state of one calendar day. Amounts
// and fees are stored scaled to human units.
type aprSnapshot struct {
	token0       decimal.Decimal
	token1       decimal.Decimal
	fee0         decimal.Decimal
	fee1         decimal.Decimal
	sqrtPriceX96 decimal.Decimal
}

// APRTracker maintains per-calendar-day snapshots of the position state
// and computes the return series against a hold-the-initial-tokens
// benchmark. The APR name is inherited: ComputeOnDates yields the
// cumulative percentage return since the start date, not an annualized
// rate. ComputeAnnualizedOnDates keeps the historical annualized,
// IL-netted variant.
type APRTracker struct {
	initialToken0  decimal.Decimal // scaled
	initialToken1  decimal.Decimal // scaled
	token0Decimals int
	token1Decimals int

	started   bool
	startDate time.Time
	byDay     map[time.Time]aprSnapshot

	losses []domain.SeriesPoint // optional IL percentage series
}

// NewAPRTracker creates a return tracker for a position entered with the
// given raw token amounts and per-token decimal precision.
func NewAPRTracker(initialToken0, initialToken1 decimal.Decimal, token0Decimals, token1Decimals int) *APRTracker {
	return &APRTracker{
		initialToken0:  scale(initialToken0, token0Decimals),
		initialToken1:  scale(initialToken1, token1Decimals),
		token0Decimals: token0Decimals,
		token1Decimals: token1Decimals,
		byDay:          make(map[time.Time]aprSnapshot),
	}
}

// scale converts a raw token amount to human units.
func scale(amount decimal.Decimal, decimals int) decimal.Decimal {
	return amount.Mul(decimal.New(1, -int32(decimals)))
}

// dayOf truncates a timestamp to its UTC calendar day.
func dayOf(ts time.Time) time.Time {
	ts = ts.UTC()
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
}

// Track overwrites the snapshot of the timestamp's calendar day with the
// latest observed state; the last write of a day wins. The first tracked
// day fixes the simulation's start date.
func (t *APRTracker) Track(timestamp time.Time, token0, token1, feeToken0, feeToken1, sqrtPriceX96 decimal.Decimal) {
	day := dayOf(timestamp)
	if !t.started {
		t.started = true
		t.startDate = day
	}

	t.byDay[day] = aprSnapshot{
		token0:       scale(token0, t.token0Decimals),
		token1:       scale(token1, t.token1Decimals),
		fee0:         scale(feeToken0, t.token0Decimals),
		fee1:         scale(feeToken1, t.token1Decimals),
		sqrtPriceX96: sqrtPriceX96,
	}
}

// SetLossSeries attaches an impermanent-loss percentage series that
// ComputeAnnualizedOnDates nets against the accrued gains.
func (t *APRTracker) SetLossSeries(points []domain.SeriesPoint) {
	t.losses = points
}

// ComputeOnDates computes the cumulative percentage return since the
// start date for each query date strictly after it. Dates without a
// snapshot at or before them, or with less than one elapsed day, are
// skipped.
func (t *APRTracker) ComputeOnDates(queryDates []time.Time) []domain.SeriesPoint {
	var series []domain.SeriesPoint
	if !t.started {
		return series
	}

	for _, queryDate := range queryDates {
		day := dayOf(queryDate)
		if !day.After(t.startDate) {
			continue
		}

		snap, ok := t.latestSnapshotAt(day)
		if !ok {
			continue
		}
		if daysBetween(t.startDate, day) < 1 {
			continue
		}

		lpValue, holdValue := t.values(snap)
		if holdValue.IsZero() {
			continue
		}

		value := lpValue.Sub(holdValue).DivRound(holdValue, uniswap.Precision).Mul(decimal.NewFromInt(100))
		series = append(series, domain.SeriesPoint{Timestamp: queryDate, Value: value})
	}

	return series
}

// ComputeAnnualizedOnDates computes the historical annualized variant:
// the net gain since start, minus the value lost to the attached IL
// series, scaled by 365 over the elapsed days.
func (t *APRTracker) ComputeAnnualizedOnDates(queryDates []time.Time) []domain.SeriesPoint {
	var series []domain.SeriesPoint
	if !t.started {
		return series
	}

	for _, queryDate := range queryDates {
		day := dayOf(queryDate)
		if !day.After(t.startDate) {
			continue
		}

		snap, ok := t.latestSnapshotAt(day)
		if !ok {
			continue
		}
		elapsed := daysBetween(t.startDate, day)
		if elapsed < 1 {
			continue
		}

		lpValue, holdValue := t.values(snap)
		if holdValue.IsZero() {
			continue
		}

		lossValue := t.lossAt(day).DivRound(decimal.NewFromInt(100), uniswap.Precision).Mul(holdValue)
		netGain := lpValue.Sub(holdValue).Sub(lossValue)

		annualization := decimal.NewFromInt(365).DivRound(decimal.NewFromInt(elapsed), uniswap.Precision)
		value := netGain.DivRound(holdValue, uniswap.Precision).Mul(annualization).Mul(decimal.NewFromInt(100))
		series = append(series, domain.SeriesPoint{Timestamp: queryDate, Value: value})
	}

	return series
}

// latestSnapshotAt returns the snapshot of the most recent tracked day
// at or before day.
func (t *APRTracker) latestSnapshotAt(day time.Time) (aprSnapshot, bool) {
	var (
		best  time.Time
		found bool
	)
	for d := range t.byDay {
		if d.After(day) {
			continue
		}
		if !found || d.After(best) {
			best = d
			found = true
		}
	}
	if !found {
		return aprSnapshot{}, false
	}
	return t.byDay[best], true
}

// lossAt returns the most recent attached loss percentage at or before
// day, zero when none applies.
func (t *APRTracker) lossAt(day time.Time) decimal.Decimal {
	loss := decimal.Zero
	for _, p := range t.losses {
		if dayOf(p.Timestamp).After(day) {
			break
		}
		loss = p.Value
	}
	return loss
}

// values converts the snapshot and the initial holdings into
// token1-denominated LP and benchmark values using the adjusted price.
func (t *APRTracker) values(snap aprSnapshot) (decimal.Decimal, decimal.Decimal) {
	price := uniswap.PriceFromSqrtPriceX96(snap.sqrtPriceX96, t.token0Decimals, t.token1Decimals)

	totalToken0 := snap.token0.Add(snap.fee0)
	totalToken1 := snap.token1.Add(snap.fee1)
	lpValue := totalToken1.Add(totalToken0.Mul(price))

	holdValue := t.initialToken1.Add(t.initialToken0.Mul(price))
	return lpValue, holdValue
}

// daysBetween returns the number of whole days from a to b, both
// truncated to calendar days.
func daysBetween(a, b time.Time) int64 {
	return int64(b.Sub(a) / (24 * time.Hour))
}
