package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SeriesPoint is one (timestamp, value) sample of a decimal time series.
// All result series are exposed as plain ordered point slices.
type SeriesPoint struct {
	Timestamp time.Time
	Value     decimal.Decimal
}

// FeePoint is one (timestamp, fee) sample of the fee series.
type FeePoint struct {
	Timestamp time.Time
	Fee       Fee
}

// BalancePoint is one (timestamp, amount0, amount1) sample of the token
// balance or composition series.
type BalancePoint struct {
	Timestamp time.Time
	Amount0   decimal.Decimal
	Amount1   decimal.Decimal
}

// TickPoint is one (timestamp, tick) sample of the observed tick series.
type TickPoint struct {
	Timestamp time.Time
	Tick      int
}

// ActivityPoint is one (timestamp, active) sample of the activity series.
type ActivityPoint struct {
	Timestamp time.Time
	Active    bool
}
