package rebalance

import "time"

// OutOfRange fires whenever the current tick is strictly outside the
// position's bounds. Boundary ticks count as in-range.
type OutOfRange struct {
	events eventLog
}

// NewOutOfRange creates an out-of-range strategy.
func NewOutOfRange() *OutOfRange {
	return &OutOfRange{}
}

// ShouldRebalance implements Strategy.
func (s *OutOfRange) ShouldRebalance(ctx Context) (bool, error) {
	if err := checkTickBounds(ctx.TickLower, ctx.TickUpper); err != nil {
		return false, err
	}
	inRange := ctx.TickLower <= ctx.Tick && ctx.Tick <= ctx.TickUpper
	return !inRange, nil
}

// Rebalance implements Strategy.
func (s *OutOfRange) Rebalance(ctx Context, bias float64) (int, int, error) {
	return s.events.record(ctx, bias)
}

// EventAt implements Strategy.
func (s *OutOfRange) EventAt(timestamp time.Time) *Event {
	return s.events.at(timestamp)
}

var _ Strategy = (*OutOfRange)(nil)

// OutOfRangeDuration fires only once the tick has remained continuously
// out of range for at least a fixed duration. Re-entering the range
// clears the excursion marker; the strategy never fires while in range.
type OutOfRangeDuration struct {
	duration        time.Duration
	outOfRangeSince *time.Time
	events          eventLog
}

// NewOutOfRangeDuration creates an out-of-range-duration strategy.
// Negative durations are rejected.
func NewOutOfRangeDuration(duration time.Duration) (*OutOfRangeDuration, error) {
	if duration < 0 {
		return nil, ErrNegativeDuration
	}
	return &OutOfRangeDuration{duration: duration}, nil
}

// ShouldRebalance implements Strategy.
func (s *OutOfRangeDuration) ShouldRebalance(ctx Context) (bool, error) {
	if err := checkTickBounds(ctx.TickLower, ctx.TickUpper); err != nil {
		return false, err
	}

	inRange := ctx.TickLower <= ctx.Tick && ctx.Tick <= ctx.TickUpper
	if inRange {
		s.outOfRangeSince = nil
		return false, nil
	}

	if s.outOfRangeSince == nil {
		ts := ctx.Timestamp
		s.outOfRangeSince = &ts
	}
	return ctx.Timestamp.Sub(*s.outOfRangeSince) >= s.duration, nil
}

// Rebalance implements Strategy.
func (s *OutOfRangeDuration) Rebalance(ctx Context, bias float64) (int, int, error) {
	newLower, newUpper, err := s.events.record(ctx, bias)
	if err != nil {
		return 0, 0, err
	}
	s.outOfRangeSince = nil
	return newLower, newUpper, nil
}

// EventAt implements Strategy.
func (s *OutOfRangeDuration) EventAt(timestamp time.Time) *Event {
	return s.events.at(timestamp)
}

var _ Strategy = (*OutOfRangeDuration)(nil)
