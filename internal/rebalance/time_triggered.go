package rebalance

import "time"

// TimeTriggered fires once the elapsed time since the last rebalance, or
// since position creation when none happened yet, reaches a fixed
// interval.
type TimeTriggered struct {
	interval         time.Duration
	lastRebalancedAt *time.Time
	events           eventLog
}

// NewTimeTriggered creates a time-triggered strategy. Negative intervals
// are rejected.
func NewTimeTriggered(interval time.Duration) (*TimeTriggered, error) {
	if interval < 0 {
		return nil, ErrNegativeInterval
	}
	return &TimeTriggered{interval: interval}, nil
}

// ShouldRebalance implements Strategy.
func (s *TimeTriggered) ShouldRebalance(ctx Context) (bool, error) {
	if err := checkTickBounds(ctx.TickLower, ctx.TickUpper); err != nil {
		return false, err
	}
	reference := ctx.CreatedAt
	if s.lastRebalancedAt != nil {
		reference = *s.lastRebalancedAt
	}
	return ctx.Timestamp.Sub(reference) >= s.interval, nil
}

// Rebalance implements Strategy.
func (s *TimeTriggered) Rebalance(ctx Context, bias float64) (int, int, error) {
	newLower, newUpper, err := s.events.record(ctx, bias)
	if err != nil {
		return 0, 0, err
	}
	ts := ctx.Timestamp
	s.lastRebalancedAt = &ts
	return newLower, newUpper, nil
}

// EventAt implements Strategy.
func (s *TimeTriggered) EventAt(timestamp time.Time) *Event {
	return s.events.at(timestamp)
}

var _ Strategy = (*TimeTriggered)(nil)
