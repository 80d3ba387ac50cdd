// Package rebalance implements the rebalancing trigger policies. The
// variant set is closed: TimeTriggered, OutOfRange, OutOfRangeDuration
// and MultiCondition, all behind the Strategy interface.
package rebalance

import (
	"errors"
	"time"
)

// Validation errors.
var (
	ErrInvertedTickBounds = errors.New("tick_upper must be >= tick_lower")
	ErrBiasOutOfRange     = errors.New("bias must be between 0.0 and 1.0")
	ErrNegativeInterval   = errors.New("interval must be non-negative")
	ErrNegativeDuration   = errors.New("duration must be non-negative")

	// ErrNoEligibleStrategy indicates a caller-contract violation:
	// MultiCondition.Rebalance was invoked while no child strategy
	// currently qualifies. Callers must only rebalance immediately
	// after an aggregate-true ShouldRebalance.
	ErrNoEligibleStrategy = errors.New("no eligible strategy triggered rebalance")
)

// Context carries the state a strategy evaluates a trigger against.
type Context struct {
	Tick      int
	Timestamp time.Time
	TickLower int
	TickUpper int
	CreatedAt time.Time
}

// Event records one applied rebalance: the tick it was centered on and
// the new bounds.
type Event struct {
	Timestamp    time.Time
	Tick         int
	NewTickLower int
	NewTickUpper int
}

// LogicMode selects how MultiCondition combines child results.
type LogicMode string

// Combine modes.
const (
	ModeAND LogicMode = "and"
	ModeOR  LogicMode = "or"
)

// Strategy is a rebalancing trigger and decision policy.
type Strategy interface {
	// ShouldRebalance reports whether the strategy fires for the
	// context. Every implementation validates the context's tick
	// bounds first and fails hard on inversion.
	ShouldRebalance(ctx Context) (bool, error)

	// Rebalance computes new bounds by centering a range of the same
	// width on the current tick, split by bias, and appends the
	// resulting event to the strategy's own log.
	Rebalance(ctx Context, bias float64) (int, int, error)

	// EventAt returns the event recorded at exactly the given
	// timestamp, or nil.
	EventAt(timestamp time.Time) *Event
}

// ComputeTickRange centers a range of the given width on tick, splitting
// it as left = floor(width * bias), right = width - left.
func ComputeTickRange(tick, width int, bias float64) (int, int, error) {
	if bias < 0.0 || bias > 1.0 {
		return 0, 0, ErrBiasOutOfRange
	}
	left := int(float64(width) * bias)
	right := width - left
	return tick - left, tick + right, nil
}

// checkTickBounds validates the invariant shared by every strategy.
func checkTickBounds(tickLower, tickUpper int) error {
	if tickUpper < tickLower {
		return ErrInvertedTickBounds
	}
	return nil
}

// eventLog is the append-only per-strategy event log.
type eventLog []Event

// record computes the new bounds for the context, appends the event and
// returns the bounds.
func (l *eventLog) record(ctx Context, bias float64) (int, int, error) {
	width := ctx.TickUpper - ctx.TickLower
	newLower, newUpper, err := ComputeTickRange(ctx.Tick, width, bias)
	if err != nil {
		return 0, 0, err
	}
	*l = append(*l, Event{
		Timestamp:    ctx.Timestamp,
		Tick:         ctx.Tick,
		NewTickLower: newLower,
		NewTickUpper: newUpper,
	})
	return newLower, newUpper, nil
}

// at returns the event recorded at exactly the given timestamp, or nil.
func (l eventLog) at(timestamp time.Time) *Event {
	for i := range l {
		if l[i].Timestamp.Equal(timestamp) {
			return &l[i]
		}
	}
	return nil
}
