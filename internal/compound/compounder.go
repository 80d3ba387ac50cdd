// Package compound implements the fee-compounding trigger policy: folding
// accrued fees back into a position's principal amounts.
package compound

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"uniswap-v3-backtester/internal/domain"
)

// ErrNegativeInterval is returned for negative intervals and delays.
var ErrNegativeInterval = errors.New("interval must be non-negative")

// LogicMode selects how a Compounder combines child trigger results.
type LogicMode string

// Combine modes.
const (
	ModeAND LogicMode = "and"
	ModeOR  LogicMode = "or"
)

// Context carries the state a compounding decision is evaluated against.
// AccumulatedFees is the transient fee counter since the last compound.
type Context struct {
	Timestamp       time.Time
	CreatedAt       time.Time
	AccumulatedFees domain.Fee
}

// Event records one applied compound: the fee amounts folded into the
// position.
type Event struct {
	Timestamp   time.Time
	AddedToken0 decimal.Decimal
	AddedToken1 decimal.Decimal
}

// Trigger is a compounding trigger condition.
type Trigger interface {
	// Triggered reports whether the trigger fires for the context.
	Triggered(ctx Context) bool
}

// TimeTrigger fires once the elapsed time since the last compound, or
// since position creation, reaches a fixed delay.
type TimeTrigger struct {
	startDelay     time.Duration
	lastCompounded *time.Time
}

// NewTimeTrigger creates a time trigger. Negative delays are rejected.
func NewTimeTrigger(startDelay time.Duration) (*TimeTrigger, error) {
	if startDelay < 0 {
		return nil, ErrNegativeInterval
	}
	return &TimeTrigger{startDelay: startDelay}, nil
}

// Triggered implements Trigger.
func (t *TimeTrigger) Triggered(ctx Context) bool {
	reference := ctx.CreatedAt
	if t.lastCompounded != nil {
		reference = *t.lastCompounded
	}
	return ctx.Timestamp.Sub(reference) >= t.startDelay
}

var _ Trigger = (*TimeTrigger)(nil)

// Compounder folds accrued fees back into a position. It enforces a
// minimum interval between compounds and combines zero or more child
// triggers with AND or OR; with no children the trigger side is always
// true. The event log is an independent all-time ledger, decoupled from
// the transient accumulator in the context.
type Compounder struct {
	interval       time.Duration
	triggers       []Trigger
	mode           LogicMode
	lastCompounded *time.Time
	events         []Event
}

// NewCompounder creates a compounder with a minimum interval between
// compounds. Negative intervals are rejected.
func NewCompounder(interval time.Duration, triggers []Trigger, mode LogicMode) (*Compounder, error) {
	if interval < 0 {
		return nil, ErrNegativeInterval
	}
	return &Compounder{interval: interval, triggers: triggers, mode: mode}, nil
}

// ShouldCompound reports whether a compound may fire for the context.
func (c *Compounder) ShouldCompound(ctx Context) bool {
	if c.lastCompounded != nil && ctx.Timestamp.Sub(*c.lastCompounded) < c.interval {
		return false
	}
	if len(c.triggers) == 0 {
		return true
	}

	if c.mode == ModeAND {
		for _, t := range c.triggers {
			if !t.Triggered(ctx) {
				return false
			}
		}
		return true
	}
	for _, t := range c.triggers {
		if t.Triggered(ctx) {
			return true
		}
	}
	return false
}

// Compound folds fees into the position's principal amounts, resets the
// context's transient accumulator, appends the event to the all-time
// ledger and records the compound timestamp.
func (c *Compounder) Compound(pos *domain.Position, fees domain.Fee, ctx *Context) {
	pos.Amount0 = pos.Amount0.Add(fees.Token0)
	pos.Amount1 = pos.Amount1.Add(fees.Token1)

	c.events = append(c.events, Event{
		Timestamp:   ctx.Timestamp,
		AddedToken0: fees.Token0,
		AddedToken1: fees.Token1,
	})

	ctx.AccumulatedFees = domain.ZeroFee()
	ts := ctx.Timestamp
	c.lastCompounded = &ts
}

// EventAt returns the event recorded at exactly the given timestamp,
// or nil.
func (c *Compounder) EventAt(timestamp time.Time) *Event {
	for i := range c.events {
		if c.events[i].Timestamp.Equal(timestamp) {
			return &c.events[i]
		}
	}
	return nil
}

// Events returns the all-time compound ledger.
func (c *Compounder) Events() []Event {
	return c.events
}

// TotalCompounded returns the all-time total of folded fees.
func (c *Compounder) TotalCompounded() domain.Fee {
	total := domain.ZeroFee()
	for _, e := range c.events {
		total = total.Add(domain.Fee{Token0: e.AddedToken0, Token1: e.AddedToken1})
	}
	return total
}
