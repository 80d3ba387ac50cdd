package rebalance

import "time"

// MultiCondition folds the results of an ordered list of child
// strategies with AND or OR. An empty list never fires.
type MultiCondition struct {
	strategies []Strategy
	mode       LogicMode
}

// NewMultiCondition creates a composite strategy over children.
func NewMultiCondition(strategies []Strategy, mode LogicMode) *MultiCondition {
	return &MultiCondition{strategies: strategies, mode: mode}
}

// ShouldRebalance implements Strategy. Every child is evaluated even
// when the aggregate is already decided: stateful children track their
// own markers per observation.
func (s *MultiCondition) ShouldRebalance(ctx Context) (bool, error) {
	if err := checkTickBounds(ctx.TickLower, ctx.TickUpper); err != nil {
		return false, err
	}
	if len(s.strategies) == 0 {
		return false, nil
	}

	results := make([]bool, len(s.strategies))
	for i, child := range s.strategies {
		fire, err := child.ShouldRebalance(ctx)
		if err != nil {
			return false, err
		}
		results[i] = fire
	}

	if s.mode == ModeAND {
		for _, fire := range results {
			if !fire {
				return false, nil
			}
		}
		return true, nil
	}
	for _, fire := range results {
		if fire {
			return true, nil
		}
	}
	return false, nil
}

// Rebalance implements Strategy: it delegates to the first child, in
// list order, whose own ShouldRebalance currently holds. Returns
// ErrNoEligibleStrategy when none qualifies.
func (s *MultiCondition) Rebalance(ctx Context, bias float64) (int, int, error) {
	for _, child := range s.strategies {
		fire, err := child.ShouldRebalance(ctx)
		if err != nil {
			return 0, 0, err
		}
		if fire {
			return child.Rebalance(ctx, bias)
		}
	}
	return 0, 0, ErrNoEligibleStrategy
}

// EventAt implements Strategy: the first child event recorded exactly at
// the timestamp wins.
func (s *MultiCondition) EventAt(timestamp time.Time) *Event {
	for _, child := range s.strategies {
		if event := child.EventAt(timestamp); event != nil {
			return event
		}
	}
	return nil
}

var _ Strategy = (*MultiCondition)(nil)
