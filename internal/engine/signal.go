package engine

import "math"

// SignalThresholds holds the entry-signal decision boundaries.
// Percent values except RVol, which is a ratio.
type SignalThresholds struct {
	ReversionPct float64 // |deviation| above this -> mean reversion
	BouncePct    float64 // |deviation| below this -> consolidation zone
	RVol         float64 // relative volume above this -> bias
}

// DefaultSignalThresholds returns the standard decision boundaries.
func DefaultSignalThresholds() SignalThresholds {
	return SignalThresholds{
		ReversionPct: 2.0,
		BouncePct:    0.2,
		RVol:         2.0,
	}
}

// classifySignal maps a record's deviation/rvol state to exactly one
// entry signal. The rule order is deliberate policy: reversion beats
// bias beats bounce.
func classifySignal(deviation *float64, rvol, price float64, vwap *float64, th SignalThresholds) Signal {
	if deviation == nil {
		return SignalNone
	}

	if math.Abs(*deviation) > th.ReversionPct {
		if *deviation > 0 {
			return SignalShortReversion
		}
		return SignalLongReversion
	}

	if rvol > th.RVol {
		switch {
		case vwap != nil && price > *vwap:
			return SignalLongBias
		case vwap != nil && price < *vwap:
			return SignalShortBias
		default:
			return SignalNone
		}
	}

	if math.Abs(*deviation) < th.BouncePct {
		return SignalBounceZone
	}

	return SignalNone
}

// directionOf derives the arrow from the change-from-open sign.
// Unknown change renders flat.
func directionOf(change *float64) Direction {
	switch {
	case change == nil:
		return DirectionFlat
	case *change > 0:
		return DirectionUp
	case *change < 0:
		return DirectionDown
	default:
		return DirectionFlat
	}
}
