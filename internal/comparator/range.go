package comparator

import (
	"fmt"
	"math"
)

// InRange reports whether value lies within [lower, upper] (inclusive) or
// (lower, upper). NaN is never in range. Inverted bounds are an error.
func InRange(value, lower, upper float64, inclusive bool) (bool, error) {
	if lower > upper {
		return false, fmt.Errorf("%w: lower (%s) > upper (%s)", ErrInvalidBounds, formatFloat(lower), formatFloat(upper))
	}
	if math.IsNaN(value) {
		return false, nil
	}
	if inclusive {
		return lower <= value && value <= upper, nil
	}
	return lower < value && value < upper, nil
}

// InTolerance reports whether |value - target| <= tolerance. In relative
// mode the tolerance is a fraction of |target|.
func InTolerance(value, target, tolerance float64, relative bool) bool {
	allowed := tolerance
	if relative {
		allowed = abs(target * tolerance)
	}
	return abs(value-target) <= allowed
}

// WithinRange checks membership of a bounds threshold.
func WithinRange(inclusive bool) Comparator {
	name := "within_range"
	if !inclusive {
		name = "within_range_exclusive"
	}
	return fn{
		name:   name,
		shapes: []Shape{ShapeBounds},
		cmp: func(obs Observation, t Threshold) (bool, error) {
			v, err := number(obs, t)
			if err != nil {
				return false, err
			}
			return InRange(v, t.Lower, t.Upper, inclusive)
		},
	}
}

// OutsideRange is the negation of WithinRange; errors pass through
// unchanged.
func OutsideRange(inclusive bool) Comparator {
	within := WithinRange(inclusive)
	name := "outside_range"
	if !inclusive {
		name = "outside_range_exclusive"
	}
	return fn{
		name:   name,
		shapes: []Shape{ShapeBounds},
		cmp: func(obs Observation, t Threshold) (bool, error) {
			ok, err := within.Compare(obs, t)
			if err != nil {
				return false, err
			}
			return !ok, nil
		},
	}
}

// WithinTolerance reads an epsilon threshold as (target, tolerance).
func WithinTolerance(relative bool) Comparator {
	name := "within_tolerance"
	if relative {
		name = "within_relative_tolerance"
	}
	return fn{
		name:   name,
		shapes: []Shape{ShapeEpsilon},
		cmp: func(obs Observation, t Threshold) (bool, error) {
			v, err := number(obs, t)
			if err != nil {
				return false, err
			}
			return InTolerance(v, t.Value, t.Epsilon, relative), nil
		},
	}
}
