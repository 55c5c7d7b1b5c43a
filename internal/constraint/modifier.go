package constraint

import (
	"fmt"

	"curaframe/internal/comparator"
)

// Modifier derives a population-specific threshold from a base threshold.
// The set is closed so adjustments stay inspectable and serialisable.
type Modifier interface {
	Apply(t comparator.Threshold) (comparator.Threshold, error)
	String() string
	modifier()
}

// Multiply scales a scalar, both bounds, or an epsilon threshold's limit.
func Multiply(factor float64) Modifier { return multiply{factor: factor} }

// Offset shifts a scalar, both bounds, or an epsilon threshold's limit.
func Offset(delta float64) Modifier { return offset{delta: delta} }

// Replace substitutes the threshold outright.
func Replace(t comparator.Threshold) Modifier { return replace{t: t} }

// ScaleBounds scales the lower and upper bound of a range independently.
func ScaleBounds(lowerFactor, upperFactor float64) Modifier {
	return scaleBounds{lower: lowerFactor, upper: upperFactor}
}

type multiply struct{ factor float64 }

func (m multiply) modifier() {}

func (m multiply) String() string { return "×" + comparator.FormatValue(m.factor) }

func (m multiply) Apply(t comparator.Threshold) (comparator.Threshold, error) {
	switch t.Shape {
	case comparator.ShapeScalar, comparator.ShapeEpsilon:
		t.Value *= m.factor
	case comparator.ShapeBounds:
		t.Lower *= m.factor
		t.Upper *= m.factor
	default:
		return t, notNumeric(m, t)
	}
	return t, nil
}

type offset struct{ delta float64 }

func (o offset) modifier() {}

func (o offset) String() string { return fmt.Sprintf("%+g", o.delta) }

func (o offset) Apply(t comparator.Threshold) (comparator.Threshold, error) {
	switch t.Shape {
	case comparator.ShapeScalar, comparator.ShapeEpsilon:
		t.Value += o.delta
	case comparator.ShapeBounds:
		t.Lower += o.delta
		t.Upper += o.delta
	default:
		return t, notNumeric(o, t)
	}
	return t, nil
}

type replace struct{ t comparator.Threshold }

func (r replace) modifier() {}

func (r replace) String() string { return "=" + r.t.String() }

func (r replace) Apply(comparator.Threshold) (comparator.Threshold, error) {
	return r.t, nil
}

type scaleBounds struct{ lower, upper float64 }

func (s scaleBounds) modifier() {}

func (s scaleBounds) String() string {
	return fmt.Sprintf("bounds×(%s, %s)", comparator.FormatValue(s.lower), comparator.FormatValue(s.upper))
}

func (s scaleBounds) Apply(t comparator.Threshold) (comparator.Threshold, error) {
	if t.Shape != comparator.ShapeBounds {
		return t, fmt.Errorf("%w: %s needs a bounds threshold, got %s", comparator.ErrShapeMismatch, s, t.Shape)
	}
	t.Lower *= s.lower
	t.Upper *= s.upper
	return t, nil
}

func notNumeric(m Modifier, t comparator.Threshold) error {
	return fmt.Errorf("%w: %s cannot adjust a %s threshold", comparator.ErrShapeMismatch, m, t.Shape)
}
