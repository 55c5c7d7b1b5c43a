package comparator

import (
	"fmt"
	"math"
	"strconv"
)

// Shape tags which fields of a Threshold are meaningful.
type Shape string

const (
	ShapeScalar  Shape = "scalar"
	ShapeBounds  Shape = "bounds"
	ShapeEpsilon Shape = "epsilon"
	ShapeLiteral Shape = "literal"
)

// IsValid reports whether s is a known shape.
func (s Shape) IsValid() bool {
	switch s {
	case ShapeScalar, ShapeBounds, ShapeEpsilon, ShapeLiteral:
		return true
	}
	return false
}

// Threshold is a tagged union of the limit shapes comparators understand:
//
//	scalar   Value
//	bounds   Lower, Upper
//	epsilon  Value, Epsilon (a limit or target with its tolerance)
//	literal  Text
type Threshold struct {
	Shape   Shape   `json:"shape" yaml:"shape"`
	Value   float64 `json:"value,omitempty" yaml:"value,omitempty"`
	Lower   float64 `json:"lower,omitempty" yaml:"lower,omitempty"`
	Upper   float64 `json:"upper,omitempty" yaml:"upper,omitempty"`
	Epsilon float64 `json:"epsilon,omitempty" yaml:"epsilon,omitempty"`
	Text    string  `json:"text,omitempty" yaml:"text,omitempty"`
}

func Scalar(v float64) Threshold {
	return Threshold{Shape: ShapeScalar, Value: v}
}

func Bounds(lower, upper float64) Threshold {
	return Threshold{Shape: ShapeBounds, Lower: lower, Upper: upper}
}

func WithEpsilon(v, epsilon float64) Threshold {
	return Threshold{Shape: ShapeEpsilon, Value: v, Epsilon: epsilon}
}

func Literal(text string) Threshold {
	return Threshold{Shape: ShapeLiteral, Text: text}
}

// Validate checks the threshold is internally consistent.
func (t Threshold) Validate() error {
	switch t.Shape {
	case ShapeScalar, ShapeLiteral:
		return nil
	case ShapeBounds:
		if t.Lower > t.Upper {
			return fmt.Errorf("%w: lower (%s) > upper (%s)", ErrInvalidBounds, formatFloat(t.Lower), formatFloat(t.Upper))
		}
		return nil
	case ShapeEpsilon:
		if t.Epsilon < 0 || math.IsNaN(t.Epsilon) {
			return fmt.Errorf("%w: epsilon must be non-negative, got %s", ErrInvalidInput, formatFloat(t.Epsilon))
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown shape %q", ErrShapeMismatch, t.Shape)
	}
}

// String renders the threshold for reports and exports, e.g. 4.0,
// (1.0, 10.0) or (100.0, 0.1).
func (t Threshold) String() string {
	switch t.Shape {
	case ShapeScalar:
		return formatFloat(t.Value)
	case ShapeBounds:
		return "(" + formatFloat(t.Lower) + ", " + formatFloat(t.Upper) + ")"
	case ShapeEpsilon:
		return "(" + formatFloat(t.Value) + ", " + formatFloat(t.Epsilon) + ")"
	case ShapeLiteral:
		return strconv.Quote(t.Text)
	default:
		return "<invalid threshold>"
	}
}

// FormatValue renders an observed value the same way thresholds are rendered.
func FormatValue(v any) string {
	if f, ok := Float(v); ok {
		return formatFloat(f)
	}
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return fmt.Sprintf("%v", v)
}

// formatFloat keeps one decimal on whole numbers so 4 reads as 4.0.
func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
