// Package comparator holds the pure predicates that decide whether an
// observed value satisfies a threshold.
//
// Every comparator has the same shape, Compare(Observation, Threshold), so a
// constraint can carry one without knowing how it works. Comparators keep no
// state and never mutate their arguments; they are safe for concurrent use.
package comparator

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	// ErrIncompatibleTypes is returned when the observed value cannot be
	// compared against the threshold (e.g. a string against a number).
	ErrIncompatibleTypes = errors.New("incompatible types")
	// ErrInvalidBounds is returned for ranges whose lower bound exceeds the upper.
	ErrInvalidBounds = errors.New("invalid bounds")
	// ErrInvalidInput is returned for values outside a comparator's domain,
	// such as non-positive dissociation constants.
	ErrInvalidInput = errors.New("invalid input")
	// ErrShapeMismatch is returned when a threshold has a shape the
	// comparator does not understand.
	ErrShapeMismatch = errors.New("threshold shape mismatch")
)

// Comparator decides whether an observation satisfies a threshold.
type Comparator interface {
	// Name is the stable identifier used in catalogs and exports.
	Name() string
	// Accepts reports whether the comparator understands thresholds of shape.
	Accepts(shape Shape) bool
	// Compare returns true when obs satisfies threshold.
	Compare(obs Observation, threshold Threshold) (bool, error)
}

// Observation is a value read from a candidate, together with its
// uncertainty interval. Without recorded uncertainty the interval collapses
// onto the value itself.
type Observation struct {
	Value     any
	Lower     float64
	Upper     float64
	HasBounds bool
}

// Observe wraps a bare value without uncertainty.
func Observe(v any) Observation {
	obs := Observation{Value: v}
	if f, ok := Float(v); ok {
		obs.Lower, obs.Upper = f, f
	}
	return obs
}

// ObserveWithBounds wraps a value with an explicit (lower, upper) interval.
func ObserveWithBounds(v any, lower, upper float64) Observation {
	return Observation{Value: v, Lower: lower, Upper: upper, HasBounds: true}
}

// Nominal returns the observed value as a float.
func (o Observation) Nominal() (float64, error) {
	f, ok := Float(o.Value)
	if !ok {
		return 0, fmt.Errorf("%w: %s is not numeric", ErrIncompatibleTypes, TypeName(o.Value))
	}
	return f, nil
}

// Triple returns (nominal, lower, upper).
func (o Observation) Triple() (nominal, lower, upper float64, err error) {
	nominal, err = o.Nominal()
	if err != nil {
		return 0, 0, 0, err
	}
	if !o.HasBounds {
		return nominal, nominal, nominal, nil
	}
	return nominal, o.Lower, o.Upper, nil
}

// Float converts the numeric kinds that decoders and callers produce into
// a float64. Booleans are not numbers here.
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// TypeName describes a value's kind for error messages.
func TypeName(v any) string {
	if v == nil {
		return "nil"
	}
	if _, ok := Float(v); ok {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsPositive reports whether v is finite and strictly positive.
func IsPositive(v float64) bool {
	return IsFinite(v) && v > 0
}

// IsNonNegative reports whether v is finite and not negative.
func IsNonNegative(v float64) bool {
	return IsFinite(v) && v >= 0
}

// fn adapts a plain function to the Comparator interface.
type fn struct {
	name   string
	shapes []Shape
	cmp    func(Observation, Threshold) (bool, error)
}

func (f fn) Name() string { return f.name }

func (f fn) Accepts(shape Shape) bool {
	return slices.Contains(f.shapes, shape)
}

func (f fn) Compare(obs Observation, t Threshold) (bool, error) {
	if !f.Accepts(t.Shape) {
		return false, fmt.Errorf("%w: %s does not accept %s thresholds", ErrShapeMismatch, f.name, t.Shape)
	}
	return f.cmp(obs, t)
}

func (f fn) String() string { return f.name }

func incompatible(v any, t Threshold) error {
	return fmt.Errorf("%w: cannot compare %s to %s threshold", ErrIncompatibleTypes, TypeName(v), t.Shape)
}

func number(obs Observation, t Threshold) (float64, error) {
	f, ok := Float(obs.Value)
	if !ok {
		return 0, incompatible(obs.Value, t)
	}
	return f, nil
}
