package comparator

import (
	"fmt"
	"strings"
)

// AllOf passes when every comparator passes. It stops at the first failure
// or error.
func AllOf(cs ...Comparator) Comparator {
	return combined{op: "all_of", cs: cs, eval: func(results func(int) (bool, error), n int) (bool, error) {
		for i := range n {
			ok, err := results(i)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}}
}

// AnyOf passes when at least one comparator passes. It stops at the first
// success or error.
func AnyOf(cs ...Comparator) Comparator {
	return combined{op: "any_of", cs: cs, eval: func(results func(int) (bool, error), n int) (bool, error) {
		for i := range n {
			ok, err := results(i)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}}
}

// NoneOf passes when no comparator passes.
func NoneOf(cs ...Comparator) Comparator {
	anyOf := AnyOf(cs...).(combined)
	return combined{op: "none_of", cs: cs, eval: func(results func(int) (bool, error), n int) (bool, error) {
		ok, err := anyOf.eval(results, n)
		if err != nil {
			return false, err
		}
		return !ok, nil
	}}
}

type combined struct {
	op   string
	cs   []Comparator
	eval func(results func(int) (bool, error), n int) (bool, error)
}

func (c combined) Name() string {
	names := make([]string, len(c.cs))
	for i, inner := range c.cs {
		names[i] = inner.Name()
	}
	return c.op + "(" + strings.Join(names, ", ") + ")"
}

// Accepts is the intersection of the inner comparators' shapes.
func (c combined) Accepts(shape Shape) bool {
	for _, inner := range c.cs {
		if !inner.Accepts(shape) {
			return false
		}
	}
	return true
}

func (c combined) Compare(obs Observation, t Threshold) (bool, error) {
	if !c.Accepts(t.Shape) {
		return false, fmt.Errorf("%w: %s does not accept %s thresholds", ErrShapeMismatch, c.op, t.Shape)
	}
	return c.eval(func(i int) (bool, error) {
		return c.cs[i].Compare(obs, t)
	}, len(c.cs))
}

// NullSafe returns def for a nil observation instead of calling c.
func NullSafe(c Comparator, def bool) Comparator {
	return nullSafe{inner: c, def: def}
}

type nullSafe struct {
	inner Comparator
	def   bool
}

func (n nullSafe) Name() string { return "null_safe(" + n.inner.Name() + ")" }

func (n nullSafe) Accepts(shape Shape) bool { return n.inner.Accepts(shape) }

func (n nullSafe) Compare(obs Observation, t Threshold) (bool, error) {
	if obs.Value == nil {
		return n.def, nil
	}
	return n.inner.Compare(obs, t)
}
