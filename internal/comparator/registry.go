package comparator

import (
	"fmt"
	"maps"
	"slices"
)

var registry = func() map[string]Comparator {
	all := []Comparator{
		LessThan, LessOrEqual, GreaterThan, GreaterOrEqual, Equal, NotEqual,
		ApproxEqual, SignificantlyGreater, SignificantlyLess,
		WithinRange(true), WithinRange(false), OutsideRange(true), OutsideRange(false),
		WithinTolerance(false), WithinTolerance(true),
		RatioGreaterThan, RatioLessThan, SelectivitySatisfied,
		ConservativeUpperBound, ConservativeLowerBound,
	}
	m := make(map[string]Comparator, len(all))
	for _, c := range all {
		m[c.Name()] = c
	}
	return m
}()

// Lookup resolves a comparator by its catalog name, e.g. "less_than_or_equal".
func Lookup(name string) (Comparator, error) {
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown comparator %q", ErrInvalidInput, name)
	}
	return c, nil
}

// Names lists the registered comparator names in sorted order.
func Names() []string {
	return slices.Sorted(maps.Keys(registry))
}
