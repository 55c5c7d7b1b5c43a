// Package candidate models the record being evaluated: a named bag of
// predicted property values with optional uncertainty intervals.
package candidate

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"curaframe/internal/comparator"
)

// ErrPropertyNotFound is returned when a property is absent or nil.
var ErrPropertyNotFound = errors.New("property not found")

// Bounds is an uncertainty interval for one property.
type Bounds struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// Candidate is immutable once constructed; the constructor copies its
// maps so callers cannot change it during evaluation.
type Candidate struct {
	name        string
	properties  map[string]any
	provenance  string
	uncertainty map[string]Bounds
}

type Option func(*Candidate)

// WithProvenance records how the property values were obtained.
func WithProvenance(p string) Option {
	return func(c *Candidate) { c.provenance = p }
}

// WithUncertainty attaches (lower, upper) intervals to properties.
func WithUncertainty(u map[string]Bounds) Option {
	return func(c *Candidate) { c.uncertainty = maps.Clone(u) }
}

func New(name string, properties map[string]any, opts ...Option) *Candidate {
	c := &Candidate{
		name:       name,
		properties: maps.Clone(properties),
	}
	if c.properties == nil {
		c.properties = map[string]any{}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Candidate) Name() string       { return c.name }
func (c *Candidate) Provenance() string { return c.provenance }

// Get returns a property value. Nil values count as absent.
func (c *Candidate) Get(property string) (any, bool) {
	v, ok := c.properties[property]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (c *Candidate) Has(property string) bool {
	_, ok := c.Get(property)
	return ok
}

// Properties returns a copy of the property map.
func (c *Candidate) Properties() map[string]any {
	return maps.Clone(c.properties)
}

// Uncertainty returns a copy of the uncertainty map, nil when none was set.
func (c *Candidate) Uncertainty() map[string]Bounds {
	return maps.Clone(c.uncertainty)
}

// PropertyNames lists properties in sorted order.
func (c *Candidate) PropertyNames() []string {
	return slices.Sorted(maps.Keys(c.properties))
}

// GetWithUncertainty returns (nominal, lower, upper). Without recorded
// uncertainty the interval degenerates to (v, v, v).
func (c *Candidate) GetWithUncertainty(property string) (nominal, lower, upper float64, err error) {
	v, ok := c.Get(property)
	if !ok {
		return 0, 0, 0, fmt.Errorf("%w: '%s'", ErrPropertyNotFound, property)
	}
	f, ok := comparator.Float(v)
	if !ok {
		return 0, 0, 0, fmt.Errorf("%w: property '%s' is %s", comparator.ErrIncompatibleTypes, property, comparator.TypeName(v))
	}
	if b, ok := c.uncertainty[property]; ok {
		return f, b.Lower, b.Upper, nil
	}
	return f, f, f, nil
}

// Observe builds the comparator observation for a property, carrying its
// uncertainty interval when one is recorded.
func (c *Candidate) Observe(property string) (comparator.Observation, bool) {
	v, ok := c.Get(property)
	if !ok {
		return comparator.Observation{}, false
	}
	if b, ok := c.uncertainty[property]; ok {
		return comparator.ObserveWithBounds(v, b.Lower, b.Upper), true
	}
	return comparator.Observe(v), true
}

func (c *Candidate) String() string {
	parts := make([]string, 0, len(c.properties))
	for _, k := range c.PropertyNames() {
		parts = append(parts, fmt.Sprintf("%s=%v", k, c.properties[k]))
	}
	return fmt.Sprintf("Candidate(%s: %s)", c.name, strings.Join(parts, ", "))
}
