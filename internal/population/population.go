// Package population holds the per-population threshold adjustments
// (elderly, pediatric, ...) and applies them to constraint lists without
// touching the originals.
package population

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"curaframe/internal/constraint"
)

// Modifiers maps a constraint name to the adjustment for that constraint.
type Modifiers map[string]constraint.Modifier

// Registry is written during setup and read during evaluation. Concurrent
// Add and Apply are safe but Apply sees whichever registration landed last.
type Registry struct {
	mu          sync.RWMutex
	populations map[string]Modifiers
	logger      *slog.Logger
}

type Option func(*Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		populations: make(map[string]Modifiers),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add registers a population, overwriting any earlier registration of the
// same name.
func (r *Registry) Add(name string, modifiers Modifiers) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.populations[name]; ok {
		r.logger.Warn("overwriting existing population", "population", name)
	}
	r.populations[name] = maps.Clone(modifiers)
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.populations[name]
	return ok
}

// Names lists registered populations in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := slices.Sorted(maps.Keys(r.populations))
	if names == nil {
		names = []string{}
	}
	return names
}

// Modifiers returns a copy of a population's modifiers.
func (r *Registry) Modifiers(name string) (Modifiers, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.populations[name]
	return maps.Clone(m), ok
}

// Apply returns the effective constraints for a population.
//
// An empty population returns the input list itself. An unregistered one
// does too, after logging a warning, and reports known=false. Otherwise a
// new list is built in which modified constraints are clones and the rest
// are passed through.
func (r *Registry) Apply(ctx context.Context, population string, constraints []*constraint.Constraint) (adjusted []*constraint.Constraint, known bool, err error) {
	if population == "" {
		return constraints, true, nil
	}
	modifiers, ok := r.Modifiers(population)
	if !ok {
		r.logger.WarnContext(ctx, "unknown population, using base constraints",
			"population", population,
			"available", r.Names())
		return constraints, false, nil
	}

	adjusted = make([]*constraint.Constraint, 0, len(constraints))
	for _, c := range constraints {
		m, ok := modifiers[c.Name]
		if !ok {
			adjusted = append(adjusted, c)
			continue
		}
		clone := c.Clone()
		if err := clone.ApplyModifier(m); err != nil {
			return nil, true, err
		}
		r.logger.DebugContext(ctx, "applied population modifier",
			"population", population,
			"constraint", c.Name,
			"from", c.Threshold.String(),
			"to", clone.Threshold.String())
		adjusted = append(adjusted, clone)
	}
	return adjusted, true, nil
}
