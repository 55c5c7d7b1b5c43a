// Package evaluation runs candidates through a fixed set of safety
// constraints and records the outcome.
//
// The Engine is the pure core: no I/O beyond logging, synchronous, and
// safe for concurrent Evaluate calls. Service layers persistence,
// metrics, tracing and audit on top of it.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"curaframe/internal/comparator"
	"curaframe/internal/constraint"
	"curaframe/internal/population"
	dErrors "curaframe/pkg/domain-errors"
)

// DefaultName is used when the engine is not given a name.
const DefaultName = "CuraFrame"

// Subject is anything that can be evaluated: it has a name and yields
// observations for named properties. *candidate.Candidate satisfies it.
type Subject interface {
	Name() string
	Observe(property string) (comparator.Observation, bool)
}

// Engine evaluates subjects against its constraints. The constraint list
// is fixed at construction; populations may be added during setup.
type Engine struct {
	name        string
	constraints []*constraint.Constraint
	byName      map[string]*constraint.Constraint
	populations *population.Registry
	history     *History
	logger      *slog.Logger
	now         func() time.Time
	newID       func() uuid.UUID
}

type Option func(*Engine)

func WithName(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.name = name
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHistoryLimit bounds the in-memory history; 0 keeps every result.
func WithHistoryLimit(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.history = newHistory(n)
		}
	}
}

// WithClock overrides time.Now for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New builds an engine. Duplicate constraint names are a configuration
// error. Critical constraints whose provenance needs verification are
// logged but accepted.
func New(constraints []*constraint.Constraint, opts ...Option) (*Engine, error) {
	e := &Engine{
		name:    DefaultName,
		history: newHistory(0),
		logger:  slog.Default(),
		now:     time.Now,
		newID:   uuid.New,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.populations = population.NewRegistry(population.WithLogger(e.logger))

	for _, c := range constraints {
		if c == nil {
			return nil, dErrors.Wrap(constraint.ErrInvalidConstraint, dErrors.CodeInvariantViolation, "nil constraint")
		}
	}
	if err := constraint.CheckUniqueNames(constraints); err != nil {
		return nil, err
	}
	e.constraints = make([]*constraint.Constraint, len(constraints))
	copy(e.constraints, constraints)
	e.byName = make(map[string]*constraint.Constraint, len(constraints))
	for _, c := range e.constraints {
		e.byName[c.Name] = c
		if c.Severity == constraint.SeverityCritical && c.Provenance != nil && c.Provenance.RequiresVerification() {
			e.logger.Warn(fmt.Sprintf("CRITICAL constraint '%s' has low confidence (%.2f). Consider additional validation.",
				c.Name, c.Provenance.Confidence),
				"engine", e.name,
				"constraint", c.Name,
				"confidence", c.Provenance.Confidence)
		}
	}
	return e, nil
}

// AddPopulation registers population-specific modifiers. Each modifier is
// tried against its constraint first so a bad adjustment fails here rather
// than during evaluation. Modifiers naming unknown constraints are kept
// and logged.
func (e *Engine) AddPopulation(name string, modifiers population.Modifiers) error {
	if name == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "population name cannot be empty")
	}
	for constraintName, m := range modifiers {
		c, ok := e.byName[constraintName]
		if !ok {
			e.logger.Warn("population modifier names unknown constraint",
				"population", name,
				"constraint", constraintName)
			continue
		}
		if m == nil {
			return dErrors.New(dErrors.CodeInvariantViolation,
				fmt.Sprintf("population '%s' has no modifier for '%s'", name, constraintName))
		}
		if err := c.Clone().ApplyModifier(m); err != nil {
			return err
		}
	}
	e.populations.Add(name, modifiers)
	return nil
}

// Evaluate checks subject against every effective constraint in order.
//
// With strict set, the first missing property stops evaluation with an
// indeterminate result. Without it, missing properties are skipped with a
// warning. A comparison failure always stops evaluation as indeterminate.
// Every result is appended to history before it is returned.
func (e *Engine) Evaluate(ctx context.Context, subject Subject, populationName string, strict bool) *Result {
	result := &Result{
		ID:            e.newID(),
		CandidateName: subject.Name(),
		Population:    populationName,
		Strict:        strict,
		EvaluatedAt:   e.now().UTC(),
		Violations:    []Violation{},
		Warnings:      []string{},
	}
	defer e.history.Append(result)

	constraints, _, err := e.populations.Apply(ctx, populationName, e.constraints)
	if err != nil {
		e.logger.ErrorContext(ctx, "population adjustment failed",
			"population", populationName,
			"error", err)
		return e.indeterminate(result, fmt.Sprintf("Population adjustment error: %v", err))
	}

	for _, c := range constraints {
		obs, ok := subject.Observe(c.Name)
		if !ok {
			if strict {
				return e.indeterminate(result, "Missing required property: "+c.Name)
			}
			result.Warnings = append(result.Warnings, fmt.Sprintf("property '%s' missing, constraint skipped", c.Name))
			continue
		}

		satisfied, err := c.EvaluateObservation(obs)
		if err != nil {
			e.logger.ErrorContext(ctx, "constraint evaluation failed",
				"candidate", result.CandidateName,
				"constraint", c.Name,
				"error", err)
			return e.indeterminate(result, fmt.Sprintf("Constraint evaluation error: %v", err))
		}
		if satisfied {
			continue
		}

		result.Violations = append(result.Violations, Violation{
			Constraint: c.Name,
			Observed:   obs.Value,
			Threshold:  c.Threshold,
			Rationale:  c.Rationale,
			Severity:   c.Severity,
			Confidence: c.Confidence(),
		})
		if !c.IsWellEstablished() {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"Violation of '%s' based on moderate-confidence constraint (%.2f)", c.Name, c.Confidence()))
		}
	}

	if len(result.Violations) > 0 {
		result.Status = StatusRejected
		result.Notes = fmt.Sprintf("Failed %d constraint(s)", len(result.Violations))
	} else {
		result.Status = StatusAccepted
		result.Notes = "All constraints satisfied"
	}
	return result
}

func (e *Engine) indeterminate(r *Result, notes string) *Result {
	r.Status = StatusIndeterminate
	r.Violations = []Violation{}
	r.Warnings = []string{}
	r.Notes = notes
	return r
}

func (e *Engine) Name() string { return e.name }

// Constraint looks a constraint up by name.
func (e *Engine) Constraint(name string) (*constraint.Constraint, bool) {
	c, ok := e.byName[name]
	return c, ok
}

// ConstraintNames lists constraint names in evaluation order.
func (e *Engine) ConstraintNames() []string {
	names := make([]string, len(e.constraints))
	for i, c := range e.constraints {
		names[i] = c.Name
	}
	return names
}

// Constraints returns the base constraints in evaluation order.
func (e *Engine) Constraints() []*constraint.Constraint {
	out := make([]*constraint.Constraint, len(e.constraints))
	copy(out, e.constraints)
	return out
}

// EffectiveConstraints returns the constraints a population would be
// evaluated against.
func (e *Engine) EffectiveConstraints(ctx context.Context, populationName string) ([]*constraint.Constraint, error) {
	cs, _, err := e.populations.Apply(ctx, populationName, e.constraints)
	return cs, err
}

// Populations lists registered population names.
func (e *Engine) Populations() []string {
	return e.populations.Names()
}

// HasPopulation reports whether a population is registered.
func (e *Engine) HasPopulation(name string) bool {
	return e.populations.Has(name)
}

// History returns every retained result, oldest first.
func (e *Engine) History() []*Result {
	return e.history.All()
}

// HistoryFor filters history by exact candidate name.
func (e *Engine) HistoryFor(candidateName string) []*Result {
	return e.history.For(candidateName)
}

// ResetHistory drops all retained results.
func (e *Engine) ResetHistory() {
	e.history.Reset()
}

func (e *Engine) String() string {
	return fmt.Sprintf("CuraFrame(name='%s', constraints=%d, populations=%d)",
		e.name, len(e.constraints), len(e.populations.Names()))
}

// IsConfigurationError reports whether err came from invalid engine,
// constraint or population setup.
func IsConfigurationError(err error) bool {
	return dErrors.HasCode(err, dErrors.CodeInvariantViolation) ||
		errors.Is(err, constraint.ErrDuplicateName)
}
