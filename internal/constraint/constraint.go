// Package constraint models a single named safety limit: a threshold, the
// comparator that checks it, and the evidence behind it.
package constraint

import (
	"errors"
	"fmt"

	"curaframe/internal/comparator"
	dErrors "curaframe/pkg/domain-errors"
)

var (
	ErrDuplicateName     = errors.New("duplicate constraint name")
	ErrInvalidConfidence = errors.New("invalid confidence")
	ErrInvalidConstraint = errors.New("invalid constraint")
)

// Constraint is one evaluative boundary. Constraints are not mutated once
// handed to an engine; population adjustment works on clones.
//
// Invariants:
//   - Name is non-empty
//   - Comparator is set and accepts the threshold's shape
//   - Threshold is internally consistent (bounds not inverted)
//   - Severity is critical, severe or warning
type Constraint struct {
	Name       string
	Threshold  comparator.Threshold
	Comparator comparator.Comparator
	Rationale  string
	Severity   Severity
	Provenance *Provenance
}

func New(
	name string,
	threshold comparator.Threshold,
	cmp comparator.Comparator,
	rationale string,
	severity Severity,
	provenance *Provenance,
) (*Constraint, error) {
	if name == "" {
		return nil, invalid(ErrInvalidConstraint, "constraint name cannot be empty")
	}
	if cmp == nil {
		return nil, invalid(ErrInvalidConstraint, fmt.Sprintf("constraint '%s' has no comparator", name))
	}
	if severity == "" {
		severity = SeverityCritical
	}
	if !severity.IsValid() {
		return nil, invalid(ErrInvalidConstraint, fmt.Sprintf("constraint '%s' has unknown severity %q", name, severity))
	}
	c := &Constraint{
		Name:       name,
		Threshold:  threshold,
		Comparator: cmp,
		Rationale:  rationale,
		Severity:   severity,
		Provenance: provenance,
	}
	if err := c.checkThreshold(threshold); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNew is New for package-level fixtures and tests.
func MustNew(name string, threshold comparator.Threshold, cmp comparator.Comparator, rationale string, severity Severity, provenance *Provenance) *Constraint {
	c, err := New(name, threshold, cmp, rationale, severity, provenance)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Constraint) checkThreshold(t comparator.Threshold) error {
	if !c.Comparator.Accepts(t.Shape) {
		return dErrors.Wrap(
			fmt.Errorf("%w: %s does not accept %s thresholds", comparator.ErrShapeMismatch, c.Comparator.Name(), t.Shape),
			dErrors.CodeInvariantViolation, fmt.Sprintf("constraint '%s' has an unusable threshold", c.Name))
	}
	if err := t.Validate(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvariantViolation, fmt.Sprintf("constraint '%s' has an invalid threshold", c.Name))
	}
	return nil
}

// Evaluate checks a bare value. It returns true when the value satisfies
// the constraint.
func (c *Constraint) Evaluate(value any) (bool, error) {
	return c.EvaluateObservation(comparator.Observe(value))
}

// EvaluateObservation checks a value together with its uncertainty
// interval. Every comparator failure comes back as a *ComparisonError.
func (c *Constraint) EvaluateObservation(obs comparator.Observation) (bool, error) {
	ok, err := c.Comparator.Compare(obs, c.Threshold)
	if err != nil {
		return false, &ComparisonError{
			Constraint: c.Name,
			Observed:   obs.Value,
			Threshold:  c.Threshold,
			Err:        err,
		}
	}
	return ok, nil
}

// Clone returns an independent copy. Comparator and provenance are shared.
func (c *Constraint) Clone() *Constraint {
	clone := *c
	return &clone
}

// ApplyModifier replaces the threshold with m applied to it. The
// constraint is left unchanged when the modifier fails or produces a
// threshold the comparator cannot use.
func (c *Constraint) ApplyModifier(m Modifier) error {
	next, err := m.Apply(c.Threshold)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvariantViolation,
			fmt.Sprintf("modifier %s cannot adjust constraint '%s'", m, c.Name))
	}
	if err := c.checkThreshold(next); err != nil {
		return err
	}
	c.Threshold = next
	return nil
}

// Confidence is the provenance confidence, or 1.0 when the constraint
// carries no provenance.
func (c *Constraint) Confidence() float64 {
	if c.Provenance == nil {
		return 1.0
	}
	return c.Provenance.Confidence
}

// IsWellEstablished treats a constraint without provenance as established.
func (c *Constraint) IsWellEstablished() bool {
	return c.Provenance == nil || c.Provenance.IsWellEstablished()
}

func (c *Constraint) String() string {
	return fmt.Sprintf("Constraint(%s %s %s, %s)", c.Name, c.Comparator.Name(), c.Threshold, c.Severity.Label())
}

// ComparisonError reports that a value could not be compared against a
// constraint's threshold. It always matches comparator.ErrIncompatibleTypes
// as well as the comparator's own cause.
type ComparisonError struct {
	Constraint string
	Observed   any
	Threshold  comparator.Threshold
	Err        error
}

func (e *ComparisonError) Error() string {
	return fmt.Sprintf("cannot compare %s to %s threshold in constraint '%s': %v",
		comparator.TypeName(e.Observed), e.Threshold.Shape, e.Constraint, e.Err)
}

func (e *ComparisonError) Unwrap() []error {
	return []error{comparator.ErrIncompatibleTypes, e.Err}
}

// CheckUniqueNames returns a configuration error naming the first
// duplicate.
func CheckUniqueNames(constraints []*Constraint) error {
	seen := make(map[string]struct{}, len(constraints))
	for _, c := range constraints {
		if _, ok := seen[c.Name]; ok {
			return dErrors.Wrap(
				fmt.Errorf("%w: %s", ErrDuplicateName, c.Name),
				dErrors.CodeInvariantViolation, "Duplicate constraint name: "+c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return nil
}

func invalid(sentinel error, msg string) error {
	return dErrors.Wrap(sentinel, dErrors.CodeInvariantViolation, msg)
}
