package evaluation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"curaframe/internal/comparator"
	"curaframe/internal/constraint"
)

// Status is the overall outcome of an evaluation.
type Status string

const (
	StatusAccepted      Status = "accepted"
	StatusRejected      Status = "rejected"
	StatusIndeterminate Status = "indeterminate"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusAccepted, StatusRejected, StatusIndeterminate:
		return true
	}
	return false
}

// Label is the uppercase form used in summaries.
func (s Status) Label() string {
	return strings.ToUpper(string(s))
}

// Violation records one failed constraint with the values that were
// compared at evaluation time.
type Violation struct {
	Constraint string               `json:"constraint"`
	Observed   any                  `json:"observed"`
	Threshold  comparator.Threshold `json:"threshold"`
	Rationale  string               `json:"rationale"`
	Severity   constraint.Severity  `json:"severity"`
	Confidence float64              `json:"confidence"`
}

func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s: observed %s, required %s\n  Rationale: %s\n  Confidence: %.2f",
		v.Severity.Label(), v.Constraint, comparator.FormatValue(v.Observed), v.Threshold, v.Rationale, v.Confidence)
}

// Result is the outcome of one Evaluate call.
//
// Invariants:
//   - Status is rejected if and only if Violations is non-empty, except for
//     indeterminate results, which stop early and may carry no violations
type Result struct {
	ID            uuid.UUID   `json:"id"`
	Status        Status      `json:"status"`
	Violations    []Violation `json:"violations"`
	Warnings      []string    `json:"warnings"`
	Notes         string      `json:"notes,omitempty"`
	CandidateName string      `json:"candidate_name,omitempty"`
	Population    string      `json:"population,omitempty"`
	Strict        bool        `json:"strict"`
	EvaluatedAt   time.Time   `json:"evaluated_at"`
}

func (r *Result) IsAccepted() bool      { return r.Status == StatusAccepted }
func (r *Result) IsRejected() bool      { return r.Status == StatusRejected }
func (r *Result) IsIndeterminate() bool { return r.Status == StatusIndeterminate }

func (r *Result) HasCriticalViolations() bool {
	for _, v := range r.Violations {
		if v.Severity == constraint.SeverityCritical {
			return true
		}
	}
	return false
}

// HasWarnings counts both advisory messages and warning-severity
// violations.
func (r *Result) HasWarnings() bool {
	if len(r.Warnings) > 0 {
		return true
	}
	for _, v := range r.Violations {
		if v.Severity == constraint.SeverityWarning {
			return true
		}
	}
	return false
}

// Summary renders the result for people.
func (r *Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Evaluation: %s", r.Status.Label())
	if r.CandidateName != "" {
		fmt.Fprintf(&b, "\nCandidate: %s", r.CandidateName)
	}
	if len(r.Violations) > 0 {
		fmt.Fprintf(&b, "\n\nViolations (%d):", len(r.Violations))
		for _, v := range r.Violations {
			fmt.Fprintf(&b, "\n  • %s", v)
		}
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintf(&b, "\n\nWarnings (%d):", len(r.Warnings))
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "\n  • %s", w)
		}
	}
	if r.Notes != "" {
		fmt.Fprintf(&b, "\n\nNotes: %s", r.Notes)
	}
	return b.String()
}

func (r *Result) String() string {
	return fmt.Sprintf("Result(%s, %s, violations=%d)", r.CandidateName, r.Status, len(r.Violations))
}
