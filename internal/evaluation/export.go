package evaluation

import "curaframe/internal/constraint"

// Export is a documentation snapshot of an engine's configuration. The
// threshold is rendered as text; the snapshot is not meant to be parsed
// back into constraints.
type Export struct {
	FrameworkName string               `json:"framework_name" yaml:"framework_name"`
	Constraints   []ExportedConstraint `json:"constraints" yaml:"constraints"`
	Populations   []string             `json:"populations" yaml:"populations"`
}

type ExportedConstraint struct {
	Name       string              `json:"name" yaml:"name"`
	Threshold  string              `json:"threshold" yaml:"threshold"`
	Rationale  string              `json:"rationale" yaml:"rationale"`
	Severity   constraint.Severity `json:"severity" yaml:"severity"`
	Provenance *ExportedProvenance `json:"provenance" yaml:"provenance"`
}

type ExportedProvenance struct {
	Source     string   `json:"source" yaml:"source"`
	Confidence float64  `json:"confidence" yaml:"confidence"`
	References []string `json:"references" yaml:"references"`
}

func (e *Engine) Export() Export {
	out := Export{
		FrameworkName: e.name,
		Constraints:   make([]ExportedConstraint, 0, len(e.constraints)),
		Populations:   e.populations.Names(),
	}
	for _, c := range e.constraints {
		out.Constraints = append(out.Constraints, ExportConstraint(c))
	}
	return out
}

// ExportConstraint renders one constraint the way Export does.
func ExportConstraint(c *constraint.Constraint) ExportedConstraint {
	ec := ExportedConstraint{
		Name:      c.Name,
		Threshold: c.Threshold.String(),
		Rationale: c.Rationale,
		Severity:  c.Severity,
	}
	if p := c.Provenance; p != nil {
		refs := make([]string, len(p.References))
		copy(refs, p.References)
		ec.Provenance = &ExportedProvenance{
			Source:     p.SourceType,
			Confidence: p.Confidence,
			References: refs,
		}
	}
	return ec
}
