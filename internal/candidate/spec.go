package candidate

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Spec is the wire form of a candidate, shared by the HTTP API and the
// CLI's candidate files. JSON documents decode through the YAML decoder.
type Spec struct {
	Name        string            `json:"name" yaml:"name" validate:"required,max=256"`
	Properties  map[string]any    `json:"properties" yaml:"properties"`
	Uncertainty map[string]Bounds `json:"uncertainty,omitempty" yaml:"uncertainty,omitempty"`
	Provenance  string            `json:"provenance,omitempty" yaml:"provenance,omitempty"`
}

// Build converts the spec into a Candidate.
func (s Spec) Build() *Candidate {
	var opts []Option
	if s.Provenance != "" {
		opts = append(opts, WithProvenance(s.Provenance))
	}
	if len(s.Uncertainty) > 0 {
		opts = append(opts, WithUncertainty(s.Uncertainty))
	}
	return New(strings.TrimSpace(s.Name), s.Properties, opts...)
}

// Decode reads a single candidate document in YAML or JSON.
func Decode(r io.Reader) (*Candidate, error) {
	var s Spec
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode candidate: %w", err)
	}
	if strings.TrimSpace(s.Name) == "" {
		return nil, fmt.Errorf("decode candidate: name is required")
	}
	return s.Build(), nil
}
