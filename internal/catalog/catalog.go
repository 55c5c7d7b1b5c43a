// Package catalog loads named constraint definitions, bundles and
// population presets from YAML and turns them into engines.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"curaframe/internal/comparator"
	"curaframe/internal/constraint"
	"curaframe/internal/population"
	dErrors "curaframe/pkg/domain-errors"
	"curaframe/pkg/platform/sentinel"
)

//go:embed default.yaml
var defaultYAML []byte

var validate = validator.New(validator.WithRequiredStructEnabled())

// Document is the on-disk catalog shape.
type Document struct {
	Version     int                       `yaml:"version" validate:"eq=1"`
	Definitions map[string]Definition     `yaml:"definitions" validate:"required,min=1,dive"`
	Bundles     map[string]BundleSpec     `yaml:"bundles" validate:"dive"`
	Populations map[string]PopulationSpec `yaml:"populations" validate:"dive"`
}

// Definition is one reusable constraint. Several definitions may share a
// Name (logP_max and logP_range both constrain "logP"); a bundle picks one.
type Definition struct {
	Name       string               `yaml:"name" validate:"required"`
	Comparator string               `yaml:"comparator" validate:"required"`
	Threshold  comparator.Threshold `yaml:"threshold"`
	Rationale  string               `yaml:"rationale" validate:"required"`
	Severity   string               `yaml:"severity" validate:"omitempty,oneof=critical severe warning"`
	Provenance *ProvenanceSpec      `yaml:"provenance"`
}

type ProvenanceSpec struct {
	Source        string   `yaml:"source" validate:"required"`
	Confidence    float64  `yaml:"confidence" validate:"gte=0,lte=1"`
	References    []string `yaml:"references"`
	LastValidated string   `yaml:"last_validated"`
}

type BundleSpec struct {
	Description string    `yaml:"description"`
	Constraints []Include `yaml:"constraints" validate:"required,min=1,dive"`
}

// Include pulls a definition into a bundle, optionally overriding its
// threshold.
type Include struct {
	Ref       string                `yaml:"ref" validate:"required"`
	Threshold *comparator.Threshold `yaml:"threshold"`
}

type PopulationSpec struct {
	Description string                  `yaml:"description"`
	Modifiers   map[string]ModifierSpec `yaml:"modifiers" validate:"dive"`
}

// ModifierSpec serialises a constraint.Modifier. The HTTP API accepts the
// same shape as JSON. Each op's parameters are required; an omitted factor
// would otherwise read as zero and erase the threshold.
type ModifierSpec struct {
	Op        string                `json:"op" yaml:"op" validate:"required,oneof=multiply offset replace scale_bounds"`
	Factor    *float64              `json:"factor,omitempty" yaml:"factor" validate:"required_if=Op multiply"`
	Delta     *float64              `json:"delta,omitempty" yaml:"delta" validate:"required_if=Op offset"`
	Lower     *float64              `json:"lower,omitempty" yaml:"lower" validate:"required_if=Op scale_bounds"`
	Upper     *float64              `json:"upper,omitempty" yaml:"upper" validate:"required_if=Op scale_bounds"`
	Threshold *comparator.Threshold `json:"threshold,omitempty" yaml:"threshold" validate:"required_if=Op replace"`
}

// Modifier builds the constraint.Modifier this entry describes. It repeats
// the tag checks so entries built in code are held to the same rules.
func (m ModifierSpec) Modifier() (constraint.Modifier, error) {
	switch m.Op {
	case "multiply":
		factor, err := positiveFactor("factor", m.Factor)
		if err != nil {
			return nil, err
		}
		return constraint.Multiply(factor), nil
	case "offset":
		if m.Delta == nil {
			return nil, errors.New("offset modifier requires a delta")
		}
		if !comparator.IsFinite(*m.Delta) {
			return nil, fmt.Errorf("offset delta must be finite, got %v", *m.Delta)
		}
		return constraint.Offset(*m.Delta), nil
	case "replace":
		if m.Threshold == nil {
			return nil, errors.New("replace modifier requires a threshold")
		}
		return constraint.Replace(*m.Threshold), nil
	case "scale_bounds":
		lower, err := positiveFactor("lower", m.Lower)
		if err != nil {
			return nil, err
		}
		upper, err := positiveFactor("upper", m.Upper)
		if err != nil {
			return nil, err
		}
		return constraint.ScaleBounds(lower, upper), nil
	default:
		return nil, fmt.Errorf("unknown modifier op %q", m.Op)
	}
}

func positiveFactor(field string, v *float64) (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("modifier requires %s", field)
	}
	if !comparator.IsFinite(*v) || *v <= 0 {
		return 0, fmt.Errorf("modifier %s must be a positive finite number, got %v", field, *v)
	}
	return *v, nil
}

// Catalog is a validated Document. It is immutable after Load.
type Catalog struct {
	doc Document
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return Load(bytes.NewReader(defaultYAML))
})

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return defaultCatalog()
}

// LoadFile reads a catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses and validates a catalog. Every bundle is built once so a bad
// reference or threshold fails here instead of at engine construction.
func Load(r io.Reader) (*Catalog, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "decode catalog")
	}
	if err := validate.Struct(doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid catalog")
	}
	c := &Catalog{doc: doc}
	for _, name := range c.BundleNames() {
		if _, err := c.Bundle(name); err != nil {
			return nil, err
		}
	}
	for _, name := range c.PopulationNames() {
		if _, err := c.Population(name); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) BundleNames() []string {
	return slices.Sorted(maps.Keys(c.doc.Bundles))
}

func (c *Catalog) PopulationNames() []string {
	return slices.Sorted(maps.Keys(c.doc.Populations))
}

func (c *Catalog) DefinitionNames() []string {
	return slices.Sorted(maps.Keys(c.doc.Definitions))
}

// Describe returns a bundle's description.
func (c *Catalog) Describe(bundle string) (string, bool) {
	b, ok := c.doc.Bundles[bundle]
	return b.Description, ok
}

// Definition builds a single constraint from its definition id.
func (c *Catalog) Definition(id string) (*constraint.Constraint, error) {
	def, ok := c.doc.Definitions[id]
	if !ok {
		return nil, notFound("definition", id)
	}
	return build(id, def, nil)
}

// Bundle builds fresh constraints for the named bundle, in declaration
// order. Callers may mutate the result.
func (c *Catalog) Bundle(name string) ([]*constraint.Constraint, error) {
	b, ok := c.doc.Bundles[name]
	if !ok {
		return nil, notFound("bundle", name)
	}
	out := make([]*constraint.Constraint, 0, len(b.Constraints))
	for _, inc := range b.Constraints {
		def, ok := c.doc.Definitions[inc.Ref]
		if !ok {
			return nil, dErrors.New(dErrors.CodeValidation,
				fmt.Sprintf("bundle '%s' references unknown definition '%s'", name, inc.Ref))
		}
		cons, err := build(inc.Ref, def, inc.Threshold)
		if err != nil {
			return nil, fmt.Errorf("bundle '%s': %w", name, err)
		}
		out = append(out, cons)
	}
	if err := constraint.CheckUniqueNames(out); err != nil {
		return nil, fmt.Errorf("bundle '%s': %w", name, err)
	}
	return out, nil
}

// Population returns the named preset's modifiers.
func (c *Catalog) Population(name string) (population.Modifiers, error) {
	p, ok := c.doc.Populations[name]
	if !ok {
		return nil, notFound("population", name)
	}
	mods := make(population.Modifiers, len(p.Modifiers))
	for target, spec := range p.Modifiers {
		m, err := spec.Modifier()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeValidation,
				fmt.Sprintf("population '%s' modifier for '%s'", name, target))
		}
		mods[target] = m
	}
	return mods, nil
}

func build(id string, def Definition, override *comparator.Threshold) (*constraint.Constraint, error) {
	cmp, err := comparator.Lookup(def.Comparator)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("definition '%s'", id))
	}
	var prov *constraint.Provenance
	if p := def.Provenance; p != nil {
		prov, err = constraint.NewProvenance(p.Source, p.Confidence, p.References, p.LastValidated)
		if err != nil {
			return nil, err
		}
	}
	threshold := def.Threshold
	if override != nil {
		threshold = *override
	}
	severity, ok := constraint.ParseSeverity(def.Severity)
	if def.Severity != "" && !ok {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("definition '%s' has unknown severity '%s'", id, def.Severity))
	}
	if def.Severity == "" {
		severity = ""
	}
	return constraint.New(def.Name, threshold, cmp, strings.TrimSpace(def.Rationale), severity, prov)
}

func notFound(kind, name string) error {
	return dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, fmt.Sprintf("unknown %s '%s'", kind, name))
}
