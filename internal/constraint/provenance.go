package constraint

import (
	"fmt"
	"math"

	dErrors "curaframe/pkg/domain-errors"
	"curaframe/pkg/platform/strings"
)

const (
	// WellEstablishedConfidence is the minimum confidence for a constraint
	// to count as well established.
	WellEstablishedConfidence = 0.8
	// WellEstablishedReferences is the minimum number of references for a
	// constraint to count as well established.
	WellEstablishedReferences = 3
	// VerificationConfidence is the confidence below which a constraint
	// should be re-verified before it gates anything.
	VerificationConfidence = 0.6
)

// Provenance records where a constraint came from and how much it is
// trusted. It is immutable once built and shared between clones.
//
// Invariants:
//   - Confidence is within [0, 1]
//   - References are trimmed and unique
type Provenance struct {
	SourceType    string   `json:"source"`
	Confidence    float64  `json:"confidence"`
	References    []string `json:"references"`
	LastValidated string   `json:"last_validated,omitempty"`
}

func NewProvenance(sourceType string, confidence float64, references []string, lastValidated string) (*Provenance, error) {
	if math.IsNaN(confidence) || confidence < 0 || confidence > 1 {
		return nil, dErrors.Wrap(
			fmt.Errorf("%w: got %v", ErrInvalidConfidence, confidence),
			dErrors.CodeInvariantViolation, "confidence must be in [0,1]")
	}
	refs := strings.DedupeAndTrim(references)
	if refs == nil {
		refs = []string{}
	}
	return &Provenance{
		SourceType:    sourceType,
		Confidence:    confidence,
		References:    refs,
		LastValidated: lastValidated,
	}, nil
}

// IsWellEstablished requires high confidence and several independent
// references.
func (p *Provenance) IsWellEstablished() bool {
	return p.Confidence >= WellEstablishedConfidence && len(p.References) >= WellEstablishedReferences
}

func (p *Provenance) RequiresVerification() bool {
	return p.Confidence < VerificationConfidence
}
