package handler

import (
	"fmt"
	"strings"

	"curaframe/internal/candidate"
	"curaframe/internal/catalog"
	"curaframe/internal/evaluation/service"
	"curaframe/internal/population"
	dErrors "curaframe/pkg/domain-errors"
)

// MaxBatchSize bounds POST /v1/evaluations/batch.
const MaxBatchSize = 100

// EvaluateRequest is the HTTP request body for POST /v1/evaluations.
type EvaluateRequest struct {
	Candidate  candidate.Spec `json:"candidate" validate:"required"`
	Population string         `json:"population,omitempty" validate:"max=64"`
	// Strict defaults to true when omitted.
	Strict *bool `json:"strict,omitempty"`
}

func (r *EvaluateRequest) Normalize() {
	if r == nil {
		return
	}
	r.Candidate.Name = strings.TrimSpace(r.Candidate.Name)
	r.Population = strings.TrimSpace(r.Population)
	if r.Strict == nil {
		strict := true
		r.Strict = &strict
	}
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *EvaluateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	for name, b := range r.Candidate.Uncertainty {
		if b.Lower > b.Upper {
			return dErrors.New(dErrors.CodeValidation,
				fmt.Sprintf("candidate.uncertainty.%s: lower must not exceed upper", name))
		}
	}
	for name := range r.Candidate.Properties {
		if strings.TrimSpace(name) == "" {
			return dErrors.New(dErrors.CodeValidation, "candidate.properties: empty property name")
		}
	}
	return nil
}

// ToServiceRequest builds the domain request.
func (r *EvaluateRequest) ToServiceRequest(requestID string) service.Request {
	strict := r.Strict == nil || *r.Strict
	return service.Request{
		Candidate:  r.Candidate.Build(),
		Population: r.Population,
		Strict:     strict,
		RequestID:  requestID,
	}
}

// BatchRequest is the HTTP request body for POST /v1/evaluations/batch.
type BatchRequest struct {
	Requests []EvaluateRequest `json:"requests" validate:"required,min=1,dive"`
}

func (r *BatchRequest) Normalize() {
	if r == nil {
		return
	}
	for i := range r.Requests {
		r.Requests[i].Normalize()
	}
}

func (r *BatchRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Requests) > MaxBatchSize {
		return dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("batch size must be at most %d", MaxBatchSize))
	}
	for i := range r.Requests {
		if err := r.Requests[i].Validate(); err != nil {
			return dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("requests[%d]: %s", i, messageOf(err)))
		}
	}
	return nil
}

// RegisterPopulationRequest is the HTTP request body for POST /v1/populations.
type RegisterPopulationRequest struct {
	Name      string                          `json:"name" validate:"required,max=64"`
	Modifiers map[string]catalog.ModifierSpec `json:"modifiers" validate:"required,min=1,dive"`
}

func (r *RegisterPopulationRequest) Normalize() {
	if r == nil {
		return
	}
	r.Name = strings.TrimSpace(r.Name)
}

// Modifiers converts the wire modifiers.
func (r *RegisterPopulationRequest) ParsedModifiers() (population.Modifiers, error) {
	mods := make(population.Modifiers, len(r.Modifiers))
	for target, spec := range r.Modifiers {
		m, err := spec.Modifier()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("modifiers.%s: %v", target, err))
		}
		mods[target] = m
	}
	return mods, nil
}

func messageOf(err error) string {
	if de, ok := dErrors.As(err); ok {
		return de.Message
	}
	return err.Error()
}
