package handler

import (
	"time"

	"github.com/google/uuid"

	"curaframe/internal/comparator"
	"curaframe/internal/evaluation"
)

// ResultResponse is the HTTP form of an evaluation result.
type ResultResponse struct {
	ID          uuid.UUID           `json:"id"`
	Status      string              `json:"status"`
	Candidate   string              `json:"candidate"`
	Population  string              `json:"population,omitempty"`
	Strict      bool                `json:"strict"`
	Violations  []ViolationResponse `json:"violations"`
	Warnings    []string            `json:"warnings"`
	Notes       string              `json:"notes,omitempty"`
	Summary     string              `json:"summary"`
	EvaluatedAt time.Time           `json:"evaluated_at"`
}

type ViolationResponse struct {
	Constraint string  `json:"constraint"`
	Observed   any     `json:"observed"`
	Required   string  `json:"required"`
	Rationale  string  `json:"rationale"`
	Severity   string  `json:"severity"`
	Confidence float64 `json:"confidence"`
}

type BatchResponse struct {
	Results []*ResultResponse `json:"results"`
}

type HistoryResponse struct {
	Results []*ResultResponse `json:"results"`
	Count   int               `json:"count"`
}

type ConstraintResponse struct {
	evaluation.ExportedConstraint
	Comparator      string               `json:"comparator"`
	ThresholdDetail comparator.Threshold `json:"threshold_detail"`
}

type PopulationsResponse struct {
	Populations []string `json:"populations"`
}

// FromResult converts a domain Result to an HTTP response.
func FromResult(r *evaluation.Result) *ResultResponse {
	resp := &ResultResponse{
		ID:          r.ID,
		Status:      string(r.Status),
		Candidate:   r.CandidateName,
		Population:  r.Population,
		Strict:      r.Strict,
		Violations:  make([]ViolationResponse, 0, len(r.Violations)),
		Warnings:    r.Warnings,
		Notes:       r.Notes,
		Summary:     r.Summary(),
		EvaluatedAt: r.EvaluatedAt,
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	for _, v := range r.Violations {
		resp.Violations = append(resp.Violations, ViolationResponse{
			Constraint: v.Constraint,
			Observed:   v.Observed,
			Required:   v.Threshold.String(),
			Rationale:  v.Rationale,
			Severity:   string(v.Severity),
			Confidence: v.Confidence,
		})
	}
	return resp
}

func fromResults(results []*evaluation.Result) []*ResultResponse {
	out := make([]*ResultResponse, len(results))
	for i, r := range results {
		out[i] = FromResult(r)
	}
	return out
}
