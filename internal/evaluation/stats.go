package evaluation

import (
	"github.com/montanaflynn/stats"
)

// Stats aggregates a set of results.
type Stats struct {
	Total         int `json:"total"`
	Accepted      int `json:"accepted"`
	Rejected      int `json:"rejected"`
	Indeterminate int `json:"indeterminate"`

	MeanViolations   float64 `json:"mean_violations"`
	MedianViolations float64 `json:"median_violations"`
	MaxViolations    float64 `json:"max_violations"`
	// MeanViolationConfidence averages confidence over all violations, not
	// per result. Zero when there are no violations.
	MeanViolationConfidence float64 `json:"mean_violation_confidence"`

	// ViolationsByConstraint counts how often each constraint failed.
	ViolationsByConstraint map[string]int `json:"violations_by_constraint"`
}

// AcceptanceRate is accepted over total, zero for an empty set.
func (s Stats) AcceptanceRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Accepted) / float64(s.Total)
}

// Summarize computes Stats over results. Indeterminate results count
// towards the status totals but not the violation figures.
func Summarize(results []*Result) Stats {
	s := Stats{
		Total:                  len(results),
		ViolationsByConstraint: map[string]int{},
	}
	var perResult, confidences stats.Float64Data
	for _, r := range results {
		switch r.Status {
		case StatusAccepted:
			s.Accepted++
		case StatusRejected:
			s.Rejected++
		case StatusIndeterminate:
			s.Indeterminate++
			continue
		}
		perResult = append(perResult, float64(len(r.Violations)))
		for _, v := range r.Violations {
			confidences = append(confidences, v.Confidence)
			s.ViolationsByConstraint[v.Constraint]++
		}
	}

	if len(perResult) > 0 {
		s.MeanViolations, _ = stats.Mean(perResult)
		s.MedianViolations, _ = stats.Median(perResult)
		s.MaxViolations, _ = stats.Max(perResult)
	}
	if len(confidences) > 0 {
		s.MeanViolationConfidence, _ = stats.Mean(confidences)
	}
	return s
}
