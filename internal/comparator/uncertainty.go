package comparator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// z95 is the two-sided 95% quantile of the standard normal distribution.
const z95 = 1.959963984540054

// ConservativeUpperBound passes when the worst-case upper bound is at or
// below the threshold. Use it for maximum-type limits.
var ConservativeUpperBound Comparator = fn{
	name:   "conservative_upper_bound",
	shapes: []Shape{ShapeScalar},
	cmp: func(obs Observation, t Threshold) (bool, error) {
		_, _, upper, err := obs.Triple()
		if err != nil {
			return false, err
		}
		if !IsFinite(upper) {
			return false, nil
		}
		return upper <= t.Value, nil
	},
}

// ConservativeLowerBound passes when the worst-case lower bound is at or
// above the threshold. Use it for minimum-type limits.
var ConservativeLowerBound Comparator = fn{
	name:   "conservative_lower_bound",
	shapes: []Shape{ShapeScalar},
	cmp: func(obs Observation, t Threshold) (bool, error) {
		_, lower, _, err := obs.Triple()
		if err != nil {
			return false, err
		}
		if !IsFinite(lower) {
			return false, nil
		}
		return lower >= t.Value, nil
	},
}

// OptimisticNominal applies inner to the nominal value only, ignoring the
// uncertainty interval. It is not conservative.
func OptimisticNominal(inner Comparator) Comparator {
	return optimistic{inner: inner}
}

type optimistic struct {
	inner Comparator
}

func (o optimistic) Name() string { return "optimistic_nominal(" + o.inner.Name() + ")" }

func (o optimistic) Accepts(shape Shape) bool { return o.inner.Accepts(shape) }

func (o optimistic) Compare(obs Observation, t Threshold) (bool, error) {
	return o.inner.Compare(Observe(obs.Value), t)
}

// ProbabilisticSatisfaction assumes the value is uniformly distributed over
// its uncertainty interval and passes when P(value <= threshold) reaches
// confidence. An interval entirely below the threshold is certain to pass,
// one entirely above certain to fail.
func ProbabilisticSatisfaction(confidence float64) Comparator {
	return probabilistic{
		name:       fmt.Sprintf("probabilistic_satisfaction(%s)", formatFloat(confidence)),
		confidence: confidence,
		cdf: func(_, lower, upper, x float64) float64 {
			return distuv.Uniform{Min: lower, Max: upper}.CDF(x)
		},
	}
}

// ProbabilisticNormal reads the uncertainty interval as a 95% interval of a
// normal distribution centred on the midpoint and passes when
// P(value <= threshold) reaches confidence.
func ProbabilisticNormal(confidence float64) Comparator {
	return probabilistic{
		name:       fmt.Sprintf("probabilistic_normal(%s)", formatFloat(confidence)),
		confidence: confidence,
		cdf: func(_, lower, upper, x float64) float64 {
			mu := (lower + upper) / 2
			sigma := (upper - lower) / (2 * z95)
			return distuv.Normal{Mu: mu, Sigma: sigma}.CDF(x)
		},
	}
}

type probabilistic struct {
	name       string
	confidence float64
	cdf        func(nominal, lower, upper, x float64) float64
}

func (p probabilistic) Name() string { return p.name }

func (p probabilistic) Accepts(shape Shape) bool { return shape == ShapeScalar }

func (p probabilistic) Compare(obs Observation, t Threshold) (bool, error) {
	if !p.Accepts(t.Shape) {
		return false, fmt.Errorf("%w: %s does not accept %s thresholds", ErrShapeMismatch, p.name, t.Shape)
	}
	if math.IsNaN(p.confidence) || p.confidence < 0 || p.confidence > 1 {
		return false, fmt.Errorf("%w: confidence must be in [0,1], got %s", ErrInvalidInput, formatFloat(p.confidence))
	}
	nominal, lower, upper, err := obs.Triple()
	if err != nil {
		return false, err
	}
	if !IsFinite(lower) || !IsFinite(upper) {
		return false, nil
	}
	if lower > upper {
		return false, fmt.Errorf("%w: lower (%s) > upper (%s)", ErrInvalidBounds, formatFloat(lower), formatFloat(upper))
	}
	if upper <= t.Value {
		return true, nil
	}
	if lower > t.Value {
		return false, nil
	}
	return p.cdf(nominal, lower, upper, t.Value) >= p.confidence, nil
}
