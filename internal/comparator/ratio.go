package comparator

import "fmt"

// KdPair holds on-target and off-target dissociation constants. Higher Kd
// means weaker binding.
type KdPair struct {
	OnTarget  float64 `json:"on_target" yaml:"on_target"`
	OffTarget float64 `json:"off_target" yaml:"off_target"`
}

// RatioAbove reports ratio > required + epsilon. NaN and infinite ratios
// never satisfy.
func RatioAbove(ratio, required, epsilon float64) bool {
	if !IsFinite(ratio) {
		return false
	}
	return ratio > required+epsilon
}

// RatioBelow reports ratio < limit - epsilon. NaN and infinite ratios never
// satisfy.
func RatioBelow(ratio, limit, epsilon float64) bool {
	if !IsFinite(ratio) {
		return false
	}
	return ratio < limit-epsilon
}

// Selectivity reports whether kdOff/kdOn >= minSelectivity. The ratio is
// allowed a relative DefaultEpsilon of slack: 100e-9/1e-9 is
// 99.99999999999999 in binary floating point and must count as 100x.
func Selectivity(kdOn, kdOff, minSelectivity float64) (bool, error) {
	if kdOn <= 0 || kdOff <= 0 {
		return false, fmt.Errorf("%w: Kd values must be positive", ErrInvalidInput)
	}
	ratio := kdOff / kdOn
	return ratio >= minSelectivity || abs(ratio-minSelectivity) <= DefaultEpsilon*abs(minSelectivity), nil
}

var (
	// RatioGreaterThan accepts a bare required ratio (epsilon 0) or
	// (required, epsilon).
	RatioGreaterThan Comparator = fn{
		name:   "ratio_greater_than",
		shapes: []Shape{ShapeScalar, ShapeEpsilon},
		cmp: func(obs Observation, t Threshold) (bool, error) {
			v, err := number(obs, t)
			if err != nil {
				return false, err
			}
			required, eps := limitAndEpsilon(t, 0)
			return RatioAbove(v, required, eps), nil
		},
	}

	RatioLessThan Comparator = fn{
		name:   "ratio_less_than",
		shapes: []Shape{ShapeScalar, ShapeEpsilon},
		cmp: func(obs Observation, t Threshold) (bool, error) {
			v, err := number(obs, t)
			if err != nil {
				return false, err
			}
			limit, eps := limitAndEpsilon(t, 0)
			return RatioBelow(v, limit, eps), nil
		},
	}

	// SelectivitySatisfied reads a KdPair from the observation and compares
	// its selectivity against a scalar minimum.
	SelectivitySatisfied Comparator = fn{
		name:   "selectivity_satisfied",
		shapes: []Shape{ShapeScalar},
		cmp: func(obs Observation, t Threshold) (bool, error) {
			pair, ok := toKdPair(obs.Value)
			if !ok {
				return false, incompatible(obs.Value, t)
			}
			return Selectivity(pair.OnTarget, pair.OffTarget, t.Value)
		},
	}
)

// toKdPair accepts a KdPair, a two-element numeric list, or a map with
// on_target/off_target keys as produced by JSON and YAML decoders.
func toKdPair(v any) (KdPair, bool) {
	switch p := v.(type) {
	case KdPair:
		return p, true
	case *KdPair:
		if p == nil {
			return KdPair{}, false
		}
		return *p, true
	case [2]float64:
		return KdPair{OnTarget: p[0], OffTarget: p[1]}, true
	case []float64:
		if len(p) != 2 {
			return KdPair{}, false
		}
		return KdPair{OnTarget: p[0], OffTarget: p[1]}, true
	case []any:
		if len(p) != 2 {
			return KdPair{}, false
		}
		on, ok1 := Float(p[0])
		off, ok2 := Float(p[1])
		return KdPair{OnTarget: on, OffTarget: off}, ok1 && ok2
	case map[string]any:
		on, ok1 := Float(p["on_target"])
		off, ok2 := Float(p["off_target"])
		return KdPair{OnTarget: on, OffTarget: off}, ok1 && ok2
	default:
		return KdPair{}, false
	}
}
