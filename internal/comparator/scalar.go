package comparator

// DefaultEpsilon is the tolerance used by the floating-point aware
// comparators when the threshold does not carry its own.
const DefaultEpsilon = 1e-9

// Scalar comparators order numbers against scalar thresholds and strings
// against literal thresholds. Mixing the two is an ErrIncompatibleTypes.
var (
	LessThan = ordered("less_than",
		func(a, b float64) bool { return a < b },
		func(a, b string) bool { return a < b })
	LessOrEqual = ordered("less_than_or_equal",
		func(a, b float64) bool { return a <= b },
		func(a, b string) bool { return a <= b })
	GreaterThan = ordered("greater_than",
		func(a, b float64) bool { return a > b },
		func(a, b string) bool { return a > b })
	GreaterOrEqual = ordered("greater_than_or_equal",
		func(a, b float64) bool { return a >= b },
		func(a, b string) bool { return a >= b })
	Equal = ordered("equal_to",
		func(a, b float64) bool { return a == b },
		func(a, b string) bool { return a == b })
	NotEqual = ordered("not_equal_to",
		func(a, b float64) bool { return a != b },
		func(a, b string) bool { return a != b })
)

// Floating-point aware comparators accept a bare threshold (DefaultEpsilon
// applies) or an epsilon threshold.
var (
	// ApproxEqual is |v - t| < ε.
	ApproxEqual = tolerant("approximately_equal_to", DefaultEpsilon, func(v, t, eps float64) bool {
		return abs(v-t) < eps
	})
	// SignificantlyGreater is v > t + ε.
	SignificantlyGreater = tolerant("significantly_greater_than", DefaultEpsilon, func(v, t, eps float64) bool {
		return v > t+eps
	})
	// SignificantlyLess is v < t - ε.
	SignificantlyLess = tolerant("significantly_less_than", DefaultEpsilon, func(v, t, eps float64) bool {
		return v < t-eps
	})
)

func ordered(name string, nums func(a, b float64) bool, texts func(a, b string) bool) Comparator {
	return fn{
		name:   name,
		shapes: []Shape{ShapeScalar, ShapeLiteral},
		cmp: func(obs Observation, t Threshold) (bool, error) {
			if t.Shape == ShapeLiteral {
				s, ok := obs.Value.(string)
				if !ok {
					return false, incompatible(obs.Value, t)
				}
				return texts(s, t.Text), nil
			}
			v, err := number(obs, t)
			if err != nil {
				return false, err
			}
			return nums(v, t.Value), nil
		},
	}
}

func tolerant(name string, defaultEpsilon float64, pred func(v, t, eps float64) bool) Comparator {
	return fn{
		name:   name,
		shapes: []Shape{ShapeScalar, ShapeEpsilon},
		cmp: func(obs Observation, t Threshold) (bool, error) {
			v, err := number(obs, t)
			if err != nil {
				return false, err
			}
			limit, eps := limitAndEpsilon(t, defaultEpsilon)
			return pred(v, limit, eps), nil
		},
	}
}

func limitAndEpsilon(t Threshold, defaultEpsilon float64) (float64, float64) {
	if t.Shape == ShapeEpsilon {
		return t.Value, t.Epsilon
	}
	return t.Value, defaultEpsilon
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
