package fit

import "math"

// transform maps one parameter between the bounded external space seen by
// the caller and the unbounded internal space seen by the optimizer. The
// mappings follow the MINPACK convention: sin for two-sided bounds and a
// shifted sqrt(t*t+1) for one-sided bounds.
type transform struct {
	lower float64
	upper float64
}

func (t transform) bounded() bool {
	return !math.IsInf(t.lower, -1) || !math.IsInf(t.upper, 1)
}

// toInternal maps an external value inside [lower, upper] to the
// unbounded internal space.
func (t transform) toInternal(x float64) float64 {
	loInf := math.IsInf(t.lower, -1)
	hiInf := math.IsInf(t.upper, 1)

	switch {
	case loInf && hiInf:
		return x
	case loInf:
		return math.Sqrt((t.upper-x+1)*(t.upper-x+1) - 1)
	case hiInf:
		return math.Sqrt((x-t.lower+1)*(x-t.lower+1) - 1)
	default:
		u := 2*(x-t.lower)/(t.upper-t.lower) - 1
		u = math.Max(-1, math.Min(1, u))
		return math.Asin(u)
	}
}

// toExternal maps an internal value back inside [lower, upper].
func (t transform) toExternal(y float64) float64 {
	loInf := math.IsInf(t.lower, -1)
	hiInf := math.IsInf(t.upper, 1)

	switch {
	case loInf && hiInf:
		return y
	case loInf:
		return t.upper + 1 - math.Sqrt(y*y+1)
	case hiInf:
		return t.lower - 1 + math.Sqrt(y*y+1)
	default:
		return t.lower + (t.upper-t.lower)/2*(math.Sin(y)+1)
	}
}

func newTransforms(lower, upper []float64) []transform {
	ts := make([]transform, len(lower))
	for i := range ts {
		ts[i] = transform{lower: lower[i], upper: upper[i]}
	}

	return ts
}

func internalToExternal(ts []transform, in []float64) []float64 {
	out := make([]float64, len(in))
	for i, t := range ts {
		out[i] = t.toExternal(in[i])
	}

	return out
}

func externalToInternal(ts []transform, ex []float64) []float64 {
	out := make([]float64, len(ex))
	for i, t := range ts {
		out[i] = t.toInternal(ex[i])
	}

	return out
}
