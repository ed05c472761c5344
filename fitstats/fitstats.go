// Package fitstats summarizes goodness of fit for impedance regressions.
package fitstats

import "math"

// Stats holds goodness-of-fit figures for one residual vector.
//
//nolint:revive
type Stats struct {
	Length        int
	ChiSquare     float64 // sum of squared weighted residuals
	ReducedChiSq  float64 // chi-square / degrees of freedom
	RMSE          float64
	AIC           float64 // Akaike information criterion
	DegreesOfFree int
}

// emptyStats returns a zero-valued Stats with NaN for the undefined
// ratios.
func emptyStats() Stats {
	return Stats{
		ReducedChiSq: math.NaN(),
		RMSE:         math.NaN(),
		AIC:          math.NaN(),
	}
}

// Calculate computes all figures in a single pass over the residuals.
// residuals are measurement minus model, already divided by sigma when a
// per-point uncertainty applies; pass sigma 1 for unweighted residuals.
// nParams is the number of fitted parameters.
func Calculate(residuals []float64, nParams int, sigma float64) Stats {
	n := len(residuals)
	if n == 0 {
		return emptyStats()
	}

	if sigma <= 0 {
		sigma = 1
	}

	var sumSq float64
	for _, r := range residuals {
		w := r / sigma
		sumSq += w * w
	}

	dof := n - nParams

	s := Stats{
		Length:        n,
		ChiSquare:     sumSq,
		DegreesOfFree: dof,
		RMSE:          math.Sqrt(sumSq / float64(n)),
		AIC:           float64(n)*math.Log(sumSq/float64(n)) + 2*float64(nParams),
	}

	if dof > 0 {
		s.ReducedChiSq = sumSq / float64(dof)
	} else {
		s.ReducedChiSq = math.NaN()
	}

	return s
}

// CalculateComplex stacks the real and imaginary residual parts and
// reports the same figures. got and want must have equal length.
func CalculateComplex(got, want []complex128, nParams int, sigma float64) Stats {
	res := make([]float64, 0, 2*len(got))
	for i := range got {
		d := want[i] - got[i]
		res = append(res, real(d), imag(d))
	}

	return Calculate(res, nParams, sigma)
}
