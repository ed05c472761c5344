package fit

import "math"

const (
	defaultCost    = 0.5
	defaultMaxFreq = 10.0
	defaultMaxEval = 100000
	defaultTol     = 1e-13

	// Infinite bounds are capped at this magnitude when parameter
	// normalization is active.
	boundCap = 1e10
)

// Objective selects the fitting objective.
type Objective int

const (
	// ObjectiveMax weights each harmonic's residuals by the spectrum
	// maximum modulus and the cost split. This is the default and the
	// recommended objective.
	ObjectiveMax Objective = iota
	// ObjectiveNegLogLikelihood minimizes the cost-weighted log of the
	// summed squared deviations per harmonic. No error estimates are
	// produced.
	ObjectiveNegLogLikelihood
)

// Config holds fitting options. The zero value selects the defaults: max
// normalization with an even cost split, inductive-point removal, second
// harmonic truncated above 10 Hz, and bound-aware parameter normalization.
type Config struct {
	// Cost splits the weight between the harmonics: above 0.5 favors EIS,
	// below favors 2nd-NLEIS. Must lie in (0, 1); 0 selects 0.5.
	Cost float64

	// MaxFreq is the highest frequency (Hz) retained in the second
	// harmonic. 0 selects 10 Hz.
	MaxFreq float64

	// KeepInductive retains data points with non-negative imaginary EIS
	// impedance instead of discarding them.
	KeepInductive bool

	// NoParamNorm disables normalization of parameters by their upper
	// bounds when explicit bounds are supplied.
	NoParamNorm bool

	Objective Objective

	// Lower and Upper override the per-element default bounds. Both must
	// match the shared parameter count when set.
	Lower []float64
	Upper []float64

	// MaxEval caps objective evaluations; 0 selects 100000.
	MaxEval int

	// Tol is the convergence tolerance; 0 selects 1e-13.
	Tol float64
}

func (c Config) normalize() Config {
	if c.Cost == 0 {
		c.Cost = defaultCost
	}

	if c.MaxFreq == 0 {
		c.MaxFreq = defaultMaxFreq
	}

	if c.MaxEval <= 0 {
		c.MaxEval = defaultMaxEval
	}

	if c.Tol <= 0 {
		c.Tol = defaultTol
	}

	return c
}

func (c Config) validate() error {
	if c.Cost <= 0 || c.Cost >= 1 {
		return ErrBadCost
	}

	return nil
}

// capBounds replaces infinite bounds by +-boundCap so that upper-bound
// normalization stays finite. Reports whether any bound was capped.
func capBounds(lo, hi []float64) (capped bool) {
	for i := range lo {
		if math.IsInf(lo[i], -1) {
			lo[i] = -boundCap
			capped = true
		}

		if math.IsInf(hi[i], 1) {
			hi[i] = boundCap
			capped = true
		}
	}

	return capped
}
