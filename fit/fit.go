package fit

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/yuefan98/NLEIS-Toolbox/ecm/circuit"
)

var (
	ErrBadCost     = errors.New("fit: cost must lie in (0, 1)")
	ErrDimension   = errors.New("fit: frequency and impedance lengths differ")
	ErrEmptyData   = errors.New("fit: no data points left after masking")
	ErrParamCount  = errors.New("fit: parameter count mismatch")
	ErrBoundLength = errors.New("fit: bound length mismatch")
)

// Result holds the outcome of a fit.
type Result struct {
	// Params are the best-fit parameters in the shared order of the
	// edited circuit (for SimulFit) or the circuit's own order (for
	// CircuitFit).
	Params []float64

	// StdErrs are one-sigma parameter errors from the covariance
	// diagonal at the optimum. Nil when the Jacobian is singular or the
	// negative log-likelihood objective was used.
	StdErrs []float64

	// Cost is the objective value at the optimum.
	Cost float64

	// Residuals is the weighted residual vector at the optimum, stacked
	// as [Re Z1, Im Z1, Re Z2, Im Z2] for SimulFit and [Re Z, Im Z] for
	// CircuitFit.
	Residuals []float64

	// Evaluations counts objective evaluations spent by the optimizer.
	Evaluations int
}

// simulProblem carries the masked data and weighting of one simultaneous
// fit. Residuals are evaluated in the external (bounded, de-normalized)
// parameter space.
type simulProblem struct {
	f1 []float64
	z1 []complex128
	f2 []float64
	z2 []complex128

	c1     *circuit.Circuit
	c2     *circuit.Circuit
	shared []sharedParam

	sigma1 float64
	sigma2 float64
	cost   float64
}

func (p *simulProblem) split(params []float64) (p1, p2 []float64) {
	for i, sp := range p.shared {
		if sp.toEIS {
			p1 = append(p1, params[i])
		}

		if sp.toNLEIS {
			p2 = append(p2, params[i])
		}
	}

	return p1, p2
}

// residuals fills dst with the weighted stacked residual vector. dst must
// have length 2*(len(f1)+len(f2)).
func (p *simulProblem) residuals(dst, params []float64) error {
	p1, p2 := p.split(params)

	zh1, err := p.c1.Impedance(p.f1, p1)
	if err != nil {
		return err
	}

	zh2, err := p.c2.Impedance(p.f2, p2)
	if err != nil {
		return err
	}

	k := 0
	for i, z := range p.z1 {
		d := z - zh1[i]
		dst[k] = real(d) / p.sigma1
		dst[k+1] = imag(d) / p.sigma1
		k += 2
	}

	for i, z := range p.z2 {
		d := z - zh2[i]
		dst[k] = real(d) / p.sigma2
		dst[k+1] = imag(d) / p.sigma2
		k += 2
	}

	return nil
}

// negLogLikelihood is the alternative objective: the cost-weighted log of
// each harmonic's summed squared deviation.
func (p *simulProblem) negLogLikelihood(params []float64) float64 {
	p1, p2 := p.split(params)

	zh1, err := p.c1.Impedance(p.f1, p1)
	if err != nil {
		return math.Inf(1)
	}

	zh2, err := p.c2.Impedance(p.f2, p2)
	if err != nil {
		return math.Inf(1)
	}

	var s1, s2 float64
	for i, z := range p.z1 {
		d := cmplx.Abs(z - zh1[i])
		s1 += d * d
	}

	for i, z := range p.z2 {
		d := cmplx.Abs(z - zh2[i])
		s2 += d * d
	}

	return p.cost*math.Log(s1) + (1-p.cost)*math.Log(s2)
}

// SimulFit fits EIS and 2nd-NLEIS spectra simultaneously with a shared
// parameter vector. f, z1 and z2 must have equal length; eisCircuit and
// nleisCircuit describe the two spectra, and edited names the union of
// their elements and fixes the order of initial. constants1 and constants2
// pin parameters of the respective circuits by label.
//
// By default, points with non-negative imaginary EIS impedance are removed
// from both spectra and the second harmonic is truncated above
// Config.MaxFreq before fitting.
func SimulFit(f []float64, z1, z2 []complex128, eisCircuit, nleisCircuit, edited string, initial []float64, constants1, constants2 map[string]float64, cfg Config) (*Result, error) {
	cfg = cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if len(f) != len(z1) || len(f) != len(z2) {
		return nil, ErrDimension
	}

	c1, err := circuit.Parse(eisCircuit, constants1)
	if err != nil {
		return nil, err
	}

	c2, err := circuit.Parse(nleisCircuit, constants2)
	if err != nil {
		return nil, err
	}

	shared, err := sharedParams(edited, constants1, constants2)
	if err != nil {
		return nil, err
	}

	if len(initial) != len(shared) {
		return nil, fmt.Errorf("%w: edited circuit has %d free parameters, got %d",
			ErrParamCount, len(shared), len(initial))
	}

	prob := &simulProblem{cost: cfg.Cost, c1: c1, c2: c2, shared: shared}

	for i, fi := range f {
		if !cfg.KeepInductive && imag(z1[i]) >= 0 {
			continue
		}

		prob.f1 = append(prob.f1, fi)
		prob.z1 = append(prob.z1, z1[i])

		if fi < cfg.MaxFreq {
			prob.f2 = append(prob.f2, fi)
			prob.z2 = append(prob.z2, z2[i])
		}
	}

	if len(prob.f1) == 0 || len(prob.f2) == 0 {
		return nil, ErrEmptyData
	}

	prob.sigma1 = maxAbs(prob.z1) / math.Sqrt(cfg.Cost)
	prob.sigma2 = maxAbs(prob.z2) / math.Sqrt(1-cfg.Cost)

	lower := make([]float64, len(shared))
	upper := make([]float64, len(shared))
	for i, sp := range shared {
		lower[i] = sp.lower
		upper[i] = sp.upper
	}

	userBounds := cfg.Lower != nil || cfg.Upper != nil
	if cfg.Lower != nil {
		if len(cfg.Lower) != len(shared) {
			return nil, ErrBoundLength
		}

		copy(lower, cfg.Lower)
	}

	if cfg.Upper != nil {
		if len(cfg.Upper) != len(shared) {
			return nil, ErrBoundLength
		}

		copy(upper, cfg.Upper)
	}

	// Normalizing by the upper bounds conditions the problem when the
	// caller supplies bounds with widely differing magnitudes.
	scale := ones(len(shared))
	if userBounds && !cfg.NoParamNorm {
		capBounds(lower, upper)
		copy(scale, upper)

		for i := range lower {
			lower[i] /= scale[i]
			upper[i] = 1
		}
	}

	m := 2 * (len(prob.f1) + len(prob.f2))

	resid := func(dst, x []float64) {
		if err := prob.residuals(dst, unscaled(x, scale)); err != nil {
			for i := range dst {
				dst[i] = math.Inf(1)
			}
		}
	}

	objective := func(x []float64) float64 {
		if cfg.Objective == ObjectiveNegLogLikelihood {
			return prob.negLogLikelihood(unscaled(x, scale))
		}

		dst := make([]float64, m)
		resid(dst, x)

		return sumSquares(dst)
	}

	x0 := scaled(initial, scale)
	params, cost, evals, err := minimizeBounded(objective, x0, lower, upper, cfg)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Params:      unscaled(params, scale),
		Cost:        cost,
		Evaluations: evals,
	}

	if cfg.Objective == ObjectiveNegLogLikelihood {
		return res, nil
	}

	res.Residuals = make([]float64, m)
	if err := prob.residuals(res.Residuals, res.Params); err != nil {
		return nil, err
	}

	res.StdErrs = standardErrors(resid, params, m, res.Residuals)
	if res.StdErrs != nil {
		for i := range res.StdErrs {
			res.StdErrs[i] *= scale[i]
		}
	}

	return res, nil
}

// CircuitFit fits a single spectrum against one circuit string. The same
// masking, weighting and bound handling as SimulFit applies, with the whole
// weight on the one spectrum.
func CircuitFit(f []float64, z []complex128, desc string, initial []float64, constants map[string]float64, cfg Config) (*Result, error) {
	cfg = cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if len(f) != len(z) {
		return nil, ErrDimension
	}

	c, err := circuit.Parse(desc, constants)
	if err != nil {
		return nil, err
	}

	if len(initial) != c.NumParams() {
		return nil, fmt.Errorf("%w: circuit has %d free parameters, got %d",
			ErrParamCount, c.NumParams(), len(initial))
	}

	var ff []float64
	var zz []complex128

	for i, fi := range f {
		if !cfg.KeepInductive && imag(z[i]) >= 0 {
			continue
		}

		ff = append(ff, fi)
		zz = append(zz, z[i])
	}

	if len(ff) == 0 {
		return nil, ErrEmptyData
	}

	sigma := maxAbs(zz)

	lower, upper := c.DefaultBounds()

	userBounds := cfg.Lower != nil || cfg.Upper != nil
	if cfg.Lower != nil {
		if len(cfg.Lower) != len(initial) {
			return nil, ErrBoundLength
		}

		copy(lower, cfg.Lower)
	}

	if cfg.Upper != nil {
		if len(cfg.Upper) != len(initial) {
			return nil, ErrBoundLength
		}

		copy(upper, cfg.Upper)
	}

	scale := ones(len(initial))
	if userBounds && !cfg.NoParamNorm {
		capBounds(lower, upper)
		copy(scale, upper)

		for i := range lower {
			lower[i] /= scale[i]
			upper[i] = 1
		}
	}

	m := 2 * len(ff)

	resid := func(dst, x []float64) {
		zh, err := c.Impedance(ff, unscaled(x, scale))
		if err != nil {
			for i := range dst {
				dst[i] = math.Inf(1)
			}

			return
		}

		k := 0
		for i, zi := range zz {
			d := zi - zh[i]
			dst[k] = real(d) / sigma
			dst[k+1] = imag(d) / sigma
			k += 2
		}
	}

	objective := func(x []float64) float64 {
		dst := make([]float64, m)
		resid(dst, x)

		return sumSquares(dst)
	}

	x0 := scaled(initial, scale)
	params, cost, evals, err := minimizeBounded(objective, x0, lower, upper, cfg)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Params:      unscaled(params, scale),
		Cost:        cost,
		Evaluations: evals,
		Residuals:   make([]float64, m),
	}

	resid(res.Residuals, params)

	res.StdErrs = standardErrors(resid, params, m, res.Residuals)
	if res.StdErrs != nil {
		for i := range res.StdErrs {
			res.StdErrs[i] *= scale[i]
		}
	}

	return res, nil
}

// minimizeBounded minimizes objective over the box [lower, upper] by
// optimizing in a transformed unbounded space. It returns the best
// parameters in the external space together with the objective value.
func minimizeBounded(objective func([]float64) float64, x0, lower, upper []float64, cfg Config) (params []float64, cost float64, evals int, err error) {
	ts := newTransforms(lower, upper)

	problem := optimize.Problem{
		Func: func(y []float64) float64 {
			return objective(internalToExternal(ts, y))
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: cfg.MaxEval,
		Converger: &optimize.FunctionConverge{
			Absolute:   cfg.Tol,
			Relative:   cfg.Tol,
			Iterations: 100,
		},
	}

	y0 := externalToInternal(ts, x0)

	result, err := optimize.Minimize(problem, y0, settings, nil)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("fit: %w", err)
	}

	return internalToExternal(ts, result.X), result.F, result.FuncEvaluations, nil
}

// standardErrors estimates one-sigma parameter errors from the residual
// Jacobian at the optimum. Returns nil when the system is singular or has
// no degrees of freedom.
func standardErrors(resid func(dst, x []float64), params []float64, m int, residuals []float64) []float64 {
	n := len(params)
	if m <= n {
		return nil
	}

	jac := mat.NewDense(m, n, nil)
	fd.Jacobian(jac, resid, params, nil)

	var jtj mat.Dense
	jtj.Mul(jac.T(), jac)

	var cov mat.Dense
	if err := cov.Inverse(&jtj); err != nil {
		return nil
	}

	s2 := sumSquares(residuals) / float64(m-n)

	errs := make([]float64, n)
	for i := range errs {
		errs[i] = math.Sqrt(cov.At(i, i) * s2)
	}

	return errs
}

func maxAbs(z []complex128) float64 {
	var m float64
	for _, zi := range z {
		if a := cmplx.Abs(zi); a > m {
			m = a
		}
	}

	return m
}

func sumSquares(v []float64) float64 {
	return floats.Dot(v, v)
}

func ones(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}

	return v
}

func scaled(x, scale []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	floats.Div(out, scale)

	return out
}

func unscaled(x, scale []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	floats.Mul(out, scale)

	return out
}
