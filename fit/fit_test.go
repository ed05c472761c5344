package fit

import (
	"errors"
	"math"
	"testing"

	"github.com/yuefan98/NLEIS-Toolbox/ecm/circuit"
	"github.com/yuefan98/NLEIS-Toolbox/internal/testutil"
)

func logspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = math.Pow(10, lo+float64(i)*step)
	}

	return out
}

func synthetic(t *testing.T, desc string, f, params []float64) []complex128 {
	t.Helper()

	c, err := circuit.Parse(desc, nil)
	if err != nil {
		t.Fatalf("parse %q: %v", desc, err)
	}

	z, err := c.Impedance(f, params)
	if err != nil {
		t.Fatalf("evaluate %q: %v", desc, err)
	}

	return z
}

func TestCircuitFitRecoversParallelRC(t *testing.T) {
	f := logspace(-2, 4, 25)
	truth := []float64{100, 1e-4}
	z := synthetic(t, "p(R1,C1)", f, truth)

	res, err := CircuitFit(f, z, "p(R1,C1)", []float64{60, 3e-4}, nil, Config{})
	if err != nil {
		t.Fatalf("CircuitFit: %v", err)
	}

	testutil.RequireNearlyEqual(t, res.Params[0], truth[0], 1)
	testutil.RequireNearlyEqual(t, res.Params[1], truth[1], 1e-6)

	if res.Cost > 1e-6 {
		t.Errorf("residual cost %v, want near zero for noiseless data", res.Cost)
	}

	if res.StdErrs == nil || len(res.StdErrs) != 2 {
		t.Fatalf("StdErrs = %v, want two entries", res.StdErrs)
	}

	testutil.RequireFinite(t, res.StdErrs)
}

func TestSimulFitRecoversRandles(t *testing.T) {
	f := logspace(-3, 3, 30)
	truth := []float64{50, 1e-3, 0.1}

	z1 := synthetic(t, "RCO0", f, truth[:2])
	z2 := synthetic(t, "RCOn0", f, truth)

	res, err := SimulFit(f, z1, z2, "RCO0", "RCOn0", "RCOn0",
		[]float64{30, 3e-3, 0.05}, nil, nil, Config{})
	if err != nil {
		t.Fatalf("SimulFit: %v", err)
	}

	testutil.RequireNearlyEqual(t, res.Params[0], truth[0], 0.5)
	testutil.RequireNearlyEqual(t, res.Params[1], truth[1], 1e-5)
	testutil.RequireNearlyEqual(t, res.Params[2], truth[2], 1e-3)

	if res.StdErrs == nil || len(res.StdErrs) != 3 {
		t.Fatalf("StdErrs = %v, want three entries", res.StdErrs)
	}
}

func TestSimulFitNegLogLikelihood(t *testing.T) {
	f := logspace(-3, 3, 30)
	truth := []float64{50, 1e-3, 0.1}

	z1 := synthetic(t, "RCO0", f, truth[:2])
	z2 := synthetic(t, "RCOn0", f, truth)

	res, err := SimulFit(f, z1, z2, "RCO0", "RCOn0", "RCOn0",
		[]float64{30, 3e-3, 0.05}, nil, nil,
		Config{Objective: ObjectiveNegLogLikelihood})
	if err != nil {
		t.Fatalf("SimulFit: %v", err)
	}

	if res.StdErrs != nil {
		t.Errorf("StdErrs = %v, want nil for likelihood objective", res.StdErrs)
	}

	testutil.RequireNearlyEqual(t, res.Params[0], truth[0], 2)
}

func TestSimulFitSecondHarmonicTruncation(t *testing.T) {
	f := logspace(-2, 3, 20)
	truth := []float64{50, 1e-3, 0.1}

	z1 := synthetic(t, "RCO0", f, truth[:2])
	z2 := synthetic(t, "RCOn0", f, truth)

	// Corrupt the second harmonic above the truncation frequency; the
	// fit must not see those points.
	for i, fi := range f {
		if fi >= defaultMaxFreq {
			z2[i] = complex(1e6, 1e6)
		}
	}

	res, err := SimulFit(f, z1, z2, "RCO0", "RCOn0", "RCOn0",
		[]float64{30, 3e-3, 0.05}, nil, nil, Config{})
	if err != nil {
		t.Fatalf("SimulFit: %v", err)
	}

	testutil.RequireNearlyEqual(t, res.Params[0], truth[0], 0.5)
	testutil.RequireNearlyEqual(t, res.Params[2], truth[2], 1e-2)
}

func TestSimulFitBadCost(t *testing.T) {
	f := []float64{1}
	z := []complex128{complex(1, -1)}

	for _, cost := range []float64{-0.5, 1, 1.5} {
		_, err := SimulFit(f, z, z, "RCO0", "RCOn0", "RCOn0",
			[]float64{1, 1, 0}, nil, nil, Config{Cost: cost})
		if !errors.Is(err, ErrBadCost) {
			t.Errorf("cost %v: got %v, want ErrBadCost", cost, err)
		}
	}
}

func TestSimulFitDimensionMismatch(t *testing.T) {
	_, err := SimulFit([]float64{1, 2}, []complex128{1}, []complex128{1},
		"RCO0", "RCOn0", "RCOn0", []float64{1, 1, 0}, nil, nil, Config{})
	if !errors.Is(err, ErrDimension) {
		t.Fatalf("got %v, want ErrDimension", err)
	}
}

func TestCircuitFitAllInductiveIsError(t *testing.T) {
	f := []float64{1, 10}
	z := []complex128{complex(1, 1), complex(1, 2)}

	_, err := CircuitFit(f, z, "R0", []float64{1}, nil, Config{})
	if !errors.Is(err, ErrEmptyData) {
		t.Fatalf("got %v, want ErrEmptyData", err)
	}
}

func TestCircuitFitKeepInductive(t *testing.T) {
	f := logspace(0, 3, 10)
	z := make([]complex128, len(f))
	for i := range z {
		z[i] = complex(10, 0)
	}

	res, err := CircuitFit(f, z, "R0", []float64{4}, nil, Config{KeepInductive: true})
	if err != nil {
		t.Fatalf("CircuitFit: %v", err)
	}

	testutil.RequireNearlyEqual(t, res.Params[0], 10, 1e-3)
}

func TestSimulFitParamCountMismatch(t *testing.T) {
	f := []float64{1}
	z := []complex128{complex(1, -1)}

	_, err := SimulFit(f, z, z, "RCO0", "RCOn0", "RCOn0",
		[]float64{1, 1}, nil, nil, Config{})
	if !errors.Is(err, ErrParamCount) {
		t.Fatalf("got %v, want ErrParamCount", err)
	}
}

func TestSimulFitUserBoundsRespected(t *testing.T) {
	f := logspace(-3, 3, 30)
	truth := []float64{50, 1e-3, 0.1}

	z1 := synthetic(t, "RCO0", f, truth[:2])
	z2 := synthetic(t, "RCOn0", f, truth)

	cfg := Config{
		Lower: []float64{1, 1e-5, -0.5},
		Upper: []float64{1e3, 1e-1, 0.5},
	}

	res, err := SimulFit(f, z1, z2, "RCO0", "RCOn0", "RCOn0",
		[]float64{30, 3e-3, 0.05}, nil, nil, cfg)
	if err != nil {
		t.Fatalf("SimulFit: %v", err)
	}

	for i, p := range res.Params {
		if p < cfg.Lower[i] || p > cfg.Upper[i] {
			t.Errorf("parameter %d = %v outside [%v, %v]", i, p, cfg.Lower[i], cfg.Upper[i])
		}
	}

	testutil.RequireNearlyEqual(t, res.Params[0], truth[0], 1)
}
