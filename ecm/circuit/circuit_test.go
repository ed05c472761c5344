package circuit

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"
)

var testFreqs = []float64{1000, 10, 0.1}

func mustParse(t *testing.T, desc string, constants map[string]float64) *Circuit {
	t.Helper()

	c, err := Parse(desc, constants)
	if err != nil {
		t.Fatalf("Parse(%q): %v", desc, err)
	}

	return c
}

func mustImpedance(t *testing.T, c *Circuit, params []float64) []complex128 {
	t.Helper()

	z, err := c.Impedance(testFreqs, params)
	if err != nil {
		t.Fatalf("Impedance(%s): %v", c, err)
	}

	return z
}

func requireClose(t *testing.T, got, want []complex128, tol float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}

	for i := range got {
		if cmplx.Abs(got[i]-want[i]) > tol {
			t.Fatalf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestParseSeries(t *testing.T) {
	c := mustParse(t, "R0-C0-L0", nil)

	if c.NumParams() != 3 {
		t.Fatalf("NumParams = %d, want 3", c.NumParams())
	}

	got := mustImpedance(t, c, []float64{10, 1e-3, 1e-6})

	for i, f := range testFreqs {
		w := 2 * math.Pi * f
		want := complex(10, 0) + 1/complex(0, w*1e-3) + complex(0, w*1e-6)

		if cmplx.Abs(got[i]-want) > 1e-9 {
			t.Fatalf("f=%v: got %v, want %v", f, got[i], want)
		}
	}
}

func TestParseIgnoresSpaces(t *testing.T) {
	a := mustParse(t, "R0-p(R1,C1)", nil)
	b := mustParse(t, "R0 - p(R1, C1)", nil)

	params := []float64{1, 100, 1e-4}
	requireClose(t, mustImpedance(t, a, params), mustImpedance(t, b, params), 0)
}

func TestParallelOfEqualResistorsHalves(t *testing.T) {
	c := mustParse(t, "p(R0,R1)", nil)

	got := mustImpedance(t, c, []float64{10, 10})

	for i, z := range got {
		if cmplx.Abs(z-5) > 1e-12 {
			t.Fatalf("index %d: got %v, want 5", i, z)
		}
	}
}

func TestParallelNeedsTwoOperands(t *testing.T) {
	_, err := Parse("p(R0)", nil)
	if !errors.Is(err, ErrBadDescription) {
		t.Fatalf("got %v, want ErrBadDescription", err)
	}
}

func TestDifference(t *testing.T) {
	c := mustParse(t, "d(R0,R1)", nil)

	got := mustImpedance(t, c, []float64{10, 4})

	for i, z := range got {
		if cmplx.Abs(z-6) > 1e-12 {
			t.Fatalf("index %d: got %v, want 6", i, z)
		}
	}
}

func TestDifferenceArity(t *testing.T) {
	for _, desc := range []string{"d(R0)", "d(R0,R1,R2)"} {
		_, err := Parse(desc, nil)
		if !errors.Is(err, ErrBadDescription) {
			t.Errorf("%q: got %v, want ErrBadDescription", desc, err)
		}
	}
}

func TestNestedGroups(t *testing.T) {
	c := mustParse(t, "R0-p(R1-C1,C2)", nil)

	if c.NumParams() != 4 {
		t.Fatalf("NumParams = %d, want 4", c.NumParams())
	}

	got := mustImpedance(t, c, []float64{1, 100, 1e-4, 1e-6})

	for i, f := range testFreqs {
		w := 2 * math.Pi * f
		inner := complex(100, 0) + 1/complex(0, w*1e-4)
		want := complex(1, 0) + 1/(1/inner+complex(0, w*1e-6))

		if cmplx.Abs(got[i]-want) > 1e-9 {
			t.Fatalf("f=%v: got %v, want %v", f, got[i], want)
		}
	}
}

func TestUnknownElement(t *testing.T) {
	_, err := Parse("R0-QQ0", nil)
	if !errors.Is(err, ErrUnknownElement) {
		t.Fatalf("got %v, want ErrUnknownElement", err)
	}
}

func TestEmptyDescription(t *testing.T) {
	_, err := Parse("", nil)
	if !errors.Is(err, ErrEmptyCircuit) {
		t.Fatalf("got %v, want ErrEmptyCircuit", err)
	}
}

func TestConstantsPinParameters(t *testing.T) {
	c := mustParse(t, "R0-TDS0", map[string]float64{
		"R0":     5,
		"TDS0_0": 1,
	})

	// TDS has 5 parameters; one pinned leaves 4, plus nothing for R0.
	if c.NumParams() != 4 {
		t.Fatalf("NumParams = %d, want 4", c.NumParams())
	}

	labels := c.ParamLabels()
	want := []string{"TDS0_1", "TDS0_2", "TDS0_3", "TDS0_4"}

	for i, l := range labels {
		if l != want[i] {
			t.Fatalf("labels = %v, want %v", labels, want)
		}
	}
}

func TestConstantEquivalence(t *testing.T) {
	free := mustParse(t, "R0-C0", nil)
	pinned := mustParse(t, "R0-C0", map[string]float64{"R0": 10})

	a := mustImpedance(t, free, []float64{10, 1e-3})
	b := mustImpedance(t, pinned, []float64{1e-3})

	requireClose(t, a, b, 1e-12)
}

func TestUnusedConstant(t *testing.T) {
	_, err := Parse("R0-C0", map[string]float64{"R9": 1})
	if !errors.Is(err, ErrUnusedConstant) {
		t.Fatalf("got %v, want ErrUnusedConstant", err)
	}
}

func TestImpedanceParamCount(t *testing.T) {
	c := mustParse(t, "R0-C0", nil)

	_, err := c.Impedance(testFreqs, []float64{10})
	if !errors.Is(err, ErrParamCount) {
		t.Fatalf("got %v, want ErrParamCount", err)
	}
}

func TestDefaultBounds(t *testing.T) {
	c := mustParse(t, "R0-TDSn0", nil)

	lo, hi := c.DefaultBounds()
	if len(lo) != 8 || len(hi) != 8 {
		t.Fatalf("bounds length %d/%d, want 8", len(lo), len(hi))
	}

	// last two entries are kappa (unbounded) and eps ([-0.5, 0.5])
	if !math.IsInf(lo[6], -1) || !math.IsInf(hi[6], 1) {
		t.Errorf("kappa bounds [%v, %v]", lo[6], hi[6])
	}

	if lo[7] != -0.5 || hi[7] != 0.5 {
		t.Errorf("eps bounds [%v, %v]", lo[7], hi[7])
	}
}

func TestElementsAndUnits(t *testing.T) {
	c := mustParse(t, "L0-R0-TDS0", nil)

	els := c.Elements()
	want := []string{"L0", "R0", "TDS0"}

	if len(els) != len(want) {
		t.Fatalf("Elements = %v, want %v", els, want)
	}

	for i := range want {
		if els[i] != want[i] {
			t.Fatalf("Elements = %v, want %v", els, want)
		}
	}

	units := c.ParamUnits()
	if units[0] != "H" || units[1] != "Ohm" {
		t.Fatalf("units = %v", units)
	}
}

// The porous second-harmonic spectrum of a full cell is the difference of
// the two electrodes.
func TestDifferenceOfNonlinearElements(t *testing.T) {
	cell := mustParse(t, "d(TDSn0,TDSn1)", nil)

	pos := []float64{1, 10, 1e-2, 5, 1, 0.1, 0.05}
	neg := []float64{2, 8, 2e-2, 4, 0.5, -0.1, 0.02}

	got := mustImpedance(t, cell, append(append([]float64{}, pos...), neg...))

	a := mustImpedance(t, mustParse(t, "TDSn0", nil), pos)
	b := mustImpedance(t, mustParse(t, "TDSn0", nil), neg)

	want := make([]complex128, len(a))
	for i := range want {
		want[i] = a[i] - b[i]
	}

	requireClose(t, got, want, 1e-9)
}
