package testutil

import (
	"math"
	"testing"
)

func TestMaxComplexAbsDiff(t *testing.T) {
	a := []complex128{1, 2 + 1i, 3}
	b := []complex128{1, 2 + 1.1i, 3}

	d := MaxComplexAbsDiff(a, b)
	if math.Abs(d-0.1) > 1e-15 {
		t.Fatalf("MaxComplexAbsDiff = %v, want 0.1", d)
	}
}

func TestMaxComplexAbsDiffIdentical(t *testing.T) {
	a := []complex128{1 + 2i, 3 - 4i}
	if d := MaxComplexAbsDiff(a, a); d != 0 {
		t.Fatalf("MaxComplexAbsDiff = %v, want 0 for identical slices", d)
	}
}

func TestRequireFinitePasses(t *testing.T) {
	RequireFinite(t, []float64{0, -1, 1e300})
	RequireComplexFinite(t, []complex128{0, 1 + 2i})
}

func TestRequireSliceNearlyEqualPasses(t *testing.T) {
	RequireSliceNearlyEqual(t, []float64{1, 2}, []float64{1 + 1e-12, 2}, 1e-9)
	RequireComplexSliceNearlyEqual(t, []complex128{1i}, []complex128{1e-12 + 1i}, 1e-9)
}
