package element

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrBadSegmentCount is returned when a transmission-line element's segment
// count parameter is not a positive integer value.
var ErrBadSegmentCount = errors.New("element: segment count must be a positive integer")

// Discrete transmission-line models (TLM) built from stacked Randles units:
// charge transfer only (TLM/TLMn), with spherical diffusion (TLMS/TLMSn),
// and with planar diffusion (TLMD/TLMDn). The last p index before the
// nonlinear tail encodes the number of segments N.
func init() {
	MustRegister(Element{
		Name: "TLM",
		Params: []Param{
			positive("Rpore", "Ohm"), positive("Rct", "Ohm"), positive("Cdl", "F"),
			positive("Rs", "Ohm"), positive("Cs", "F"),
			segmentParam(),
		},
		Func: tlmFirst(tlmPlain),
	})
	MustRegister(Element{
		Name: "TLMn",
		Params: []Param{
			positive("Rpore", "Ohm"), positive("Rct", "Ohm"), positive("Cdl", "F"),
			positive("Rs", "Ohm"), positive("Cs", "F"),
			segmentParam(),
			epsilonParam("eps_bulk"), epsilonParam("eps_surf"),
		},
		Func: tlmSecond(tlmPlain),
	})
	MustRegister(Element{
		Name: "TLMS",
		Params: []Param{
			positive("Rpore", "Ohm"), positive("Rct", "Ohm"), positive("Cdl", "F"),
			positive("Aw", "Ohm"), positive("tau", "s"),
			positive("Rs", "Ohm"), positive("Cs", "F"),
			segmentParam(),
		},
		Func: tlmFirst(tlmSpherical),
	})
	MustRegister(Element{
		Name: "TLMSn",
		Params: []Param{
			positive("Rpore", "Ohm"), positive("Rct", "Ohm"), positive("Cdl", "F"),
			positive("Aw", "Ohm"), positive("tau", "s"),
			positive("Rs", "Ohm"), positive("Cs", "F"),
			segmentParam(),
			kappaParam("kappa"), epsilonParam("eps_bulk"), epsilonParam("eps_surf"),
		},
		Func: tlmSecond(tlmSpherical),
	})
	MustRegister(Element{
		Name: "TLMD",
		Params: []Param{
			positive("Rpore", "Ohm"), positive("Rct", "Ohm"), positive("Cdl", "F"),
			positive("Aw", "Ohm"), positive("tau", "s"),
			positive("Rs", "Ohm"), positive("Cs", "F"),
			segmentParam(),
		},
		Func: tlmFirst(tlmPlanar),
	})
	MustRegister(Element{
		Name: "TLMDn",
		Params: []Param{
			positive("Rpore", "Ohm"), positive("Rct", "Ohm"), positive("Cdl", "F"),
			positive("Aw", "Ohm"), positive("tau", "s"),
			positive("Rs", "Ohm"), positive("Cs", "F"),
			segmentParam(),
			kappaParam("kappa"), epsilonParam("eps_bulk"), epsilonParam("eps_surf"),
		},
		Func: tlmSecond(tlmPlanar),
	})
}

func segmentParam() Param {
	return Param{Name: "N", Unit: "", Lower: 1, Upper: math.Inf(1)}
}

// tlmVariant describes how one transmission-line segment is assembled from
// Randles units and where the shared parameters sit in the vector.
type tlmVariant struct {
	segmentIdx int
	// unit computes per-segment bulk and surface impedances at the given
	// frequency grid, after N-scaling has been applied to p.
	bulk  func(scaled []float64, f []float64) ([]complex128, error)
	surf  func(scaled []float64, f []float64) ([]complex128, error)
	bulk2 func(scaled []float64, eps, kappa float64, f []float64) ([]complex128, error)
	surf2 func(scaled []float64, eps float64, f []float64) ([]complex128, error)
}

var tlmPlain = tlmVariant{
	segmentIdx: 5,
	bulk: func(s, f []float64) ([]complex128, error) {
		return rco([]float64{s[1], s[2]}, f)
	},
	surf: func(s, f []float64) ([]complex128, error) {
		return rco([]float64{s[3], s[4]}, f)
	},
	bulk2: func(s []float64, eps, _ float64, f []float64) ([]complex128, error) {
		return rcoN([]float64{s[1], s[2], eps}, f)
	},
	surf2: func(s []float64, eps float64, f []float64) ([]complex128, error) {
		return rcoN([]float64{s[3], s[4], eps}, f)
	},
}

var tlmSpherical = tlmVariant{
	segmentIdx: 7,
	bulk: func(s, f []float64) ([]complex128, error) {
		return rcs([]float64{s[1], s[2], s[3], s[4]}, f)
	},
	surf: func(s, f []float64) ([]complex128, error) {
		return rco([]float64{s[5], s[6]}, f)
	},
	bulk2: func(s []float64, eps, kappa float64, f []float64) ([]complex128, error) {
		return rcsN([]float64{s[1], s[2], s[3], s[4], kappa, eps}, f)
	},
	surf2: func(s []float64, eps float64, f []float64) ([]complex128, error) {
		return rcoN([]float64{s[5], s[6], eps}, f)
	},
}

var tlmPlanar = tlmVariant{
	segmentIdx: 7,
	bulk: func(s, f []float64) ([]complex128, error) {
		return rcd([]float64{s[1], s[2], s[3], s[4]}, f)
	},
	surf: func(s, f []float64) ([]complex128, error) {
		return rco([]float64{s[5], s[6]}, f)
	},
	bulk2: func(s []float64, eps, kappa float64, f []float64) ([]complex128, error) {
		return rcdN([]float64{s[1], s[2], s[3], s[4], kappa, eps}, f)
	},
	surf2: func(s []float64, eps float64, f []float64) ([]complex128, error) {
		return rcoN([]float64{s[5], s[6], eps}, f)
	},
}

// segments validates and extracts the segment count from the parameter
// vector.
func (v tlmVariant) segments(p []float64) (int, error) {
	nf := p[v.segmentIdx]
	n := int(nf)

	if nf != float64(n) || n < 1 {
		return 0, fmt.Errorf("%w: got %v", ErrBadSegmentCount, nf)
	}

	return n, nil
}

// scale applies the per-segment parameter scaling: pore and double-layer
// quantities split across N segments, per-segment resistances and Warburg
// coefficients multiplied by N. The diffusion time constant is intensive and
// stays unscaled.
func (v tlmVariant) scale(p []float64, n int) []float64 {
	s := make([]float64, len(p))
	copy(s, p)

	nn := float64(n)
	s[0] = p[0] / nn

	if v.segmentIdx == 5 {
		s[1] = p[1] * nn
		s[2] = p[2] / nn
		s[3] = p[3] * nn
		s[4] = p[4] / nn
	} else {
		s[1] = p[1] * nn
		s[2] = p[2] / nn
		s[3] = p[3] * nn
		s[5] = p[5] * nn
		s[6] = p[6] / nn
	}

	return s
}

// ladder folds N identical segments into the equivalent input impedance of
// the discrete pore ladder.
func ladder(zran []complex128, rpore float64, n int) []complex128 {
	req := make([]complex128, len(zran))
	copy(req, zran)

	rp := complex(rpore, 0)

	for i := 1; i < n; i++ {
		for k := range req {
			req[k] = 1 / (1/(req[k]+rp) + 1/zran[k])
		}
	}

	return req
}

// tlmFirst builds the first-harmonic TLM response: the folded ladder of
// Randles segments.
func tlmFirst(v tlmVariant) Func {
	return func(p, f []float64) ([]complex128, error) {
		n, err := v.segments(p)
		if err != nil {
			return nil, err
		}

		s := v.scale(p, n)

		zb, err := v.bulk(s, f)
		if err != nil {
			return nil, err
		}

		zs, err := v.surf(s, f)
		if err != nil {
			return nil, err
		}

		zran := make([]complex128, len(f))
		for i := range zran {
			zran[i] = zb[i] + zs[i]
		}

		return ladder(zran, s[0], n), nil
	}
}

// tlmUnit collects the per-segment impedances needed by the second-harmonic
// solve: fundamental, second harmonic, and fundamental at doubled frequency.
func (v tlmVariant) tlmUnit(s []float64, p, f []float64) (z1, z2, z12t []complex128, err error) {
	var kappa, epsBulk, epsSurf float64
	if v.segmentIdx == 5 {
		epsBulk, epsSurf = p[6], p[7]
	} else {
		kappa, epsBulk, epsSurf = p[8], p[9], p[10]
	}

	f2 := make([]float64, len(f))
	for i, x := range f {
		f2[i] = 2 * x
	}

	zb, err := v.bulk(s, f)
	if err != nil {
		return nil, nil, nil, err
	}
	zs, err := v.surf(s, f)
	if err != nil {
		return nil, nil, nil, err
	}
	z2b, err := v.bulk2(s, epsBulk, kappa, f)
	if err != nil {
		return nil, nil, nil, err
	}
	z2s, err := v.surf2(s, epsSurf, f)
	if err != nil {
		return nil, nil, nil, err
	}
	zb2t, err := v.bulk(s, f2)
	if err != nil {
		return nil, nil, nil, err
	}
	zs2t, err := v.surf(s, f2)
	if err != nil {
		return nil, nil, nil, err
	}

	z1 = make([]complex128, len(f))
	z2 = make([]complex128, len(f))
	z12t = make([]complex128, len(f))

	for i := range f {
		z1[i] = zb[i] + zs[i]
		z2[i] = z2b[i] + z2s[i]
		z12t[i] = zb2t[i] + zs2t[i]
	}

	return z1, z2, z12t, nil
}

// tlmSecond builds the second-harmonic TLM response. N = 1 is the bare
// nonlinear segment and N = 2 has a closed form; larger ladders solve for
// the interior second-harmonic node currents at each frequency.
func tlmSecond(v tlmVariant) Func {
	return func(p, f []float64) ([]complex128, error) {
		n, err := v.segments(p)
		if err != nil {
			return nil, err
		}

		s := v.scale(p, n)

		z1, z2, z12t, err := v.tlmUnit(s, p, f)
		if err != nil {
			return nil, err
		}

		if n == 1 {
			return z2, nil
		}

		rp := complex(s[0], 0)

		if n == 2 {
			z := make([]complex128, len(f))
			for i := range f {
				sum1 := z1[i] * z1[i] / ((2*z1[i] + rp) * (2*z1[i] + rp))
				sum2 := (z12t[i]*rp + rp*rp) / ((2*z12t[i] + rp) * (2*z1[i] + rp))
				z[i] = (sum1 + sum2) * z2[i]
			}
			return z, nil
		}

		i1, err := firstHarmonicCurrents(z1, s[0], n)
		if err != nil {
			return nil, err
		}

		z := make([]complex128, len(f))
		for k := range f {
			i2, err := secondHarmonicCurrents(i1[k], s[0], z12t[k], z2[k], n)
			if err != nil {
				return nil, err
			}

			z[k] = z2[k]*i1[k][0]*i1[k][0] + i2[n-1]*z12t[k]
		}

		return z, nil
	}
}

// firstHarmonicCurrents solves, for each frequency, the Kirchhoff system
// for the fraction of total current passing through each of the n segments.
// This is the mTi family of the reference implementation.
func firstHarmonicCurrents(zran []complex128, rpore float64, n int) ([][]complex128, error) {
	req := ladder(zran, rpore, n)

	out := make([][]complex128, len(zran))

	a := make([]complex128, n*n)
	b := make([]complex128, n)

	for k := range zran {
		total := req[k] + complex(rpore, 0)

		for i := 0; i < n; i++ {
			b[i] = total

			for j := 0; j < n; j++ {
				v := complex(float64(i+1)*rpore, 0)
				if i == j {
					v += zran[k]
				} else if j < i {
					v += complex(-float64(i-j)*rpore, 0)
				}
				a[i*n+j] = v
			}
		}

		x, err := solveComplex(a, b, n)
		if err != nil {
			return nil, err
		}

		out[k] = x
	}

	return out, nil
}

// secondHarmonicCurrents solves the interior second-harmonic current system
// for one frequency. ii holds the first-harmonic current fractions, z12t the
// segment impedance at doubled frequency and z2 the segment second-harmonic
// impedance.
func secondHarmonicCurrents(ii []complex128, rpore float64, z12t, z2 complex128, n int) ([]complex128, error) {
	a := make([]complex128, n*n)
	b := make([]complex128, n)

	for i := 0; i < n-1; i++ {
		for j := 0; j < n; j++ {
			v := complex(0, 0)

			if d := n - 1 - i - j; d > 0 {
				v = complex(float64(d)*rpore, 0)
			}

			if j == 0 {
				v += z12t
			}
			if j == n-1-i {
				v -= z12t
			}

			a[i*n+j] = v
		}

		b[i] = -(ii[n-1]*ii[n-1] - ii[i]*ii[i]) * z2
	}

	for j := 0; j < n; j++ {
		a[(n-1)*n+j] = 1
	}
	b[n-1] = 0

	return solveComplex(a, b, n)
}

// solveComplex solves the dense complex system A*x = b by embedding it in a
// real system of twice the size, using gonum's LU-backed solver.
func solveComplex(a, b []complex128, n int) ([]complex128, error) {
	ar := mat.NewDense(2*n, 2*n, nil)
	br := mat.NewVecDense(2*n, nil)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			re := real(a[i*n+j])
			im := imag(a[i*n+j])

			ar.Set(i, j, re)
			ar.Set(i, n+j, -im)
			ar.Set(n+i, j, im)
			ar.Set(n+i, n+j, re)
		}

		br.SetVec(i, real(b[i]))
		br.SetVec(n+i, imag(b[i]))
	}

	var x mat.VecDense
	if err := x.SolveVec(ar, br); err != nil {
		return nil, fmt.Errorf("element: transmission line solve: %w", err)
	}

	out := make([]complex128, n)
	for i := range out {
		out[i] = complex(x.AtVec(i), x.AtVec(n+i))
	}

	return out, nil
}

// CurrentDistribution computes the first-harmonic current fraction carried
// by each segment of a transmission-line element, one row per frequency.
// The parameter vector matches the corresponding TLM element (TLM, TLMS or
// TLMD by name).
func CurrentDistribution(name string, p, f []float64) ([][]complex128, error) {
	v, nonlinear, err := tlmVariantByName(name)
	if err != nil {
		return nil, err
	}

	n, err := v.segments(p)
	if err != nil {
		return nil, err
	}

	s := v.scale(p, n)

	zb, err := v.bulk(s, f)
	if err != nil {
		return nil, err
	}
	zs, err := v.surf(s, f)
	if err != nil {
		return nil, err
	}

	zran := make([]complex128, len(f))
	for i := range zran {
		zran[i] = zb[i] + zs[i]
	}

	i1, err := firstHarmonicCurrents(zran, s[0], n)
	if err != nil {
		return nil, err
	}

	if !nonlinear {
		return i1, nil
	}

	if n < 2 {
		return nil, fmt.Errorf("%w: second-harmonic distribution needs at least 2 segments", ErrBadSegmentCount)
	}

	_, z2, z12t, err := v.tlmUnit(s, p, f)
	if err != nil {
		return nil, err
	}

	out := make([][]complex128, len(f))
	for k := range f {
		i2, err := secondHarmonicCurrents(i1[k], s[0], z12t[k], z2[k], n)
		if err != nil {
			return nil, err
		}

		// Reverse so segments are reported from the separator inward.
		for l, r := 0, len(i2)-1; l < r; l, r = l+1, r-1 {
			i2[l], i2[r] = i2[r], i2[l]
		}

		out[k] = i2
	}

	return out, nil
}

func tlmVariantByName(name string) (tlmVariant, bool, error) {
	switch name {
	case "TLM", "mTi":
		return tlmPlain, false, nil
	case "TLMS", "mTiS":
		return tlmSpherical, false, nil
	case "TLMD", "mTiD":
		return tlmPlanar, false, nil
	case "TLMSn", "mTiSn":
		return tlmSpherical, true, nil
	case "TLMDn", "mTiDn":
		return tlmPlanar, true, nil
	default:
		return tlmVariant{}, false, fmt.Errorf("%w: %s is not a transmission-line model", ErrElementUnknown, name)
	}
}
