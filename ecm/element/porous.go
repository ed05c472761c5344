package element

import (
	"math/cmplx"

	"github.com/yuefan98/NLEIS-Toolbox/internal/besselmath"
)

// Porous-electrode element pairs with a high-conductivity matrix: charge
// transfer only (TPO/TPOn) and with planar, spherical, or cylindrical
// particle diffusion (TDP/TDPn, TDS/TDSn, TDC/TDCn).
func init() {
	MustRegister(Element{
		Name: "TPO",
		Params: []Param{
			positive("Rpore", "Ohm"), positive("Rct", "Ohm"), positive("Cdl", "F"),
		},
		Func: tpo,
	})
	MustRegister(Element{
		Name: "TPOn",
		Params: []Param{
			positive("Rpore", "Ohm"), positive("Rct", "Ohm"), positive("Cdl", "F"),
			epsilonParam("eps"),
		},
		Func: tpoN,
	})
	MustRegister(Element{
		Name:   "TDP",
		Params: porousDiffusionParams(),
		Func:   porousFirst(diffusionPlanar),
	})
	MustRegister(Element{
		Name:   "TDPn",
		Params: porousDiffusionSecondParams(),
		Func:   porousSecond(diffusionPlanar),
	})
	MustRegister(Element{
		Name:   "TDS",
		Params: porousDiffusionParams(),
		Func:   porousFirst(diffusionSpherical),
	})
	MustRegister(Element{
		Name:   "TDSn",
		Params: porousDiffusionSecondParams(),
		Func:   porousSecond(diffusionSpherical),
	})
	MustRegister(Element{
		Name:   "TDC",
		Params: porousDiffusionParams(),
		Func:   porousFirst(diffusionCylindrical),
	})
	MustRegister(Element{
		Name:   "TDCn",
		Params: porousDiffusionSecondParams(),
		Func:   porousSecond(diffusionCylindrical),
	})
}

func porousDiffusionParams() []Param {
	return []Param{
		positive("Rpore", "Ohm"), positive("Rct", "Ohm"), positive("Cdl", "F"),
		positive("Aw", "Ohm"), positive("tau", "s"),
	}
}

func porousDiffusionSecondParams() []Param {
	return append(porousDiffusionParams(), kappaParam("kappa"), epsilonParam("eps"))
}

// diffusionCylindrical is the cylindrical-particle diffusion impedance
// Aw*I0(s)/(s*I1(s)) with s = sqrt(j*w*tau). The Bessel values are capped
// once the real part of s reaches the overflow guard.
func diffusionCylindrical(aw, tau, w float64) complex128 {
	s := cmplx.Sqrt(complex(0, w*tau))

	i0 := complex(besselCap, 0)
	i1 := complex(besselCap, 0)

	if real(s) < hyperbolicGuard {
		i0 = besselmath.I0(s)
		i1 = besselmath.I1(s)
	}

	return complex(aw, 0) * i0 / (s * i1)
}

// tpo is the first-harmonic porous electrode response with charge transfer
// only:
//
//	Z1 = Rpore * coth(b1) / b1,  b1 = sqrt(j*w*Cdl*Rpore + Rpore/Rct)
func tpo(p, f []float64) ([]complex128, error) {
	rpore, rct, cdl := p[0], p[1], p[2]

	z := make([]complex128, len(f))
	for i, w := range angular(f) {
		b := cmplx.Sqrt(complex(rpore/rct, w*rpore*cdl))
		z[i] = complex(rpore, 0) / (b * cmplx.Tanh(b))
	}

	return z, nil
}

// tpoN is the second-harmonic porous electrode response with charge
// transfer only. b1 and b2 are the fundamental and doubled-frequency
// propagation factors; the hyperbolic terms carry overflow caps.
func tpoN(p, f []float64) ([]complex128, error) {
	rpore, rct, cdl, eps := p[0], p[1], p[2], p[3]

	z := make([]complex128, len(f))
	for i, w := range angular(f) {
		b1 := cmplx.Sqrt(complex(rpore/rct, w*rpore*cdl))
		b2 := cmplx.Sqrt(complex(rpore/rct, 2*w*rpore*cdl))

		mf := complex(rpore*rpore*rpore/rct*eps*fThermal, 0)
		z[i] = mf / (b1 * safeSinh(b1) * b1 * safeSinh(b1)) * porousHarmonicKernel(b1, b2)
	}

	return z, nil
}

// porousHarmonicKernel is the shared beta-space factor of the
// second-harmonic porous responses:
//
//	(b1/b2)*sinh(2*b1) / ((b2^2-4*b1^2)*tanh(b2))
//	  - cosh(2*b1)/(2*(b2^2-4*b1^2)) - 1/(2*b2^2)
func porousHarmonicKernel(b1, b2 complex128) complex128 {
	den := b2*b2 - 4*b1*b1

	part1 := b1 / b2 * safeSinh2(b1) / (den * cmplx.Tanh(b2))
	part2 := -safeCosh2(b1)/(2*den) - 1/(2*b2*b2)

	return part1 + part2
}

// porousFirst builds the first-harmonic porous response with particle
// diffusion:
//
//	Z1 = Rpore*coth(b1)/b1,  b1 = sqrt(j*w*Cdl*Rpore + Rpore/(Zd1+Rct))
func porousFirst(zd func(aw, tau, w float64) complex128) Func {
	return func(p, f []float64) ([]complex128, error) {
		rpore, rct, cdl, aw, tau := p[0], p[1], p[2], p[3], p[4]

		z := make([]complex128, len(f))
		for i, w := range angular(f) {
			d := zd(aw, tau, w)
			b := cmplx.Sqrt(complex(0, w*rpore*cdl) + complex(rpore, 0)/(d+complex(rct, 0)))
			z[i] = complex(rpore, 0) / (b * cmplx.Tanh(b))
		}

		return z, nil
	}
}

// porousSecond builds the second-harmonic porous response with particle
// diffusion, combining the diffusion admittance split (y1, y2) with the
// beta-space kernel.
func porousSecond(zd func(aw, tau, w float64) complex128) Func {
	return func(p, f []float64) ([]complex128, error) {
		rpore, rct, cdl, aw, tau := p[0], p[1], p[2], p[3], p[4]
		kappa, eps := p[5], p[6]

		rc := complex(rct, 0)
		rp := complex(rpore, 0)

		z := make([]complex128, len(f))
		for i, w := range angular(f) {
			zd1 := zd(aw, tau, w)
			zd2 := zd(aw, tau, 2*w)

			y1 := rc / (zd1 + rc)
			y2 := zd1 / (zd1 + rc)

			b1 := cmplx.Sqrt(complex(0, w*rpore*cdl) + rp/(zd1+rc))
			b2 := cmplx.Sqrt(complex(0, 2*w*rpore*cdl) + rp/(zd2+rc))

			k := -(rc*complex(kappa, 0)*y2*y2 - rc*complex(eps*fThermal, 0)*y1*y1) / (zd2 + rc)
			mf := rp * rp * rp * k / rc / (b1 * safeSinh(b1) * b1 * safeSinh(b1))

			z[i] = mf * porousHarmonicKernel(b1, b2)
		}

		return z, nil
	}
}
