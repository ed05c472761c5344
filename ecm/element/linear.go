package element

import (
	"math"
	"math/cmplx"
)

// Linear single-impedance elements used in EIS circuit strings.
func init() {
	MustRegister(Element{
		Name:   "R",
		Params: []Param{positive("R", "Ohm")},
		Func:   resistor,
	})
	MustRegister(Element{
		Name:   "C",
		Params: []Param{positive("C", "F")},
		Func:   capacitor,
	})
	MustRegister(Element{
		Name:   "L",
		Params: []Param{positive("L", "H")},
		Func:   inductor,
	})
	MustRegister(Element{
		Name: "CPE",
		Params: []Param{
			positive("Q", "Ohm^-1 s^a"),
			{Name: "alpha", Unit: "", Lower: 0, Upper: 1},
		},
		Func: cpe,
	})
	MustRegister(Element{
		Name:   "W",
		Params: []Param{positive("sigma", "Ohm s^-1/2")},
		Func:   warburg,
	})
	MustRegister(Element{
		Name:   "Wo",
		Params: []Param{positive("Z0", "Ohm"), positive("tau", "s")},
		Func:   warburgOpen,
	})
	MustRegister(Element{
		Name:   "Ws",
		Params: []Param{positive("Z0", "Ohm"), positive("tau", "s")},
		Func:   warburgShort,
	})
}

func resistor(p, f []float64) ([]complex128, error) {
	z := make([]complex128, len(f))
	for i := range z {
		z[i] = complex(p[0], 0)
	}
	return z, nil
}

func capacitor(p, f []float64) ([]complex128, error) {
	z := make([]complex128, len(f))
	for i, w := range angular(f) {
		z[i] = 1 / complex(0, w*p[0])
	}
	return z, nil
}

func inductor(p, f []float64) ([]complex128, error) {
	z := make([]complex128, len(f))
	for i, w := range angular(f) {
		z[i] = complex(0, w*p[0])
	}
	return z, nil
}

// cpe is the constant phase element Z = 1/(Q*(j*w)^alpha).
func cpe(p, f []float64) ([]complex128, error) {
	q, alpha := p[0], p[1]

	z := make([]complex128, len(f))
	for i, w := range angular(f) {
		z[i] = 1 / (complex(q, 0) * cmplx.Pow(complex(0, w), complex(alpha, 0)))
	}

	return z, nil
}

// warburg is the semi-infinite diffusion impedance sigma*(1-j)/sqrt(w).
func warburg(p, f []float64) ([]complex128, error) {
	z := make([]complex128, len(f))
	for i, w := range angular(f) {
		s := p[0] / math.Sqrt(w)
		z[i] = complex(s, -s)
	}
	return z, nil
}

// warburgOpen is the finite-length diffusion impedance with a reflective
// boundary: Z0*coth(sqrt(j*w*tau))/sqrt(j*w*tau).
func warburgOpen(p, f []float64) ([]complex128, error) {
	z := make([]complex128, len(f))
	for i, w := range angular(f) {
		z[i] = diffusionPlanar(p[0], p[1], w)
	}
	return z, nil
}

// warburgShort is the finite-length diffusion impedance with a transmissive
// boundary: Z0*tanh(sqrt(j*w*tau))/sqrt(j*w*tau).
func warburgShort(p, f []float64) ([]complex128, error) {
	z := make([]complex128, len(f))
	for i, w := range angular(f) {
		s := cmplx.Sqrt(complex(0, w*p[1]))
		z[i] = complex(p[0], 0) * cmplx.Tanh(s) / s
	}
	return z, nil
}
