package element

// Randles-circuit element pairs for planar electrodes: charge transfer only
// (RCO/RCOn), with thin-film planar diffusion (RCD/RCDn), and with
// spherical-particle diffusion (RCS/RCSn). Transfer functions follow
// Ji & Schwartz, J. Electrochem. Soc. 170 (2023) 123511.
func init() {
	MustRegister(Element{
		Name:   "RCO",
		Params: []Param{positive("Rct", "Ohm"), positive("Cdl", "F")},
		Func:   rco,
	})
	MustRegister(Element{
		Name: "RCOn",
		Params: []Param{
			positive("Rct", "Ohm"), positive("Cdl", "F"),
			epsilonParam("eps"),
		},
		Func: rcoN,
	})
	MustRegister(Element{
		Name: "RCD",
		Params: []Param{
			positive("Rct", "Ohm"), positive("Cdl", "F"),
			positive("Aw", "Ohm"), positive("tau", "s"),
		},
		Func: rcd,
	})
	MustRegister(Element{
		Name: "RCDn",
		Params: []Param{
			positive("Rct", "Ohm"), positive("Cdl", "F"),
			positive("Aw", "Ohm"), positive("tau", "s"),
			kappaParam("kappa"), epsilonParam("eps"),
		},
		Func: rcdN,
	})
	MustRegister(Element{
		Name: "RCS",
		Params: []Param{
			positive("Rct", "Ohm"), positive("Cdl", "F"),
			positive("Aw", "Ohm"), positive("tau", "s"),
		},
		Func: rcs,
	})
	MustRegister(Element{
		Name: "RCSn",
		Params: []Param{
			positive("Rct", "Ohm"), positive("Cdl", "F"),
			positive("Aw", "Ohm"), positive("tau", "s"),
			kappaParam("kappa"), epsilonParam("eps"),
		},
		Func: rcsN,
	})
}

var (
	rcd  = diffusionRandles(diffusionPlanar)
	rcdN = diffusionRandlesSecond(diffusionPlanar)
	rcs  = diffusionRandles(diffusionSpherical)
	rcsN = diffusionRandlesSecond(diffusionSpherical)
)

// rco is the first-harmonic Randles response with charge transfer only:
//
//	Z1 = Rct / (1 + j*w*Rct*Cdl)
func rco(p, f []float64) ([]complex128, error) {
	rct, cdl := p[0], p[1]

	z := make([]complex128, len(f))
	for i, w := range angular(f) {
		ws := w * rct * cdl
		z[i] = complex(rct, 0) / complex(1, ws)
	}

	return z, nil
}

// rcoN is the second-harmonic Randles response with charge transfer only:
//
//	Z2 = -eps*f*Rct^2 / (1 + 4j*ws - 5*ws^2 - 2j*ws^3),  ws = w*Rct*Cdl
func rcoN(p, f []float64) ([]complex128, error) {
	rct, cdl, eps := p[0], p[1], p[2]

	z := make([]complex128, len(f))
	for i, w := range angular(f) {
		ws := w * rct * cdl
		den := complex(1-5*ws*ws, 4*ws-2*ws*ws*ws)
		z[i] = complex(-eps*fThermal015*rct*rct, 0) / den
	}

	return z, nil
}

// diffusionRandles builds the first-harmonic Randles response with a
// diffusion branch in series with charge transfer:
//
//	Z1 = Rct / (Rct/(Rct+Zd) + j*w*Rct*Cdl)
func diffusionRandles(zd func(aw, tau, w float64) complex128) Func {
	return func(p, f []float64) ([]complex128, error) {
		rct, cdl, aw, tau := p[0], p[1], p[2], p[3]

		z := make([]complex128, len(f))
		for i, w := range angular(f) {
			d := zd(aw, tau, w)
			ws := complex(0, w*rct*cdl)
			z[i] = complex(rct, 0) / (complex(rct, 0)/(complex(rct, 0)+d) + ws)
		}

		return z, nil
	}
}

// diffusionRandlesSecond builds the second-harmonic Randles response with a
// diffusion branch, mixing the curvature (kappa) and asymmetry (eps)
// contributions of the fundamental and the doubled frequency:
//
//	Z2 = const * Z1^2 / (2j*ws + Rct/(Zd2+Rct))
//	const = (Rct*kappa*y2^2 - Rct*eps*f*y1^2) / (Zd2+Rct)
//	y1 = Rct/(Zd1+Rct), y2 = Zd1/(Zd1+Rct)
func diffusionRandlesSecond(zd func(aw, tau, w float64) complex128) Func {
	return func(p, f []float64) ([]complex128, error) {
		rct, cdl, aw, tau := p[0], p[1], p[2], p[3]
		kappa, eps := p[4], p[5]

		rc := complex(rct, 0)

		z := make([]complex128, len(f))
		for i, w := range angular(f) {
			zd1 := zd(aw, tau, w)
			zd2 := zd(aw, tau, 2*w)

			ws := w * rct * cdl
			y1 := rc / (zd1 + rc)
			y2 := zd1 / (zd1 + rc)

			z1 := rc / (y1 + complex(0, ws))
			k := (rc*complex(kappa, 0)*y2*y2 - rc*complex(eps*fThermal, 0)*y1*y1) / (zd2 + rc)

			z[i] = k * z1 * z1 / (complex(0, 2*ws) + rc/(zd2+rc))
		}

		return z, nil
	}
}
