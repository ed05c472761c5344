// Package besselmath provides modified Bessel functions of the first kind
// for complex arguments, as needed by cylindrical diffusion impedances.
package besselmath

import (
	"math"
	"math/cmplx"
)

// seriesCutoff separates the power-series and asymptotic regimes. Below the
// cutoff the ascending series converges in well under 40 terms; above it the
// large-argument expansion is accurate to full double precision for
// |arg z| < pi/2.
const seriesCutoff = 25.0

// I0 computes the modified Bessel function of the first kind, order zero,
// for a complex argument.
func I0(z complex128) complex128 {
	return iN(0, z)
}

// I1 computes the modified Bessel function of the first kind, order one,
// for a complex argument.
func I1(z complex128) complex128 {
	return iN(1, z)
}

func iN(order int, z complex128) complex128 {
	if z == 0 {
		if order == 0 {
			return 1
		}
		return 0
	}

	if cmplx.Abs(z) < seriesCutoff {
		return iSeries(order, z)
	}

	return iAsymptotic(order, z)
}

// iSeries evaluates the ascending series
//
//	I_v(z) = sum_k (z/2)^(2k+v) / (k! (k+v)!)
//
// which converges for all z and is numerically well behaved for small |z|.
func iSeries(order int, z complex128) complex128 {
	half := z / 2

	// term for k = 0: (z/2)^v / v!
	term := complex(1, 0)
	for i := 1; i <= order; i++ {
		term *= half / complex(float64(i), 0)
	}

	sum := term
	zz := half * half

	for k := 1; k < 80; k++ {
		term *= zz / complex(float64(k)*float64(k+order), 0)
		sum += term

		if cmplx.Abs(term) < 1e-17*cmplx.Abs(sum) {
			break
		}
	}

	return sum
}

// iAsymptotic evaluates the large-argument expansion
//
//	I_v(z) ~ e^z / sqrt(2 pi z) * sum_k (-1)^k a_k(v) / z^k
//
// with a_k(v) the standard coefficients built from mu = 4v^2. Valid for
// Re z > 0; the impedance kernels only call it with arg z = pi/4.
func iAsymptotic(order int, z complex128) complex128 {
	mu := 4 * float64(order*order)

	sum := complex(1, 0)
	term := complex(1, 0)

	for k := 1; k <= 12; k++ {
		num := mu - float64((2*k-1)*(2*k-1))
		term *= -complex(num/(8*float64(k)), 0) / z
		sum += term

		if cmplx.Abs(term) < 1e-17 {
			break
		}
	}

	return cmplx.Exp(z) / cmplx.Sqrt(2*math.Pi*z) * sum
}
