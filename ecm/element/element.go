package element

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sort"
	"strings"
	"sync"
)

// Errors returned by the element registry and element evaluation.
var (
	ErrElementExists  = errors.New("element: name already registered")
	ErrElementUnknown = errors.New("element: unknown element")
	ErrReservedName   = errors.New("element: name reserved for circuit operators")
	ErrParamCount     = errors.New("element: wrong number of parameters")
)

// Thermal voltage factor F/(R*T) in 1/V. The Randles charge-transfer pair
// was published with T = 298.15 K, the porous and diffusion elements with
// T = 298 K; both values are kept to reproduce the published responses.
const (
	faraday     = 96485.3321233100184
	gasConstant = 8.31446261815324

	fThermal    = faraday / (gasConstant * 298)
	fThermal015 = faraday / (gasConstant * 298.15)
)

// Param describes one element parameter: its conventional symbol, unit, and
// the default lower/upper bounds applied during fitting.
type Param struct {
	Name  string
	Unit  string
	Lower float64
	Upper float64
}

// Func computes the element impedance at each frequency in f (Hz) for the
// parameter vector p.
type Func func(p, f []float64) ([]complex128, error)

// Element is a named circuit element with parameter metadata and an
// impedance transfer function.
type Element struct {
	Name   string
	Params []Param
	Func   Func
}

// NumParams returns the number of parameters the element takes.
func (e Element) NumParams() int { return len(e.Params) }

// Units returns the parameter units in declaration order.
func (e Element) Units() []string {
	units := make([]string, len(e.Params))
	for i, p := range e.Params {
		units[i] = p.Unit
	}
	return units
}

// Bounds returns the default lower and upper fitting bounds for the
// element's parameters.
func (e Element) Bounds() (lo, hi []float64) {
	lo = make([]float64, len(e.Params))
	hi = make([]float64, len(e.Params))

	for i, p := range e.Params {
		lo[i] = p.Lower
		hi[i] = p.Upper
	}

	return lo, hi
}

// Evaluate checks the parameter count and computes the impedance at each
// frequency.
func (e Element) Evaluate(p, f []float64) ([]complex128, error) {
	if len(p) != len(e.Params) {
		return nil, fmt.Errorf("%w: %s takes %d, got %d", ErrParamCount, e.Name, len(e.Params), len(p))
	}

	return e.Func(p, f)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Element)
)

// Register adds an element to the package registry. Registering a name that
// already exists fails with ErrElementExists unless overwrite is set; the
// operator names "s", "p" and "d" are always rejected.
func Register(e Element, overwrite bool) error {
	if e.Name == "" {
		return errors.New("element: empty name")
	}

	if e.Name == "s" || e.Name == "p" || e.Name == "d" {
		return fmt.Errorf("%w: %s", ErrReservedName, e.Name)
	}

	if e.Func == nil {
		return fmt.Errorf("element: %s has nil transfer function", e.Name)
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[e.Name]; exists && !overwrite {
		return fmt.Errorf("%w: %s", ErrElementExists, e.Name)
	}

	registry[e.Name] = e

	return nil
}

// MustRegister is like Register but panics on error. It is used for the
// built-in element set.
func MustRegister(e Element) {
	if err := Register(e, false); err != nil {
		panic("element registry: " + err.Error())
	}
}

// Lookup returns the element registered under name.
func Lookup(name string) (Element, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	e, ok := registry[name]
	if !ok {
		return Element{}, fmt.Errorf("%w: %s", ErrElementUnknown, name)
	}

	return e, nil
}

// Names returns all registered element names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// BaseName strips the numeric instance suffix from an element label, so
// "TDSn0" yields "TDSn" and "R12" yields "R".
func BaseName(label string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '_' {
			return -1
		}
		return r
	}, label)
}

// IsNonlinear reports whether name denotes a second-harmonic element: a
// trailing "n" whose linear counterpart is also registered.
func IsNonlinear(name string) bool {
	if !strings.HasSuffix(name, "n") {
		return false
	}

	registryMu.RLock()
	defer registryMu.RUnlock()

	_, ok := registry[strings.TrimSuffix(name, "n")]

	return ok
}

// LinearCounterpart returns the linear (EIS) element paired with a
// second-harmonic element name, or the name itself for linear elements.
func LinearCounterpart(name string) string {
	if IsNonlinear(name) {
		return strings.TrimSuffix(name, "n")
	}
	return name
}

// positive is the default bound pair for physical magnitudes.
func positive(name, unit string) Param {
	return Param{Name: name, Unit: unit, Lower: 0, Upper: math.Inf(1)}
}

// epsilonParam is the second-harmonic asymmetry parameter, bounded to the
// physically meaningful window.
func epsilonParam(name string) Param {
	return Param{Name: name, Unit: "", Lower: -0.5, Upper: 0.5}
}

// kappaParam is the second-harmonic curvature parameter, unbounded.
func kappaParam(name string) Param {
	return Param{Name: name, Unit: "1/V", Lower: math.Inf(-1), Upper: math.Inf(1)}
}

func angular(f []float64) []float64 {
	w := make([]float64, len(f))
	for i, v := range f {
		w[i] = 2 * math.Pi * v
	}
	return w
}

// Overflow caps for hyperbolic terms, matching the reference implementation:
// once the real part of the argument reaches 100, sinh/cosh are replaced by
// a large constant to keep the interior solves finite.
const (
	hyperbolicGuard = 100.0
	hyperbolicCap   = 1e10
	besselCap       = 1e20
)

func safeSinh(z complex128) complex128 {
	if real(z) >= hyperbolicGuard {
		return complex(hyperbolicCap, 0)
	}
	return cmplx.Sinh(z)
}

func safeCosh(z complex128) complex128 {
	if real(z) >= hyperbolicGuard {
		return complex(hyperbolicCap, 0)
	}
	return cmplx.Cosh(z)
}

// safeSinh2 and safeCosh2 evaluate sinh(2*z) and cosh(2*z); the guard is
// checked against z itself, not the doubled argument.
func safeSinh2(z complex128) complex128 {
	if real(z) >= hyperbolicGuard {
		return complex(hyperbolicCap, 0)
	}
	return cmplx.Sinh(2 * z)
}

func safeCosh2(z complex128) complex128 {
	if real(z) >= hyperbolicGuard {
		return complex(hyperbolicCap, 0)
	}
	return cmplx.Cosh(2 * z)
}

// diffusionPlanar is the bounded thin-film (planar) diffusion impedance
// Aw*coth(s)/s with s = sqrt(j*w*tau).
func diffusionPlanar(aw, tau, w float64) complex128 {
	s := cmplx.Sqrt(complex(0, w*tau))
	return complex(aw, 0) / (s * cmplx.Tanh(s))
}

// diffusionSpherical is the spherical-particle diffusion impedance
// Aw*tanh(s)/(s - tanh(s)) with s = sqrt(j*w*tau).
func diffusionSpherical(aw, tau, w float64) complex128 {
	s := cmplx.Sqrt(complex(0, w*tau))
	t := cmplx.Tanh(s)

	return complex(aw, 0) * t / (s - t)
}
