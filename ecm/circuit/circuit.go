// Package circuit parses equivalent-circuit description strings and
// evaluates their impedance response.
//
// A description is a series chain of terms joined by "-". A term is either
// an element label (element name plus an optional numeric instance suffix,
// e.g. "R0" or "TDSn1") or one of the combination operators:
//
//	p(a,b,...)  parallel combination
//	d(a,b)      electrode difference Z = Za - Zb (2nd-NLEIS cells)
//
// Elements resolve against the element package registry. Individual
// parameters can be pinned with a constants map keyed "Label" for
// one-parameter elements and "Label_i" otherwise:
//
//	c, err := circuit.Parse("L0-R0-TDS0-TDS1", map[string]float64{"L0": 1e-7})
//	z, err := c.Impedance(freqs, params)
package circuit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yuefan98/NLEIS-Toolbox/ecm/element"
)

// Errors returned by Parse and evaluation.
var (
	ErrEmptyCircuit   = errors.New("circuit: empty description")
	ErrBadDescription = errors.New("circuit: malformed description")
	ErrUnknownElement = errors.New("circuit: unknown element")
	ErrUnusedConstant = errors.New("circuit: constant does not match any parameter")
	ErrParamCount     = errors.New("circuit: wrong number of free parameters")
)

// Circuit is a parsed circuit description bound to a set of pinned
// constants. The remaining free parameters are ordered by element
// appearance, then by parameter position within each element.
type Circuit struct {
	desc      string
	root      node
	constants map[string]float64

	elements    []string // labels in appearance order
	paramLabels []string // free parameter labels in order
	lower       []float64
	upper       []float64
	units       []string

	constConsumed map[string]bool
}

func (c *Circuit) markConstant(key string) {
	if c.constConsumed == nil {
		c.constConsumed = map[string]bool{}
	}
	c.constConsumed[key] = true
}

// Parse builds a Circuit from its description string. Constants may be nil.
func Parse(desc string, constants map[string]float64) (*Circuit, error) {
	clean := strings.ReplaceAll(desc, " ", "")
	if clean == "" {
		return nil, ErrEmptyCircuit
	}

	c := &Circuit{
		desc:      desc,
		constants: map[string]float64{},
	}
	for k, v := range constants {
		c.constants[k] = v
	}

	p := &parser{input: clean, circuit: c}

	root, err := p.parseSeries()
	if err != nil {
		return nil, err
	}

	if p.pos != len(p.input) {
		return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrBadDescription, p.input[p.pos:], p.pos)
	}

	for k := range c.constants {
		if !c.constConsumed[k] {
			return nil, fmt.Errorf("%w: %s", ErrUnusedConstant, k)
		}
	}

	c.root = root

	return c, nil
}

// String returns the original description.
func (c *Circuit) String() string { return c.desc }

// Elements returns the element labels in appearance order.
func (c *Circuit) Elements() []string {
	out := make([]string, len(c.elements))
	copy(out, c.elements)
	return out
}

// NumParams returns the number of free (non-constant) parameters.
func (c *Circuit) NumParams() int { return len(c.paramLabels) }

// ParamLabels returns the free parameter labels ("R0", "TDS0_2", ...) in
// binding order.
func (c *Circuit) ParamLabels() []string {
	out := make([]string, len(c.paramLabels))
	copy(out, c.paramLabels)
	return out
}

// ParamUnits returns the units of the free parameters in binding order.
func (c *Circuit) ParamUnits() []string {
	out := make([]string, len(c.units))
	copy(out, c.units)
	return out
}

// Constants returns a copy of the pinned constants.
func (c *Circuit) Constants() map[string]float64 {
	out := make(map[string]float64, len(c.constants))
	for k, v := range c.constants {
		out[k] = v
	}
	return out
}

// DefaultBounds returns the default lower and upper fitting bounds for the
// free parameters, taken from each element's parameter metadata.
func (c *Circuit) DefaultBounds() (lo, hi []float64) {
	lo = make([]float64, len(c.lower))
	hi = make([]float64, len(c.upper))
	copy(lo, c.lower)
	copy(hi, c.upper)

	return lo, hi
}

// Impedance evaluates the circuit over the frequency grid with the given
// free parameter values.
func (c *Circuit) Impedance(f, params []float64) ([]complex128, error) {
	if len(params) != len(c.paramLabels) {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrParamCount, len(c.paramLabels), len(params))
	}

	return c.root.eval(f, params)
}

type node interface {
	eval(f, params []float64) ([]complex128, error)
}

type seriesNode struct{ children []node }

func (n seriesNode) eval(f, params []float64) ([]complex128, error) {
	sum := make([]complex128, len(f))

	for _, ch := range n.children {
		z, err := ch.eval(f, params)
		if err != nil {
			return nil, err
		}

		for i := range sum {
			sum[i] += z[i]
		}
	}

	return sum, nil
}

type parallelNode struct{ children []node }

func (n parallelNode) eval(f, params []float64) ([]complex128, error) {
	inv := make([]complex128, len(f))

	for _, ch := range n.children {
		z, err := ch.eval(f, params)
		if err != nil {
			return nil, err
		}

		for i := range inv {
			inv[i] += 1 / z[i]
		}
	}

	for i := range inv {
		inv[i] = 1 / inv[i]
	}

	return inv, nil
}

type diffNode struct{ a, b node }

func (n diffNode) eval(f, params []float64) ([]complex128, error) {
	za, err := n.a.eval(f, params)
	if err != nil {
		return nil, err
	}

	zb, err := n.b.eval(f, params)
	if err != nil {
		return nil, err
	}

	out := make([]complex128, len(f))
	for i := range out {
		out[i] = za[i] - zb[i]
	}

	return out, nil
}

// slot binds one element parameter either to a pinned constant or to an
// index into the free parameter vector.
type slot struct {
	constant bool
	value    float64
	index    int
}

type leafNode struct {
	el    element.Element
	slots []slot
}

func (n leafNode) eval(f, params []float64) ([]complex128, error) {
	p := make([]float64, len(n.slots))

	for i, s := range n.slots {
		if s.constant {
			p[i] = s.value
		} else {
			p[i] = params[s.index]
		}
	}

	return n.el.Evaluate(p, f)
}
