// Package element provides the equivalent-circuit element library for EIS
// and second-harmonic nonlinear EIS (2nd-NLEIS) modeling.
//
// Every element has a short name (R, CPE, TDS, TDSn, ...), a fixed parameter
// list with units and default fitting bounds, and a transfer function that
// maps parameters and a frequency grid to complex impedance. Linear elements
// describe the first-harmonic (EIS) response; their nonlinear counterparts,
// named with a trailing "n", describe the second-harmonic response and carry
// extra curvature (kappa) and asymmetry (epsilon) parameters.
//
// Elements register themselves in a package-level registry so that circuit
// description strings can resolve them by name:
//
//	el, err := element.Lookup("TDS")
//	z, err := el.Evaluate([]float64{10, 10, 1e-2, 10, 100}, freqs)
//
// Custom elements can be added with Register; the combination operator names
// "s", "p" and "d" are reserved for the circuit layer.
package element
