// Package fit estimates equivalent-circuit parameters from measured EIS and
// second-harmonic NLEIS spectra.
//
// The central entry point is SimulFit, which fits a single shared parameter
// vector against both harmonics at once. The two measured spectra are
// described by separate circuit strings (the second typically wrapped in the
// difference operator d(...)), while an "edited" circuit string names the
// union of their elements and defines the shared parameter order:
//
//	EIS:       "L0-R0-TDS0-TDS1"
//	2nd-NLEIS: "d(TDSn0,TDSn1)"
//	edited:    "L0-R0-TDSn0-TDSn1"
//
// Each nonlinear element (trailing "n") shares its leading parameters with
// its linear counterpart and appends the second-harmonic curvature and
// asymmetry terms; SplitParameters distributes the shared vector onto the
// two circuits accordingly.
//
// Fitting minimizes max-normalized stacked residuals with a configurable
// cost split between the harmonics. Bounds are enforced through smooth
// parameter transforms and one-sigma errors are derived from the residual
// Jacobian at the optimum.
package fit
