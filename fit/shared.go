package fit

import (
	"fmt"
	"strings"

	"github.com/yuefan98/NLEIS-Toolbox/ecm/circuit"
	"github.com/yuefan98/NLEIS-Toolbox/ecm/element"
)

// sharedParam is one free parameter of the edited circuit and its routing
// onto the per-harmonic parameter vectors.
type sharedParam struct {
	label   string
	lower   float64
	upper   float64
	toEIS   bool
	toNLEIS bool
}

// sharedParams walks the edited circuit string and determines, for every
// free parameter, whether it feeds the EIS circuit, the 2nd-NLEIS circuit,
// or both. A nonlinear element TDSn0 shares its leading parameters with its
// linear counterpart TDS0 and routes the trailing curvature/asymmetry
// parameters to the second harmonic only. Constants pin parameters under
// their EIS key (constants1) or NLEIS key (constants2).
func sharedParams(edited string, constants1, constants2 map[string]float64) ([]sharedParam, error) {
	parsed, err := circuit.Parse(edited, nil)
	if err != nil {
		return nil, fmt.Errorf("fit: edited circuit: %w", err)
	}

	var out []sharedParam

	for _, label := range parsed.Elements() {
		base := element.BaseName(label)

		el, err := element.Lookup(base)
		if err != nil {
			return nil, err
		}

		nleisCount := el.NumParams()
		eisCount := nleisCount

		if element.IsNonlinear(base) {
			linear, err := element.Lookup(element.LinearCounterpart(base))
			if err != nil {
				return nil, err
			}

			eisCount = linear.NumParams()
		}

		eisLabel := strings.Replace(label, "n", "", 1)

		for j := 0; j < nleisCount; j++ {
			var eisKey, nleisKey string

			if eisCount > 1 {
				eisKey = ""
				if j < eisCount {
					eisKey = fmt.Sprintf("%s_%d", eisLabel, j)
				}

				nleisKey = fmt.Sprintf("%s_%d", label, j)
			} else {
				eisKey = label
				nleisKey = label
			}

			if eisKey != "" {
				if _, ok := constants1[eisKey]; ok {
					continue
				}
			}

			if _, ok := constants2[nleisKey]; ok {
				continue
			}

			sp := sharedParam{
				label: nleisKey,
				lower: el.Params[j].Lower,
				upper: el.Params[j].Upper,
			}

			switch {
			case eisCount == 1:
				sp.toEIS = true
			case j < eisCount:
				sp.toEIS = true
				sp.toNLEIS = nleisCount > eisCount
			default:
				sp.toNLEIS = true
			}

			out = append(out, sp)
		}
	}

	return out, nil
}

// SharedLabels returns the labels of the free parameters of an edited
// circuit string, in shared-vector order. Labels use the NLEIS key form
// ("TDSn0_3"); single-parameter elements use the bare element label.
func SharedLabels(edited string, constants1, constants2 map[string]float64) ([]string, error) {
	shared, err := sharedParams(edited, constants1, constants2)
	if err != nil {
		return nil, err
	}

	labels := make([]string, len(shared))
	for i, sp := range shared {
		labels[i] = sp.label
	}

	return labels, nil
}

// SplitParameters distributes the shared parameter vector of an edited
// circuit string onto the EIS and 2nd-NLEIS circuits. Parameters pinned by
// constants1 (EIS keys, e.g. "TDS0_1") or constants2 (NLEIS keys, e.g.
// "TDSn0_5") are excluded from the shared vector.
func SplitParameters(edited string, params []float64, constants1, constants2 map[string]float64) (p1, p2 []float64, err error) {
	if edited == "" {
		return nil, nil, nil
	}

	shared, err := sharedParams(edited, constants1, constants2)
	if err != nil {
		return nil, nil, err
	}

	if len(params) != len(shared) {
		return nil, nil, fmt.Errorf("%w: edited circuit has %d free parameters, got %d",
			ErrParamCount, len(shared), len(params))
	}

	for i, sp := range shared {
		if sp.toEIS {
			p1 = append(p1, params[i])
		}

		if sp.toNLEIS {
			p2 = append(p2, params[i])
		}
	}

	return p1, p2, nil
}
