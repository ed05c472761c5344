package element

import (
	"math"
	"testing"
)

// Reference spectra computed with the analytical transfer functions from
// Ji & Schwartz (J. Electrochem. Soc. 170, 2023) over testFreqs.
func TestRCO(t *testing.T) {
	got := mustEval(t, "RCO", []float64{10, 1e-2})

	want := []complex128{
		complex(2.53302317483579e-05, -0.0159154539948736),
		complex(0.0025323881296516, -0.159114638883029),
		complex(0.247045230318576, -1.55223096134648),
		complex(7.16956800324898, -4.50477243368389),
		complex(9.96067682407173, -0.625847782705717),
		complex(9.9996052314088, -0.0628293726675839),
	}

	requireClose(t, got, want, 1e-9)
}

func TestRCOn(t *testing.T) {
	got := mustEval(t, "RCOn", []float64{10, 1e-2, 0.1})

	want := []complex128{
		complex(3.12162077054564e-09, -7.84545293287439e-07),
		complex(3.11970368082958e-05, -0.000783709543385554),
		complex(0.293567499106768, -0.7040039496032),
		complex(75.5488032235821, 156.475810018386),
		complex(-372.655135789406, 95.3558251241644),
		complex(-389.048456956159, 9.77959160101187),
	}

	requireClose(t, got, want, 1e-9)
}

func TestRCD(t *testing.T) {
	got := mustEval(t, "RCD", []float64{10, 1e-2, 5, 1})

	want := []complex128{
		complex(2.52169012384505e-05, -0.0159153423777022),
		complex(0.00249561183605556, -0.159081066254413),
		complex(0.233599165346854, -1.54598434669766),
		complex(6.76192136597196, -5.67084011556701),
		complex(10.5182511533802, -8.37561122152037),
		complex(10.5813685654573, -75.8682714500262),
	}

	requireClose(t, got, want, 1e-9)
}

func TestRCDn(t *testing.T) {
	got := mustEval(t, "RCDn", []float64{10, 1e-2, 5, 1, 0.1, 0.05})

	want := []complex128{
		complex(6.19962065486927e-09, -3.87706844908278e-07),
		complex(2.90220540691794e-05, -0.000376356430476003),
		complex(0.157992281026427, -0.294228340788833),
		complex(30.1531203947154, 57.5255311568067),
		complex(-164.699395001129, 44.5759297748829),
		complex(-715.321054503565, -2.94092408497131),
	}

	requireClose(t, got, want, 1e-9)
}

func TestRCS(t *testing.T) {
	got := mustEval(t, "RCS", []float64{10, 1e-2, 5, 1})

	want := []complex128{
		complex(2.52168949311982e-05, -0.0159153403620249),
		complex(0.00249554945308991, -0.159079052900667),
		complex(0.233033373883034, -1.54412511298447),
		complex(6.01786495980313, -5.76944613721203),
		complex(8.28565238644822, -21.2707984174928),
		complex(8.31725981382344, -207.644748133498),
	}

	requireClose(t, got, want, 1e-9)
}

func TestRCSn(t *testing.T) {
	got := mustEval(t, "RCSn", []float64{10, 1e-2, 5, 1, 0.1, 0.05})

	want := []complex128{
		complex(6.27709394888086e-09, -3.87705831865537e-07),
		complex(2.97809591152796e-05, -0.000376297381583123),
		complex(0.163669308089478, -0.290444429593711),
		complex(20.5466373172615, 55.7261296680958),
		complex(-159.681613882154, 35.8124885709668),
		complex(-3874.59882714211, 61.7605632387017),
	}

	requireClose(t, got, want, 1e-9)
}

// The charge-transfer-only response approaches Rct at low frequency and
// vanishes at high frequency.
func TestRCOLimits(t *testing.T) {
	el, err := Lookup("RCO")
	if err != nil {
		t.Fatal(err)
	}

	z, err := el.Evaluate([]float64{25, 1e-3}, []float64{1e-9, 1e9})
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(real(z[0])-25) > 1e-6 {
		t.Errorf("low-frequency limit %v, want Rct", z[0])
	}

	if real(z[1]) > 1e-6 {
		t.Errorf("high-frequency limit %v, want 0", z[1])
	}
}
