package circuit_test

import (
	"fmt"
	"math"

	"github.com/yuefan98/NLEIS-Toolbox/ecm/circuit"
)

func ExampleParse() {
	c, _ := circuit.Parse("L0-R0-TDSn0", nil)
	fmt.Println(c.NumParams())
	fmt.Println(c.ParamLabels())

	// Output:
	// 9
	// [L0 R0 TDSn0_0 TDSn0_1 TDSn0_2 TDSn0_3 TDSn0_4 TDSn0_5 TDSn0_6]
}

func ExampleCircuit_Impedance() {
	c, _ := circuit.Parse("R0-p(R1,C1)", nil)

	// At 1 Hz with C1 = 1/(2*pi) F the capacitor contributes -1j Ohm, so
	// the parallel branch is (0.5-0.5j) Ohm.
	z, _ := c.Impedance([]float64{1}, []float64{1, 1, 1 / (2 * math.Pi)})
	fmt.Printf("%.2f%+.2fi\n", real(z[0]), imag(z[0]))

	// Output:
	// 1.50-0.50i
}
