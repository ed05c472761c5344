package fit_test

import (
	"fmt"

	"github.com/yuefan98/NLEIS-Toolbox/fit"
)

func ExampleSplitParameters() {
	// TDSn0 carries 7 parameters; the first 5 are shared with its linear
	// counterpart TDS0, the curvature/asymmetry tail feeds only the
	// second harmonic.
	p1, p2, _ := fit.SplitParameters("TDSn0", []float64{1, 2, 3, 4, 5, 6, 7}, nil, nil)
	fmt.Println(p1)
	fmt.Println(p2)

	// Output:
	// [1 2 3 4 5]
	// [1 2 3 4 5 6 7]
}

func ExampleSharedLabels() {
	labels, _ := fit.SharedLabels("L0-R0-RCOn0", nil, nil)
	fmt.Println(labels)

	// Output:
	// [L0 R0 RCOn0_0 RCOn0_1 RCOn0_2]
}
